package netcdf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/hydroshare/hsextract/meta"
)

// fakeAttrs implements api.AttributeMap over an ordered key list.
type fakeAttrs struct {
	keys   []string
	values map[string]interface{}
}

func attrs(pairs ...interface{}) *fakeAttrs {
	fa := &fakeAttrs{values: map[string]interface{}{}}
	for i := 0; i < len(pairs); i += 2 {
		key := pairs[i].(string)
		fa.keys = append(fa.keys, key)
		fa.values[key] = pairs[i+1]
	}
	return fa
}

func (f *fakeAttrs) Keys() []string { return f.keys }

func (f *fakeAttrs) Get(key string) (interface{}, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeAttrs) GetType(key string) (string, bool)   { return "", false }
func (f *fakeAttrs) GetGoType(key string) (string, bool) { return "", false }

// fakeVar implements api.VarGetter.
type fakeVar struct {
	typ    string
	dims   []string
	length int64
	values interface{}
	attrs  *fakeAttrs
}

func (f *fakeVar) Len() int64                                         { return f.length }
func (f *fakeVar) Values() (interface{}, error)                       { return f.values, nil }
func (f *fakeVar) GetSlice(begin, end int64) (interface{}, error)     { return f.values, nil }
func (f *fakeVar) GetSliceMD(begin, end []int64) (interface{}, error) { return f.values, nil }
func (f *fakeVar) Shape() []int64                                     { return []int64{f.length} }
func (f *fakeVar) Dimensions() []string                               { return f.dims }
func (f *fakeVar) Attributes() api.AttributeMap                       { return f.attrs }
func (f *fakeVar) Type() string                                       { return f.typ }
func (f *fakeVar) GoType() string                                     { return f.typ }

// fakeGroup implements api.Group.
type fakeGroup struct {
	globals  *fakeAttrs
	varOrder []string
	vars     map[string]*fakeVar
}

func (g *fakeGroup) Close()                             {}
func (g *fakeGroup) Attributes() api.AttributeMap       { return g.globals }
func (g *fakeGroup) ListVariables() []string            { return g.varOrder }
func (g *fakeGroup) ListSubgroups() []string            { return nil }
func (g *fakeGroup) ListTypes() []string                { return nil }
func (g *fakeGroup) GetType(string) (string, bool)      { return "", false }
func (g *fakeGroup) GetGoType(string) (string, bool)    { return "", false }
func (g *fakeGroup) ListDimensions() []string           { return nil }
func (g *fakeGroup) GetDimension(string) (uint64, bool) { return 0, false }

func (g *fakeGroup) GetGroup(string) (api.Group, error) {
	return nil, fmt.Errorf("no subgroups")
}

func (g *fakeGroup) GetVariable(name string) (*api.Variable, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("no variable %s", name)
	}
	return &api.Variable{Values: v.values, Dimensions: v.dims, Attributes: v.attrs}, nil
}

func (g *fakeGroup) GetVarGetter(name string) (api.VarGetter, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, fmt.Errorf("no variable %s", name)
	}
	return v, nil
}

func sampleGroup() *fakeGroup {
	return &fakeGroup{
		globals: attrs(
			"title", "Snow water equivalent, Logan River watershed",
			"summary", "SWE simulated over the 2010 water year.",
			"keywords", "snow, water equivalent, Logan River",
			"creator_name", "John Smith",
			"creator_email", "john.smith@usu.edu",
			"creator_url", "https://example.edu/~jsmith",
			"contributor_name", "Jane Doe, David Tarboton",
			"source", "UEB model output",
			"references", "https://doi.org/10.0000/example",
			"license", "https://creativecommons.org/licenses/by/4.0/ This work is licensed under CC BY 4.0.",
			"geospatial_lat_min", 41.6, "geospatial_lat_max", 42.05,
			"geospatial_lon_min", -111.8, "geospatial_lon_max", -111.4,
			"time_coverage_start", "2010-10-01 00:00:00",
			"time_coverage_end", "2011-06-30 00:00:00",
		),
		varOrder: []string{"x", "y", "time", "transverse_mercator", "SWE"},
		vars: map[string]*fakeVar{
			"x": {
				typ: "double", dims: []string{"x"}, length: 3,
				values: []float64{432452.179, 432482.179, 432512.179},
				attrs: attrs(
					"standard_name", "projection_x_coordinate",
					"units", "Meter",
				),
			},
			"y": {
				typ: "double", dims: []string{"y"}, length: 2,
				values: []float64{4662392.446916, 4662362.446916},
				attrs: attrs(
					"standard_name", "projection_y_coordinate",
					"units", "Meter",
				),
			},
			"time": {
				typ: "double", dims: []string{"time"}, length: 4,
				values: []float64{0, 1, 2, 3},
				attrs:  attrs("units", "hours since 2010-10-01"),
			},
			"transverse_mercator": {
				typ: "char", dims: nil, length: 1,
				attrs: attrs(
					"grid_mapping_name", "transverse_mercator",
					"crs_wkt", `PROJCS["NAD83 / UTM zone 12N"]`,
					"horizontal_datum_name", "North_American_Datum_1983",
				),
			},
			"SWE": {
				typ: "float", dims: []string{"time", "y", "x"}, length: 24,
				attrs: attrs(
					"units", "m",
					"long_name", "snow water equivalent",
					"_FillValue", float32(-9999),
				),
			},
		},
	}
}

func TestInspectGroupDublinCore(t *testing.T) {
	out, err := InspectGroup("SWE_time", sampleGroup())
	if err != nil {
		t.Fatal(err)
	}

	if out.Title != "Snow water equivalent, Logan River watershed" {
		t.Errorf("Title = %q", out.Title)
	}
	if out.Description != "SWE simulated over the 2010 water year." {
		t.Errorf("Description = %q", out.Description)
	}
	if out.Creator == nil || out.Creator.Name != "John Smith" ||
		out.Creator.Email != "john.smith@usu.edu" {
		t.Errorf("Creator = %+v", out.Creator)
	}
	if len(out.Contributors) != 2 || out.Contributors[0] != "Jane Doe" {
		t.Errorf("Contributors = %v", out.Contributors)
	}
	if len(out.Subjects) != 3 || out.Subjects[2] != "Logan River" {
		t.Errorf("Subjects = %v", out.Subjects)
	}
	if out.Source != "UEB model output" {
		t.Errorf("Source = %q", out.Source)
	}
	if out.Rights == nil || out.Rights.URL != "https://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("Rights = %+v", out.Rights)
	}
	if out.Rights.Statement != "This work is licensed under CC BY 4.0." {
		t.Errorf("Rights.Statement = %q", out.Rights.Statement)
	}
}

func TestInspectGroupCoverages(t *testing.T) {
	out, err := InspectGroup("SWE_time", sampleGroup())
	if err != nil {
		t.Fatal(err)
	}

	if out.Box == nil {
		t.Fatal("no geographic box extracted")
	}
	if out.Box.Extent.North != 42.05 || out.Box.Extent.West != -111.8 {
		t.Errorf("box extent %+v", out.Box.Extent)
	}

	if out.Period == nil || out.Period.Start != "2010-10-01 00:00:00" {
		t.Errorf("period %+v", out.Period)
	}

	oc := out.OriginalCoverage
	if oc == nil {
		t.Fatal("no original coverage extracted")
	}
	if oc.Extent.West != 432452.179 || oc.Extent.East != 432512.179 {
		t.Errorf("projected x range %v..%v", oc.Extent.West, oc.Extent.East)
	}
	if oc.Extent.South != 4662362.446916 || oc.Extent.North != 4662392.446916 {
		t.Errorf("projected y range %v..%v", oc.Extent.South, oc.Extent.North)
	}
	if oc.Extent.Units != "Meter" {
		t.Errorf("units %q", oc.Extent.Units)
	}
	if name, _ := oc.Reference.ProjectionName.Value(); name != "transverse_mercator" {
		t.Errorf("projection name %q", name)
	}
	if datum, _ := oc.Reference.Datum.Value(); datum != "North_American_Datum_1983" {
		t.Errorf("datum %q", datum)
	}
}

func TestInspectGroupVariables(t *testing.T) {
	out, err := InspectGroup("SWE_time", sampleGroup())
	if err != nil {
		t.Fatal(err)
	}

	// Coordinate variables and the grid-mapping variable are skipped,
	// leaving only SWE.
	if len(out.Variables) != 1 {
		t.Fatalf("extracted %d variables, want 1: %+v", len(out.Variables), out.Variables)
	}
	v := out.Variables[0]
	if v.Name != "SWE" || v.Unit != "m" || v.Type != "float" {
		t.Errorf("variable %+v", v)
	}
	if v.Shape != "time,y,x" {
		t.Errorf("shape %q", v.Shape)
	}
	if v.MissingValue != "-9999" {
		t.Errorf("missing value %q (expected _FillValue fallback)", v.MissingValue)
	}
	if v.DescriptiveName != "snow water equivalent" {
		t.Errorf("descriptive name %q", v.DescriptiveName)
	}
}

func TestInspectGroupHeaderDump(t *testing.T) {
	out, err := InspectGroup("SWE_time", sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	dump := out.HeaderDump

	for _, want := range []string{
		"netcdf SWE_time {",
		"dimensions:",
		"\tx = 3 ;",
		"\ty = 2 ;",
		"\ttime = 4 ;",
		"variables:",
		"\tfloat SWE(time, y, x) ;",
		"\t\tSWE:units = \"m\" ;",
		"// global attributes:",
		"\t\t:title = \"Snow water equivalent, Logan River watershed\" ;",
		"\t\t:license = ",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("header dump missing %q\n%s", want, dump)
		}
	}
	if !strings.HasSuffix(dump, "}\n") {
		t.Error("header dump does not close the group")
	}
}

func TestBundleMapping(t *testing.T) {
	out, err := InspectGroup("SWE_time", sampleGroup())
	if err != nil {
		t.Fatal(err)
	}
	bundle := out.Bundle()

	if bundle.One(meta.KindTitle)["value"] != out.Title {
		t.Errorf("title element %v", bundle.One(meta.KindTitle))
	}
	if bundle.One(meta.KindDescription)["abstract"] != out.Description {
		t.Errorf("description element %v", bundle.One(meta.KindDescription))
	}
	if bundle.One(meta.KindRelation)["type"] != "cites" {
		t.Errorf("relation element %v", bundle.One(meta.KindRelation))
	}

	coverages := bundle.All(meta.KindCoverage)
	if len(coverages) != 2 {
		t.Fatalf("%d coverage elements, want box and period", len(coverages))
	}
	types := map[string]bool{}
	for _, c := range coverages {
		types[fmt.Sprint(c["type"])] = true
	}
	if !types["box"] || !types["period"] {
		t.Errorf("coverage types %v", types)
	}

	if bundle.HeaderDump == "" {
		t.Error("bundle lost the header dump")
	}
}

func TestBundleOmitsAbsentAttributes(t *testing.T) {
	group := &fakeGroup{globals: attrs("title", "only a title")}
	out, err := InspectGroup("bare", group)
	if err != nil {
		t.Fatal(err)
	}
	bundle := out.Bundle()

	if !bundle.Has(meta.KindTitle) {
		t.Error("title element missing")
	}
	for _, kind := range []meta.Kind{
		meta.KindDescription, meta.KindCreator, meta.KindSubject,
		meta.KindSource, meta.KindRights, meta.KindCoverage,
	} {
		if bundle.Has(kind) {
			t.Errorf("absent attribute produced a %s element", kind)
		}
	}
}

func TestSplitLicense(t *testing.T) {
	r := splitLicense("https://example.org/license Terms of use apply.")
	if r.URL != "https://example.org/license" || r.Statement != "Terms of use apply." {
		t.Errorf("split = %+v", r)
	}

	r = splitLicense("All rights reserved.")
	if r.URL != "" || r.Statement != "All rights reserved." {
		t.Errorf("split = %+v", r)
	}
}

func TestResolveDims(t *testing.T) {
	dims := resolveDims([]dimShape{
		{dims: []string{"x"}, total: 3},
		{dims: []string{"y"}, total: 2},
		{dims: []string{"time", "y", "x"}, total: 24},
	})

	want := map[string]int64{"time": 4, "x": 3, "y": 2}
	if len(dims) != 3 {
		t.Fatalf("resolved %d dims: %v", len(dims), dims)
	}
	for _, d := range dims {
		if want[d.Name] != d.Len {
			t.Errorf("dim %s = %d, want %d", d.Name, d.Len, want[d.Name])
		}
	}
}

func TestResolveDimsUnderdetermined(t *testing.T) {
	dims := resolveDims([]dimShape{
		{dims: []string{"a", "b"}, total: 12},
	})
	for _, d := range dims {
		if d.Len != -1 {
			t.Errorf("dim %s resolved to %d from an underdetermined system", d.Name, d.Len)
		}
	}
}
