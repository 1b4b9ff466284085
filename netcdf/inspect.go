// Package netcdf extracts Dublin-Core style metadata, variable
// descriptors and coverage information from NetCDF files, and renders
// the header dump the staleness check matches against.
package netcdf

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/meta"
)

var logger zerolog.Logger = log.With().Str("component", "netcdf").Logger()

// ErrNotNetCDF marks a path that did not open as a NetCDF dataset.
// Callers react with a user-facing validation failure, not a crash.
var ErrNotNetCDF = errors.New("not a NetCDF file")

// Creator is the lead author read from the creator_* attributes.
type Creator struct {
	Name     string
	Email    string
	Homepage string
}

// Rights is the license attribute split into a leading URL and the
// remaining statement text.
type Rights struct {
	Statement string
	URL       string
}

// Period is a time coverage.
type Period struct {
	Start string
	End   string
}

// Extraction is the metadata read from one NetCDF file.
type Extraction struct {
	Title        string
	Description  string
	Creator      *Creator
	Contributors []string
	Subjects     []string
	Source       string
	References   string
	Rights       *Rights

	Box              *meta.WGS84Coverage
	Period           *Period
	OriginalCoverage *meta.OriginalCoverage

	Variables []meta.Variable

	HeaderDump string
}

// Inspect opens the path as a NetCDF dataset (classic or NetCDF4) and
// extracts its metadata.
func Inspect(path string) (*Extraction, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotNetCDF)
	}
	defer group.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return InspectGroup(name, group)
}

// InspectGroup extracts from an already open dataset group.
func InspectGroup(name string, group api.Group) (*Extraction, error) {
	out := &Extraction{}
	globals := group.Attributes()

	out.Title = attrString(globals, "title")
	out.Description = attrString(globals, "summary")
	out.Source = attrString(globals, "source")
	out.References = attrString(globals, "references")

	if name := attrString(globals, "creator_name"); name != "" {
		out.Creator = &Creator{
			Name:     name,
			Email:    attrString(globals, "creator_email"),
			Homepage: attrString(globals, "creator_url"),
		}
	}

	// contributor_name is a comma-joined list by convention.
	for _, name := range splitList(attrString(globals, "contributor_name")) {
		out.Contributors = append(out.Contributors, name)
	}
	for _, kw := range splitList(attrString(globals, "keywords")) {
		out.Subjects = append(out.Subjects, kw)
	}

	if license := attrString(globals, "license"); license != "" {
		out.Rights = splitLicense(license)
	}

	out.Box = readBox(globals)
	out.Period = readPeriod(globals)
	out.OriginalCoverage = readOriginalCoverage(group)
	out.Variables = readVariables(group)
	out.HeaderDump = buildHeader(name, group).Render()

	return out, nil
}

// Bundle renders the extraction as element attribute dicts. Absent
// attributes produce no element at all, so reconciliation leaves the
// corresponding stored elements untouched.
func (e *Extraction) Bundle() *meta.ExtractedBundle {
	bundle := meta.NewBundle()
	bundle.HeaderDump = e.HeaderDump

	if e.Title != "" {
		bundle.Set(meta.KindTitle, meta.Attrs{"value": e.Title})
	}
	if e.Description != "" {
		bundle.Set(meta.KindDescription, meta.Attrs{"abstract": e.Description})
	}
	if e.Creator != nil {
		bundle.Set(meta.KindCreator, meta.Attrs{
			"name":     e.Creator.Name,
			"email":    e.Creator.Email,
			"homepage": e.Creator.Homepage,
		})
	}
	for _, name := range e.Contributors {
		bundle.Add(meta.KindContributor, meta.Attrs{"name": name})
	}
	for _, kw := range e.Subjects {
		bundle.Add(meta.KindSubject, meta.Attrs{"value": kw})
	}
	if e.Source != "" {
		bundle.Set(meta.KindSource, meta.Attrs{"derived_from": e.Source})
	}
	if e.References != "" {
		bundle.Set(meta.KindRelation, meta.Attrs{"type": "cites", "value": e.References})
	}
	if e.Rights != nil {
		bundle.Set(meta.KindRights, meta.Attrs{"statement": e.Rights.Statement, "url": e.Rights.URL})
	}

	if e.Box != nil {
		bundle.Add(meta.KindCoverage, e.Box.Attrs())
	}
	if e.Period != nil {
		bundle.Add(meta.KindCoverage, meta.Attrs{
			"type":  "period",
			"value": map[string]string{"start": e.Period.Start, "end": e.Period.End},
		})
	}
	if e.OriginalCoverage != nil {
		bundle.Set(meta.KindOriginalCoverage, e.OriginalCoverage.Attrs())
	}
	for _, v := range e.Variables {
		bundle.Add(meta.KindVariable, v.Attrs())
	}
	return bundle
}

var licenseURLRe = regexp.MustCompile(`^\s*(https?://\S+)\s*(.*)$`)

// splitLicense separates a leading URL from the statement text.
func splitLicense(license string) *Rights {
	if m := licenseURLRe.FindStringSubmatch(license); m != nil {
		return &Rights{URL: m[1], Statement: strings.TrimSpace(m[2])}
	}
	return &Rights{Statement: strings.TrimSpace(license)}
}

func readBox(globals api.AttributeMap) *meta.WGS84Coverage {
	north, okN := attrFloat(globals, "geospatial_lat_max")
	south, okS := attrFloat(globals, "geospatial_lat_min")
	east, okE := attrFloat(globals, "geospatial_lon_max")
	west, okW := attrFloat(globals, "geospatial_lon_min")
	if !okN || !okS || !okE || !okW {
		return nil
	}
	return &meta.WGS84Coverage{Extent: meta.SpatialExtent{
		North: north, South: south, East: east, West: west,
		Units: meta.WGS84Units,
	}}
}

func readPeriod(globals api.AttributeMap) *Period {
	start := attrString(globals, "time_coverage_start")
	end := attrString(globals, "time_coverage_end")
	if start == "" || end == "" {
		return nil
	}
	return &Period{Start: start, End: end}
}

// readOriginalCoverage reconstructs the native (possibly projected)
// extent from the grid-mapping variable and the projected coordinate
// variables, when the file carries them.
func readOriginalCoverage(group api.Group) *meta.OriginalCoverage {
	reference := meta.UnknownSpatialReference()
	haveProjection := false

	for _, name := range group.ListVariables() {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			continue
		}
		attrs := vg.Attributes()
		if gridMapping := attrString(attrs, "grid_mapping_name"); gridMapping != "" {
			reference.ProjectionName = meta.KnownSRS(gridMapping)
			for _, key := range []string{"crs_wkt", "spatial_ref", "esri_pe_string"} {
				if wkt := attrString(attrs, key); wkt != "" {
					reference.ProjectionString = meta.KnownSRS(wkt)
					break
				}
			}
			if datum := attrString(attrs, "horizontal_datum_name"); datum != "" {
				reference.Datum = meta.KnownSRS(datum)
			}
			haveProjection = true
			break
		}
	}

	xVar := findCoordinate(group, "projection_x_coordinate", "X")
	yVar := findCoordinate(group, "projection_y_coordinate", "Y")
	if xVar == "" || yVar == "" {
		return nil
	}

	xMin, xMax, okX := coordinateRange(group, xVar)
	yMin, yMax, okY := coordinateRange(group, yVar)
	if !okX || !okY {
		return nil
	}

	units := meta.UnknownLiteral
	if vg, err := group.GetVarGetter(xVar); err == nil {
		if u := attrString(vg.Attributes(), "units"); u != "" {
			units = u
		}
	}
	if !haveProjection {
		logger.Debug().Str("x", xVar).Str("y", yVar).Msg("projected coordinates without grid mapping")
	}

	return &meta.OriginalCoverage{
		Extent: meta.SpatialExtent{
			North: yMax, South: yMin, East: xMax, West: xMin,
			Units: units,
		},
		Reference: reference,
	}
}

func findCoordinate(group api.Group, standardName, axis string) string {
	for _, name := range group.ListVariables() {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			continue
		}
		attrs := vg.Attributes()
		if attrString(attrs, "standard_name") == standardName {
			return name
		}
		if attrString(attrs, "axis") == axis && len(vg.Dimensions()) == 1 {
			return name
		}
	}
	return ""
}

func coordinateRange(group api.Group, name string) (float64, float64, bool) {
	vg, err := group.GetVarGetter(name)
	if err != nil {
		return 0, 0, false
	}
	values, err := vg.Values()
	if err != nil {
		return 0, 0, false
	}
	return numericRange(values)
}

func numericRange(values interface{}) (float64, float64, bool) {
	var floats []float64
	switch vs := values.(type) {
	case []float64:
		floats = vs
	case []float32:
		for _, v := range vs {
			floats = append(floats, float64(v))
		}
	case []int32:
		for _, v := range vs {
			floats = append(floats, float64(v))
		}
	case []int64:
		for _, v := range vs {
			floats = append(floats, float64(v))
		}
	case []int16:
		for _, v := range vs {
			floats = append(floats, float64(v))
		}
	}
	if len(floats) == 0 {
		return 0, 0, false
	}
	min, max := floats[0], floats[0]
	for _, v := range floats[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

// readVariables lists the data variables: coordinate variables and the
// grid-mapping variable are skipped. Absent attributes map to empty
// strings, never omitted keys.
func readVariables(group api.Group) []meta.Variable {
	var vars []meta.Variable
	for _, name := range group.ListVariables() {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			continue
		}
		dims := vg.Dimensions()
		if len(dims) == 1 && dims[0] == name {
			continue // coordinate variable
		}
		attrs := vg.Attributes()
		if attrString(attrs, "grid_mapping_name") != "" {
			continue
		}

		missing := attrString(attrs, "missing_value")
		if missing == "" {
			missing = attrString(attrs, "_FillValue")
		}

		vars = append(vars, meta.Variable{
			Name:            name,
			Unit:            attrString(attrs, "units"),
			Type:            vg.Type(),
			Shape:           strings.Join(dims, ","),
			DescriptiveName: attrString(attrs, "long_name"),
			Method:          attrString(attrs, "comment"),
			MissingValue:    missing,
		})
	}
	return vars
}

func buildHeader(name string, group api.Group) *Header {
	header := &Header{Name: name}

	var shapes []dimShape
	for _, varName := range group.ListVariables() {
		vg, err := group.GetVarGetter(varName)
		if err != nil {
			continue
		}
		hv := HeaderVar{Type: vg.Type(), Name: varName, Dims: vg.Dimensions()}
		attrs := vg.Attributes()
		for _, key := range attrs.Keys() {
			if value, ok := attrs.Get(key); ok {
				hv.Attrs = append(hv.Attrs, HeaderAttr{Name: key, Value: value})
			}
		}
		header.Vars = append(header.Vars, hv)
		shapes = append(shapes, dimShape{dims: vg.Dimensions(), total: vg.Len()})
	}
	header.Dims = resolveDims(shapes)

	globals := group.Attributes()
	for _, key := range globals.Keys() {
		if value, ok := globals.Get(key); ok {
			header.GlobalAttrs = append(header.GlobalAttrs, HeaderAttr{Name: key, Value: value})
		}
	}
	return header
}

func attrString(attrs api.AttributeMap, key string) string {
	value, ok := attrs.Get(key)
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.TrimSpace(strings.Join(v, ", "))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	value, ok := attrs.Get(key)
	if !ok || value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []float64:
		if len(v) == 1 {
			return v[0], true
		}
	case []float32:
		if len(v) == 1 {
			return float64(v[0]), true
		}
	}
	return 0, false
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(joined, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
