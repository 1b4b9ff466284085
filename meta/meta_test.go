package meta

import (
	"errors"
	"testing"
)

func TestOriginalCoverageValue(t *testing.T) {
	cov := OriginalCoverage{
		Extent: SpatialExtent{
			North: 4662392.446916, South: 4612592.446916,
			East: 461552.179, West: 432452.179,
			Units: "meter",
		},
		Reference: SpatialReference{
			ProjectionName:   KnownSRS("NAD83 / UTM zone 12N"),
			ProjectionString: KnownSRS(`PROJCS["NAD83 / UTM zone 12N"]`),
			Datum:            KnownSRS("North_American_Datum_1983"),
			Unit:             "metre",
		},
	}

	value := cov.Value()
	expect := map[string]string{
		"northlimit":        "4662392.446916",
		"southlimit":        "4612592.446916",
		"eastlimit":         "461552.179",
		"westlimit":         "432452.179",
		"units":             "meter",
		"projection":        "NAD83 / UTM zone 12N",
		"projection_string": `PROJCS["NAD83 / UTM zone 12N"]`,
		"datum":             "North_American_Datum_1983",
	}
	for key, want := range expect {
		if value[key] != want {
			t.Errorf("value[%q] = %q, want %q", key, value[key], want)
		}
	}
}

func TestOriginalCoverageUnknownFields(t *testing.T) {
	cov := OriginalCoverage{
		Extent:    SpatialExtent{North: 1, South: 0, East: 1, West: 0, Units: UnknownLiteral},
		Reference: UnknownSpatialReference(),
	}
	value := cov.Value()
	for _, key := range []string{"projection", "projection_string", "datum"} {
		if value[key] != UnknownLiteral {
			t.Errorf("value[%q] = %q, want the unknown literal", key, value[key])
		}
	}
}

func TestWGS84CoverageBox(t *testing.T) {
	cov := WGS84Coverage{Extent: SpatialExtent{North: 42.05, South: 41.6, East: -111.4, West: -111.8}}

	if cov.CoverageType() != "box" {
		t.Fatalf("CoverageType() = %q, want box", cov.CoverageType())
	}
	value := cov.Value()
	if value["northlimit"] != "42.05" || value["westlimit"] != "-111.8" {
		t.Errorf("unexpected box value %v", value)
	}
	if value["projection"] != WGS84ProjectionName || value["units"] != WGS84Units {
		t.Errorf("box value carries wrong projection/units: %v", value)
	}
}

func TestWGS84CoveragePoint(t *testing.T) {
	cov := WGS84Coverage{Extent: SpatialExtent{North: 41.7, South: 41.7, East: -111.5, West: -111.5}}

	if cov.CoverageType() != "point" {
		t.Fatalf("CoverageType() = %q, want point", cov.CoverageType())
	}
	value := cov.Value()
	if value["north"] != "41.7" || value["east"] != "-111.5" {
		t.Errorf("unexpected point value %v", value)
	}
	if _, ok := value["northlimit"]; ok {
		t.Error("point value must not carry box limits")
	}
	attrs := cov.Attrs()
	if attrs["type"] != "point" {
		t.Errorf("Attrs()[type] = %v, want point", attrs["type"])
	}
}

func TestSpatialExtentValidate(t *testing.T) {
	good := SpatialExtent{North: 10, South: 5, East: 10, West: 5}
	if err := good.Validate(); err != nil {
		t.Errorf("valid extent rejected: %v", err)
	}

	inverted := SpatialExtent{North: 5, South: 10, East: 10, West: 5}
	err := inverted.Validate()
	if err == nil {
		t.Fatal("inverted extent accepted")
	}
	var structural *StructuralValidationError
	if !errors.As(err, &structural) || structural.Rule != RuleInvertedExtent {
		t.Errorf("inverted extent reported as %v", err)
	}
}

func TestSRSFieldRoundTrip(t *testing.T) {
	if ParseSRSField("unknown").Known() {
		t.Error("the unknown literal must decode to the unknown state")
	}
	if ParseSRSField("").Known() {
		t.Error("empty string must decode to the unknown state")
	}
	f := ParseSRSField("WGS 84")
	if v, ok := f.Value(); !ok || v != "WGS 84" {
		t.Errorf("ParseSRSField lost the value: %q %v", v, ok)
	}
	if UnknownSRS().String() != UnknownLiteral {
		t.Errorf("UnknownSRS().String() = %q", UnknownSRS().String())
	}
}

func TestBundleHasSemantics(t *testing.T) {
	b := NewBundle()
	if b.Has(KindTitle) {
		t.Error("fresh bundle claims to have a title")
	}

	b.Set(KindTitle, Attrs{"value": "t"})
	if !b.Has(KindTitle) {
		t.Error("Set did not register the kind")
	}
	if b.One(KindTitle)["value"] != "t" {
		t.Errorf("One returned %v", b.One(KindTitle))
	}

	b.Add(KindSubject, Attrs{"value": "a"})
	b.Add(KindSubject, Attrs{"value": "b"})
	if got := len(b.All(KindSubject)); got != 2 {
		t.Errorf("All(KindSubject) has %d entries, want 2", got)
	}
}

func TestTraitsRegistry(t *testing.T) {
	cases := []struct {
		kind      Kind
		singleton bool
	}{
		{KindTitle, true},
		{KindDescription, true},
		{KindOriginalCoverage, true},
		{KindCellInfo, true},
		{KindGeometry, true},
		{KindCreator, false},
		{KindSubject, false},
		// box and period coverages coexist, so coverage is not singleton
		{KindCoverage, false},
		{KindBand, false},
		{KindField, false},
		{KindVariable, false},
	}
	for _, c := range cases {
		traits, ok := TraitsOf(c.kind)
		if !ok {
			t.Errorf("TraitsOf(%s) unknown", c.kind)
			continue
		}
		if traits.Singleton != c.singleton {
			t.Errorf("TraitsOf(%s).Singleton = %v, want %v", c.kind, traits.Singleton, c.singleton)
		}
	}
	if _, ok := TraitsOf(Kind("nosuch")); ok {
		t.Error("TraitsOf accepted an unknown kind")
	}
}

func TestBandInformationAttrs(t *testing.T) {
	min := -4.6
	band := BandInformation{
		Name:         "Band_1",
		VariableUnit: "Unknown",
		MinimumValue: &min,
	}
	attrs := band.Attrs()
	if attrs["name"] != "Band_1" {
		t.Errorf("attrs[name] = %v", attrs["name"])
	}
	if attrs["minimumValue"] != -4.6 {
		t.Errorf("attrs[minimumValue] = %v", attrs["minimumValue"])
	}
	if _, ok := attrs["noDataValue"]; ok {
		t.Error("nil nodata must not emit a key")
	}
	if _, ok := attrs["maximumValue"]; ok {
		t.Error("nil maximum must not emit a key")
	}
}

func TestVariableAttrsAllKeysPresent(t *testing.T) {
	attrs := Variable{Name: "SWE", Type: "float"}.Attrs()
	for _, key := range []string{"name", "unit", "type", "shape", "descriptive_name", "method", "missing_value"} {
		if _, ok := attrs[key]; !ok {
			t.Errorf("variable attrs missing key %q", key)
		}
	}
	if attrs["unit"] != "" {
		t.Errorf("absent unit must be the empty string, got %v", attrs["unit"])
	}
}
