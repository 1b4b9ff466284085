package meta

// UnknownLiteral is the historical wire representation of an SRS field
// whose value could not be determined. Re-ingesting a record carrying
// this literal must not be mistaken for a successful CRS parse, so the
// unknown state is modelled explicitly instead of reusing "".
const UnknownLiteral = "unknown"

// SRSField is a spatial reference attribute that is either a known
// value or explicitly unknown.
type SRSField struct {
	value string
	known bool
}

func KnownSRS(value string) SRSField {
	return SRSField{value: value, known: true}
}

func UnknownSRS() SRSField {
	return SRSField{}
}

// ParseSRSField maps the wire representation back to a field. Both ""
// and the "unknown" literal decode to the unknown state.
func ParseSRSField(s string) SRSField {
	if s == "" || s == UnknownLiteral {
		return UnknownSRS()
	}
	return KnownSRS(s)
}

func (f SRSField) Known() bool {
	return f.known
}

func (f SRSField) Value() (string, bool) {
	return f.value, f.known
}

// String returns the wire representation, with the unknown literal for
// unset fields.
func (f SRSField) String() string {
	if !f.known {
		return UnknownLiteral
	}
	return f.value
}

// SpatialReference describes the CRS of a native extent. Unset fields
// carry the unknown literal on the wire.
type SpatialReference struct {
	ProjectionName   SRSField
	ProjectionString SRSField
	Datum            SRSField
	Unit             string
}

// UnknownSpatialReference is used when a dataset has no parseable CRS.
func UnknownSpatialReference() SpatialReference {
	return SpatialReference{
		ProjectionName:   UnknownSRS(),
		ProjectionString: UnknownSRS(),
		Datum:            UnknownSRS(),
		Unit:             UnknownLiteral,
	}
}
