package meta

// Attrs is the attribute dict handed to the metadata store for one
// element instance.
type Attrs map[string]interface{}

const (
	WGS84ProjectionName = "WGS 84 EPSG:4326"
	WGS84Units          = "Decimal degrees"

	// DefaultTitle is the literal a freshly created resource carries.
	// Reconciliation only overwrites titles still equal to it.
	DefaultTitle = "Untitled resource"
)

// OriginalCoverage is the native-projection extent plus its spatial
// reference. Singleton per aggregation.
type OriginalCoverage struct {
	Extent    SpatialExtent
	Reference SpatialReference
}

// Value renders the persisted value map. Numeric limits are stored as
// strings; consumers string-compare them, so the formatting is part of
// the contract.
func (c OriginalCoverage) Value() map[string]string {
	return map[string]string{
		"northlimit":        formatLimit(c.Extent.North),
		"southlimit":        formatLimit(c.Extent.South),
		"eastlimit":         formatLimit(c.Extent.East),
		"westlimit":         formatLimit(c.Extent.West),
		"units":             c.Extent.Units,
		"projection":        c.Reference.ProjectionName.String(),
		"projection_string": c.Reference.ProjectionString.String(),
		"datum":             c.Reference.Datum.String(),
	}
}

func (c OriginalCoverage) Attrs() Attrs {
	return Attrs{"value": c.Value()}
}

// WGS84Coverage is the derived geographic extent. Never hand-edited;
// recomputed whenever the original coverage changes.
type WGS84Coverage struct {
	Extent SpatialExtent
}

// CoverageType reports "point" for degenerate extents, "box" otherwise.
func (c WGS84Coverage) CoverageType() string {
	if c.Extent.IsPoint() {
		return "point"
	}
	return "box"
}

func (c WGS84Coverage) Value() map[string]string {
	if c.Extent.IsPoint() {
		return map[string]string{
			"north":      formatLimit(c.Extent.North),
			"east":       formatLimit(c.Extent.East),
			"units":      WGS84Units,
			"projection": WGS84ProjectionName,
		}
	}
	return map[string]string{
		"northlimit": formatLimit(c.Extent.North),
		"southlimit": formatLimit(c.Extent.South),
		"eastlimit":  formatLimit(c.Extent.East),
		"westlimit":  formatLimit(c.Extent.West),
		"units":      WGS84Units,
		"projection": WGS84ProjectionName,
	}
}

func (c WGS84Coverage) Attrs() Attrs {
	return Attrs{"type": c.CoverageType(), "value": c.Value()}
}

// CellInformation describes the raster grid. Singleton per raster
// aggregation.
type CellInformation struct {
	Rows           int
	Columns        int
	CellSizeXValue float64
	CellSizeYValue float64
	CellDataType   string
}

func (c CellInformation) Attrs() Attrs {
	return Attrs{
		"rows":           c.Rows,
		"columns":        c.Columns,
		"cellSizeXValue": c.CellSizeXValue,
		"cellSizeYValue": c.CellSizeYValue,
		"cellDataType":   c.CellDataType,
	}
}

// BandInformation describes one raster band. Ordered by band index.
type BandInformation struct {
	Name         string
	VariableName string
	VariableUnit string
	NoDataValue  *float64
	MaximumValue *float64
	MinimumValue *float64
	Method       string
	Comment      string
}

func (b BandInformation) Attrs() Attrs {
	a := Attrs{
		"name":         b.Name,
		"variableName": b.VariableName,
		"variableUnit": b.VariableUnit,
	}
	if b.NoDataValue != nil {
		a["noDataValue"] = *b.NoDataValue
	}
	if b.MaximumValue != nil {
		a["maximumValue"] = *b.MaximumValue
	}
	if b.MinimumValue != nil {
		a["minimumValue"] = *b.MinimumValue
	}
	if b.Method != "" {
		a["method"] = b.Method
	}
	if b.Comment != "" {
		a["comment"] = b.Comment
	}
	return a
}

// FieldInformation describes one shapefile attribute-table column.
type FieldInformation struct {
	FieldName      string
	FieldType      string
	FieldTypeCode  string
	FieldWidth     *int
	FieldPrecision *int
}

func (f FieldInformation) Attrs() Attrs {
	a := Attrs{
		"fieldName": f.FieldName,
		"fieldType": f.FieldType,
	}
	if f.FieldTypeCode != "" {
		a["fieldTypeCode"] = f.FieldTypeCode
	}
	if f.FieldWidth != nil {
		a["fieldWidth"] = *f.FieldWidth
	}
	if f.FieldPrecision != nil {
		a["fieldPrecision"] = *f.FieldPrecision
	}
	return a
}

// GeometryInformation is the vector layer summary. Singleton.
type GeometryInformation struct {
	FeatureCount int
	GeometryType string
}

func (g GeometryInformation) Attrs() Attrs {
	return Attrs{"featureCount": g.FeatureCount, "geometryType": g.GeometryType}
}

// Variable describes one NetCDF variable. Absent attributes map to
// empty strings, not omitted keys; downstream create-element calls
// expect all keys present.
type Variable struct {
	Name            string
	Unit            string
	Type            string
	Shape           string
	DescriptiveName string
	Method          string
	MissingValue    string
}

func (v Variable) Attrs() Attrs {
	return Attrs{
		"name":             v.Name,
		"unit":             v.Unit,
		"type":             v.Type,
		"shape":            v.Shape,
		"descriptive_name": v.DescriptiveName,
		"method":           v.Method,
		"missing_value":    v.MissingValue,
	}
}
