package meta

import "strconv"

// SpatialExtent is an axis-aligned bounding box in the units of some
// CRS. It may be degenerate (a single point), in which case consumers
// must emit a point coverage rather than a box coverage.
type SpatialExtent struct {
	North float64
	South float64
	East  float64
	West  float64
	Units string
}

// Validate rejects inverted boxes. Violations are reported, never
// silently corrected.
func (e SpatialExtent) Validate() error {
	if e.North < e.South {
		return Structural(RuleInvertedExtent, "north limit %v is south of south limit %v", e.North, e.South)
	}
	if e.East < e.West {
		return Structural(RuleInvertedExtent, "east limit %v is west of west limit %v", e.East, e.West)
	}
	return nil
}

// IsPoint reports whether the extent collapses to a single point.
func (e SpatialExtent) IsPoint() bool {
	return e.North == e.South && e.East == e.West
}

// formatLimit renders a coordinate the way the persisted value maps
// store it: a decimal string, full double precision, no rounding.
func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
