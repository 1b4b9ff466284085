package meta

import "fmt"

// UnreadableDatasetError means the format driver could not open the file
// at all. The whole upload is rejected and no metadata is committed.
type UnreadableDatasetError struct {
	Path   string
	Reason string
}

func (e *UnreadableDatasetError) Error() string {
	return fmt.Sprintf("could not open dataset %s: %s", e.Path, e.Reason)
}

// Structural validation rule identifiers. Each maps to exactly one
// user-facing message so callers can distinguish the violated rule.
const (
	RuleVrtCount            = "vrt-file-count"
	RuleTifCount            = "tif-file-count"
	RuleMissingReferenced   = "vrt-missing-referenced-tif"
	RuleExtraUnreferenced   = "vrt-extra-unreferenced-tif"
	RuleAmbiguousReference  = "vrt-ambiguous-reference"
	RuleTooFewFiles         = "shapefile-too-few-files"
	RuleMissingMandatory    = "shapefile-missing-mandatory-file"
	RuleDuplicateExtension  = "shapefile-duplicate-extension"
	RuleBasenameMismatch    = "shapefile-basename-mismatch"
	RuleUnknownExtension    = "extension-not-recognized"
	RuleDriverLiveness      = "driver-open-failed"
	RuleDegenerateExtent    = "degenerate-extent"
	RuleInvertedExtent      = "inverted-extent"
)

// StructuralValidationError reports a file set that does not meet the
// structural contract of its format. Rule is one of the Rule* constants.
type StructuralValidationError struct {
	Rule    string
	Message string
}

func (e *StructuralValidationError) Error() string {
	return e.Message
}

// Structural builds a StructuralValidationError.
func Structural(rule, format string, args ...interface{}) *StructuralValidationError {
	return &StructuralValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// ReprojectionError means the source CRS could not be used to build a
// transform. Callers degrade to "no WGS84 coverage" instead of aborting
// the extraction.
type ReprojectionError struct {
	Reason string
}

func (e *ReprojectionError) Error() string {
	return fmt.Sprintf("reprojection failed: %s", e.Reason)
}

// ReconciliationConflict is a programming-contract violation inside the
// reconciler, e.g. creating a second instance of a singleton element
// without deleting the first. Not user-facing.
type ReconciliationConflict struct {
	Kind    Kind
	Message string
}

func (e *ReconciliationConflict) Error() string {
	return fmt.Sprintf("reconciliation conflict on %s: %s", e.Kind, e.Message)
}
