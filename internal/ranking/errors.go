package ranking

import "fmt"

// ValidationKind classifies why a submission was rejected before any store
// access.
type ValidationKind string

const (
	MutualExclusivityViolation ValidationKind = "MUTUAL_EXCLUSIVITY_VIOLATION"
	RankOutOfRange             ValidationKind = "RANK_OUT_OF_RANGE"
	InvalidTasteStatus         ValidationKind = "INVALID_TASTE_STATUS"
	MissingEvidence            ValidationKind = "MISSING_EVIDENCE"
)

// ValidationError reports the first failed shape check.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ranking submission: %s: %s", e.Field, e.Reason)
}

func newValidationError(kind ValidationKind, field, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}
