package domain

// RuleResult is the outcome of a business-rule validation. Errors are hard
// failures that must block the write; warnings are advisories the caller may
// surface but not act on. A RuleResult is call-scoped and never persisted.
type RuleResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// OK returns a passing result.
func OK() RuleResult {
	return RuleResult{Valid: true}
}

// Fail returns a failing result with the given error messages.
func Fail(errs ...string) RuleResult {
	return RuleResult{Valid: false, Errors: errs}
}

// AddError appends a hard failure and marks the result invalid.
func (r *RuleResult) AddError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// AddWarning appends a soft advisory without affecting validity.
func (r *RuleResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge folds other into r. Validity is the AND of both; errors and warnings
// concatenate in call order so callers see every problem in one round trip.
func (r *RuleResult) Merge(other RuleResult) {
	r.Valid = r.Valid && other.Valid
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}
