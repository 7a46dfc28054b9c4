// Package recovery converts heterogeneous failures into the dispatch error
// taxonomy, proposes user-facing recovery actions, and runs mutations under
// a bounded-retry policy.
package recovery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/metrics"
)

// CodedError carries an explicit taxonomy code so collaborators can bypass
// substring inference entirely. The substring classifier remains the
// fallback for truly opaque failures.
type CodedError struct {
	Code domain.ErrorCode
	Err  error
}

func (e *CodedError) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

// WithCode tags err with an explicit taxonomy code.
func WithCode(code domain.ErrorCode, err error) error {
	return &CodedError{Code: code, Err: err}
}

// Classifier maps raw failures onto the dispatch error taxonomy and records
// every classification in a rolling log.
type Classifier struct {
	log *Log
}

// NewClassifier creates a classifier backed by the given rolling log.
func NewClassifier(log *Log) *Classifier {
	if log == nil {
		log = NewLog(DefaultLogSize)
	}
	return &Classifier{log: log}
}

// Log returns the rolling diagnostic log.
func (c *Classifier) Log() *Log {
	return c.log
}

// substringRule matches when every token appears in the lowercased message.
// Rules are evaluated in priority order; the first match wins.
type substringRule struct {
	tokens []string
	code   domain.ErrorCode
}

var classificationRules = []substringRule{
	{[]string{"network"}, domain.ErrCodeNetworkError},
	{[]string{"fetch"}, domain.ErrCodeNetworkError},
	{[]string{"connection refused"}, domain.ErrCodeNetworkError},
	{[]string{"timeout"}, domain.ErrCodeNetworkError},
	{[]string{"database"}, domain.ErrCodeDatabaseError},
	{[]string{"sql"}, domain.ErrCodeDatabaseError},
	{[]string{"store"}, domain.ErrCodeDatabaseError},
	{[]string{"unauthorized"}, domain.ErrCodeAuthorizationError},
	{[]string{"permission"}, domain.ErrCodeAuthorizationError},
	{[]string{"forbidden"}, domain.ErrCodeAuthorizationError},
	{[]string{"rate limit"}, domain.ErrCodeRateLimitError},
	{[]string{"too many requests"}, domain.ErrCodeRateLimitError},
	{[]string{"driver", "unavailable"}, domain.ErrCodeDriverUnavailable},
	{[]string{"driver", "already assigned"}, domain.ErrCodeDriverUnavailable},
	{[]string{"vehicle", "unavailable"}, domain.ErrCodeVehicleUnavailable},
	{[]string{"vehicle", "already assigned"}, domain.ErrCodeVehicleUnavailable},
	{[]string{"status", "transition"}, domain.ErrCodeInvalidStatusTransition},
	{[]string{"reference", "exists"}, domain.ErrCodeDuplicateReference},
	{[]string{"location", "update"}, domain.ErrCodeLocationUpdateFailed},
	{[]string{"assignment conflict"}, domain.ErrCodeAssignmentConflict},
	{[]string{"not found"}, domain.ErrCodeLoadNotFound},
}

// Classify converts a raw failure into a DispatchError and appends it to the
// rolling log. Typed errors (CodedError, storage sentinels) map directly;
// anything else goes through case-insensitive substring matching, defaulting
// to DATABASE_ERROR. Classification is best-effort: ambiguous messages may
// land on the wrong code.
func (c *Classifier) Classify(err error) *domain.DispatchError {
	derr := c.classify(err)
	metrics.ClassifiedErrors.WithLabelValues(string(derr.Code)).Inc()
	c.log.Append(derr)
	return derr
}

func (c *Classifier) classify(err error) *domain.DispatchError {
	if err == nil {
		return newDispatchError(domain.ErrCodeDatabaseError, "")
	}

	// Already classified: pass through untouched.
	var ready *domain.DispatchError
	if errors.As(err, &ready) {
		return ready
	}

	// Typed paths first.
	var coded *CodedError
	if errors.As(err, &coded) {
		return newDispatchError(coded.Code, err.Error())
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return newDispatchError(domain.ErrCodeLoadNotFound, err.Error())
	case errors.Is(err, storage.ErrDuplicateReference):
		return newDispatchError(domain.ErrCodeDuplicateReference, err.Error())
	case errors.Is(err, storage.ErrAssignmentConflict):
		return newDispatchError(domain.ErrCodeAssignmentConflict, err.Error())
	}

	// Substring fallback.
	msg := strings.ToLower(err.Error())
	for _, rule := range classificationRules {
		matched := true
		for _, token := range rule.tokens {
			if !strings.Contains(msg, token) {
				matched = false
				break
			}
		}
		if matched {
			return newDispatchError(rule.code, err.Error())
		}
	}

	return newDispatchError(domain.ErrCodeDatabaseError, err.Error())
}

func newDispatchError(code domain.ErrorCode, raw string) *domain.DispatchError {
	entry, ok := domain.ErrorCatalog[code]
	if !ok {
		entry = domain.CatalogEntry{
			Message:     fmt.Sprintf("unexpected error (%s)", code),
			Recoverable: false,
		}
	}
	return &domain.DispatchError{
		Code:        code,
		Message:     entry.Message,
		Details:     domain.ErrorDetails{Raw: raw},
		Recoverable: entry.Recoverable,
		UserAction:  entry.UserAction,
		Timestamp:   time.Now(),
	}
}
