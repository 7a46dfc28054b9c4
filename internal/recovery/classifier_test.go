package recovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
)

func TestClassify_SubstringRules(t *testing.T) {
	cases := []struct {
		msg  string
		want domain.ErrorCode
	}{
		{"Network request failed", domain.ErrCodeNetworkError},
		{"failed to fetch resource", domain.ErrCodeNetworkError},
		{"dial tcp: connection refused", domain.ErrCodeNetworkError},
		{"database is locked", domain.ErrCodeDatabaseError},
		{"sql: transaction has already been committed", domain.ErrCodeDatabaseError},
		{"Unauthorized", domain.ErrCodeAuthorizationError},
		{"permission denied", domain.ErrCodeAuthorizationError},
		{"rate limit exceeded", domain.ErrCodeRateLimitError},
		{"driver is unavailable for this window", domain.ErrCodeDriverUnavailable},
		{"vehicle unavailable", domain.ErrCodeVehicleUnavailable},
		{"invalid status transition from pending to paid", domain.ErrCodeInvalidStatusTransition},
		{"load reference already exists", domain.ErrCodeDuplicateReference},
		{"record not found", domain.ErrCodeLoadNotFound},
		{"something entirely unexpected", domain.ErrCodeDatabaseError},
	}

	for _, tc := range cases {
		c := NewClassifier(NewLog(10))
		got := c.Classify(errors.New(tc.msg))
		if got.Code != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.msg, got.Code, tc.want)
		}
		if got.Details.Raw != tc.msg {
			t.Errorf("Classify(%q): raw detail %q not preserved", tc.msg, got.Details.Raw)
		}
	}
}

func TestClassify_CatalogMetadata(t *testing.T) {
	c := NewClassifier(NewLog(10))

	got := c.Classify(errors.New("Network request failed"))
	if !got.Recoverable {
		t.Error("NETWORK_ERROR must be recoverable")
	}
	if got.Message == "" || got.UserAction == "" {
		t.Error("classified error should carry catalog message and user action")
	}
	if got.Timestamp.IsZero() {
		t.Error("classified error should be timestamped")
	}

	got = c.Classify(errors.New("permission denied"))
	if got.Recoverable {
		t.Error("AUTHORIZATION_ERROR must not be recoverable")
	}
}

func TestClassify_TypedErrors(t *testing.T) {
	c := NewClassifier(NewLog(10))

	cases := []struct {
		err  error
		want domain.ErrorCode
	}{
		{WithCode(domain.ErrCodeStatusSyncFailed, errors.New("write bounced")), domain.ErrCodeStatusSyncFailed},
		{WithCode(domain.ErrCodeLocationUpdateFailed, errors.New("boom")), domain.ErrCodeLocationUpdateFailed},
		{fmt.Errorf("getting load: %w", storage.ErrNotFound), domain.ErrCodeLoadNotFound},
		{fmt.Errorf("creating load: %w", storage.ErrDuplicateReference), domain.ErrCodeDuplicateReference},
		{fmt.Errorf("updating load: %w", storage.ErrAssignmentConflict), domain.ErrCodeAssignmentConflict},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.err); got.Code != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.err, got.Code, tc.want)
		}
	}
}

func TestClassify_PassesThroughDispatchError(t *testing.T) {
	c := NewClassifier(NewLog(10))
	original := c.Classify(errors.New("Network request failed"))
	again := c.Classify(original)
	if again != original {
		t.Error("an already-classified error should pass through unchanged")
	}
}

func TestLog_Bounded(t *testing.T) {
	c := NewClassifier(NewLog(3))
	for i := 0; i < 10; i++ {
		c.Classify(fmt.Errorf("network glitch %d", i))
	}
	if got := c.Log().Len(); got != 3 {
		t.Fatalf("log should retain 3 entries, has %d", got)
	}
	recent := c.Log().Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(recent))
	}
	if recent[0].Details.Raw != "network glitch 9" {
		t.Errorf("newest entry first, got %q", recent[0].Details.Raw)
	}
}
