package recovery

import (
	"context"
	"errors"
	"testing"

	"github.com/loadline/dispatch/internal/core/domain"
)

func classified(t *testing.T, msg string) *domain.DispatchError {
	t.Helper()
	return NewClassifier(NewLog(5)).Classify(errors.New(msg))
}

func TestActionsFor_AlwaysEndsWithDismiss(t *testing.T) {
	msgs := []string{
		"Network request failed",
		"driver unavailable",
		"invalid status transition",
		"permission denied",
		"load reference already exists",
		"record not found",
	}
	for _, msg := range msgs {
		actions := ActionsFor(classified(t, msg), nil)
		if len(actions) == 0 {
			t.Fatalf("%q: expected at least the dismiss action", msg)
		}
		last := actions[len(actions)-1]
		if last.Kind != ActionKindDismiss {
			t.Errorf("%q: last action is %s, want dismiss", msg, last.Kind)
		}
	}
}

func TestActionsFor_TransientLeadsWithRetry(t *testing.T) {
	invoked := false
	retry := func(ctx context.Context) error {
		invoked = true
		return nil
	}

	actions := ActionsFor(classified(t, "database timeout"), retry)
	first := actions[0]
	if first.Kind != ActionKindRetry || !first.Primary {
		t.Fatalf("transient errors should lead with a primary retry, got %+v", first)
	}
	if first.Invoke == nil {
		t.Fatal("retry action should be invocable")
	}
	if err := first.Invoke(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !invoked {
		t.Error("invoking the retry action should call the supplied function")
	}

	// Save-as-draft fallback accompanies retry.
	if actions[1].Kind != ActionKindSaveDraft {
		t.Errorf("expected save_draft fallback, got %s", actions[1].Kind)
	}
}

func TestActionsFor_ResourceUnavailable(t *testing.T) {
	actions := ActionsFor(classified(t, "driver unavailable"), nil)
	if actions[0].Kind != ActionKindSelectDriver || !actions[0].Primary {
		t.Errorf("expected primary select_driver, got %+v", actions[0])
	}
	if actions[1].Kind != ActionKindViewConflicts {
		t.Errorf("expected view_conflicts, got %s", actions[1].Kind)
	}
}

func TestActionsFor_NonRecoverableOmitsRetry(t *testing.T) {
	actions := ActionsFor(classified(t, "permission denied"), nil)
	for _, a := range actions {
		if a.Kind == ActionKindRetry {
			t.Error("non-recoverable errors must not offer retry")
		}
	}
}
