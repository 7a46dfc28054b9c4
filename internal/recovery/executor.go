package recovery

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/metrics"
)

const (
	// DefaultMaxRetries bounds cumulative retries per operation id.
	DefaultMaxRetries = 3
	// DefaultBaseDelay seeds the exponential backoff.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps the backoff.
	DefaultMaxDelay = 10 * time.Second
)

// retryableCodes is the fixed subset of taxonomy codes worth retrying.
// Deterministic rule violations are excluded: retrying them cannot succeed.
var retryableCodes = map[domain.ErrorCode]bool{
	domain.ErrCodeDatabaseError:        true,
	domain.ErrCodeNetworkError:         true,
	domain.ErrCodeRateLimitError:       true,
	domain.ErrCodeLocationUpdateFailed: true,
	domain.ErrCodeStatusSyncFailed:     true,
}

// Operation is a mutation run under the recovery policy.
type Operation func(ctx context.Context) (any, error)

// Outcome is the final report of an executed operation.
type Outcome struct {
	Success bool
	Data    any
	Err     *domain.DispatchError
	Actions []Action
}

// Executor runs operations, classifies their failures and retries the
// transient ones with exponential backoff. Retry counts accumulate per
// operation id across calls: each call performs at most one extra attempt,
// while the counter enforces the cumulative bound.
type Executor struct {
	classifier *Classifier
	log        *slog.Logger

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	mu       sync.Mutex
	attempts map[string]int

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with default retry policy.
func NewExecutor(classifier *Classifier, log *slog.Logger) *Executor {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		classifier: classifier,
		log:        log,
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		maxDelay:   DefaultMaxDelay,
		attempts:   make(map[string]int),
		sleep:      sleepCtx,
	}
}

// WithPolicy overrides the retry bounds.
func (e *Executor) WithPolicy(maxRetries int, baseDelay, maxDelay time.Duration) *Executor {
	if maxRetries > 0 {
		e.maxRetries = maxRetries
	}
	if baseDelay > 0 {
		e.baseDelay = baseDelay
	}
	if maxDelay > 0 {
		e.maxDelay = maxDelay
	}
	return e
}

// Classifier returns the executor's classifier.
func (e *Executor) Classifier() *Classifier {
	return e.classifier
}

// Execute runs op, classifying and possibly retrying on failure. operationID
// keys the cumulative retry counter; callers repeating the same logical
// operation must pass the same id. name is used for logging only.
func (e *Executor) Execute(ctx context.Context, op Operation, name, operationID string) Outcome {
	if operationID == "" {
		operationID = name
	}

	data, err := op(ctx)
	if err == nil {
		e.clear(operationID)
		return Outcome{Success: true, Data: data}
	}

	derr := e.classifier.Classify(err)
	attempt := e.bump(operationID)

	if e.shouldRetry(derr, attempt) {
		delay := e.backoff(attempt)
		e.log.Warn("operation failed, retrying",
			"operation", name, "id", operationID,
			"code", derr.Code, "attempt", attempt, "delay", delay)
		metrics.RetryAttempts.Inc()

		if sleepErr := e.sleep(ctx, delay); sleepErr == nil {
			data, err = op(ctx)
			if err == nil {
				e.clear(operationID)
				return Outcome{Success: true, Data: data}
			}
			derr = e.classifier.Classify(err)
			e.bump(operationID)
		}
	}

	if e.count(operationID) >= e.maxRetries {
		e.clear(operationID)
	}

	e.log.Error("operation failed",
		"operation", name, "id", operationID, "code", derr.Code, "error", derr.Details.Raw)

	retry := func(ctx context.Context) error {
		_, opErr := op(ctx)
		return opErr
	}
	return Outcome{
		Success: false,
		Err:     derr,
		Actions: ActionsFor(derr, retry),
	}
}

// shouldRetry requires both the recoverable flag and membership in the
// retryable subset, plus headroom under the cumulative bound.
func (e *Executor) shouldRetry(derr *domain.DispatchError, attempt int) bool {
	return derr.Recoverable && retryableCodes[derr.Code] && attempt < e.maxRetries
}

// backoff returns min(baseDelay * 2^(attempt-1), maxDelay).
func (e *Executor) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(e.baseDelay) * math.Pow(2, float64(attempt-1))
	if d > float64(e.maxDelay) {
		return e.maxDelay
	}
	return time.Duration(d)
}

func (e *Executor) bump(operationID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attempts[operationID]++
	return e.attempts[operationID]
}

func (e *Executor) count(operationID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts[operationID]
}

func (e *Executor) clear(operationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.attempts, operationID)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
