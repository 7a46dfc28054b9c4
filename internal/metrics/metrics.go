package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoadValidations counts orchestrated load validations.
	LoadValidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_load_validations_total",
			Help: "Total number of load validations performed",
		},
	)

	// LoadValidationFailures counts validations that produced hard errors.
	LoadValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_load_validation_failures_total",
			Help: "Total number of load validations with hard failures",
		},
	)

	// AvailabilityChecks counts resource availability checks by kind.
	AvailabilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_availability_checks_total",
			Help: "Total number of resource availability checks",
		},
		[]string{"resource"},
	)

	// AvailabilityFailures counts failed availability checks by kind.
	AvailabilityFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_availability_failures_total",
			Help: "Total number of failed resource availability checks",
		},
		[]string{"resource"},
	)

	// ClassifiedErrors counts classified failures per taxonomy code.
	ClassifiedErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_classified_errors_total",
			Help: "Total number of failures run through the error classifier",
		},
		[]string{"code"},
	)

	// RetryAttempts counts retry attempts scheduled by the executor.
	RetryAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_retry_attempts_total",
			Help: "Total number of retries attempted by the recovery executor",
		},
	)

	// EventsPublished counts dispatch events published per type.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_published_total",
			Help: "Total number of dispatch events published",
		},
		[]string{"type"},
	)

	// DBPoolUsage tracks database connection pool usage percentage.
	DBPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
