// Package rules holds the pure business-rule validators for the load
// lifecycle. Every function here is deterministic, side-effect free and safe
// for concurrent use.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/loadline/dispatch/internal/core/domain"
)

// statusTransitions is the fixed adjacency map of legal load status changes.
// Terminal statuses map to an empty set.
var statusTransitions = map[domain.LoadStatus][]domain.LoadStatus{
	domain.LoadStatusDraft: {
		domain.LoadStatusPending, domain.LoadStatusCancelled,
	},
	domain.LoadStatusPending: {
		domain.LoadStatusPosted, domain.LoadStatusAssigned, domain.LoadStatusCancelled,
	},
	domain.LoadStatusPosted: {
		domain.LoadStatusBooked, domain.LoadStatusAssigned, domain.LoadStatusPending, domain.LoadStatusCancelled,
	},
	domain.LoadStatusBooked: {
		domain.LoadStatusConfirmed, domain.LoadStatusCancelled,
	},
	domain.LoadStatusConfirmed: {
		domain.LoadStatusAssigned, domain.LoadStatusDispatched, domain.LoadStatusCancelled,
	},
	domain.LoadStatusAssigned: {
		domain.LoadStatusDispatched, domain.LoadStatusPending, domain.LoadStatusCancelled,
	},
	domain.LoadStatusDispatched: {
		domain.LoadStatusInTransit, domain.LoadStatusAtPickup, domain.LoadStatusProblem, domain.LoadStatusCancelled,
	},
	domain.LoadStatusInTransit: {
		domain.LoadStatusAtPickup, domain.LoadStatusEnRoute, domain.LoadStatusAtDelivery, domain.LoadStatusProblem,
	},
	domain.LoadStatusAtPickup: {
		domain.LoadStatusPickedUp, domain.LoadStatusProblem, domain.LoadStatusCancelled,
	},
	domain.LoadStatusPickedUp: {
		domain.LoadStatusInTransit, domain.LoadStatusEnRoute, domain.LoadStatusProblem,
	},
	domain.LoadStatusEnRoute: {
		domain.LoadStatusAtDelivery, domain.LoadStatusProblem,
	},
	domain.LoadStatusAtDelivery: {
		domain.LoadStatusDelivered, domain.LoadStatusProblem,
	},
	domain.LoadStatusDelivered: {
		domain.LoadStatusPodRequired, domain.LoadStatusCompleted, domain.LoadStatusInvoiced,
	},
	domain.LoadStatusPodRequired: {
		domain.LoadStatusCompleted, domain.LoadStatusInvoiced,
	},
	domain.LoadStatusCompleted: {
		domain.LoadStatusInvoiced,
	},
	domain.LoadStatusInvoiced: {
		domain.LoadStatusPaid,
	},
	domain.LoadStatusPaid:      {},
	domain.LoadStatusCancelled: {},
	domain.LoadStatusProblem: {
		domain.LoadStatusInTransit, domain.LoadStatusEnRoute, domain.LoadStatusCancelled,
	},
}

// AllowedTransitions returns the legal successors of status, sorted for
// stable output. Unknown statuses return nil.
func AllowedTransitions(status domain.LoadStatus) []domain.LoadStatus {
	successors, ok := statusTransitions[status]
	if !ok {
		return nil
	}
	out := make([]domain.LoadStatus, len(successors))
	copy(out, successors)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateStatusTransition checks whether current -> requested is a legal
// edge in the lifecycle graph. Risky-but-legal transitions still produce
// warnings.
func ValidateStatusTransition(current, requested domain.LoadStatus) domain.RuleResult {
	result := domain.OK()

	successors, known := statusTransitions[current]
	if !known {
		result.AddError(fmt.Sprintf("unknown load status %q", current))
		return result
	}

	legal := false
	for _, s := range successors {
		if s == requested {
			legal = true
			break
		}
	}

	if !legal {
		if len(successors) == 0 {
			result.AddError(fmt.Sprintf(
				"invalid status transition: %s is terminal and permits no further changes", current))
		} else {
			result.AddError(fmt.Sprintf(
				"invalid status transition from %s to %s (allowed: %s)",
				current, requested, joinStatuses(AllowedTransitions(current))))
		}
	}

	// Advisories apply whether or not the edge is legal.
	if requested == domain.LoadStatusCancelled {
		result.AddWarning("cancelling a load is final; the record becomes read-only")
	}
	if requested == domain.LoadStatusCompleted && current != domain.LoadStatusDelivered {
		result.AddWarning("completing a load that was never marked delivered skips delivery confirmation")
	}

	return result
}

func joinStatuses(statuses []domain.LoadStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
