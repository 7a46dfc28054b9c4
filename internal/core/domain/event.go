package domain

import "time"

// EventType identifies a dispatch event published for the notification layer.
type EventType string

const (
	EventLoadStatusChanged EventType = "load.status_changed"
	EventLoadAssigned      EventType = "load.assigned"
	EventDispatchError     EventType = "dispatch.error"
)

// Event is the payload published on the dispatch event channel. The engine
// only produces these; rendering and delivery belong to the notification
// layer.
type Event struct {
	Type           EventType  `json:"type"`
	OrganizationID string     `json:"organization_id"`
	LoadID         string     `json:"load_id,omitempty"`
	LoadReference  string     `json:"load_reference,omitempty"`
	FromStatus     LoadStatus `json:"from_status,omitempty"`
	ToStatus       LoadStatus `json:"to_status,omitempty"`
	DriverID       string     `json:"driver_id,omitempty"`
	VehicleID      string     `json:"vehicle_id,omitempty"`
	ErrorCode      ErrorCode  `json:"error_code,omitempty"`
	Message        string     `json:"message,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
