package domain

import "time"

// Organization scopes every record in the system. The engine trusts the
// organization id supplied by the identity layer and never resolves it
// itself.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
