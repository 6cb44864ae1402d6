package models

import "time"

// DispenserEvent is a single audit log entry.
type DispenserEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	NozzleID    string    `json:"nozzle_id,omitempty"`
	Type        string    `json:"type"`        // COMMAND | FUELING_STARTED | FUELING_COMPLETED | NOZZLE_RESET
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
