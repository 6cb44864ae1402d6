package models

// Nozzle statuses as exposed over the API.
const (
	StatusFree         = "FREE"
	StatusWaiting      = "WAITING"
	StatusReady        = "READY"
	StatusAuthorized   = "AUTHORIZED"
	StatusCompleted    = "COMPLETED"
	StatusBlocked      = "BLOCKED"
	StatusFailed       = "FAILED"
	StatusUnconfigured = "UNCONFIGURED"
)

// Operator commands accepted by the dispatcher.
const (
	CommandAuthorize = "AUTHORIZE"
	CommandBlock     = "BLOCK"
	CommandFree      = "FREE"
)

// Fueling is the live data of one fueling episode.
type Fueling struct {
	Volume float64 `json:"volume"` // liters dispensed so far
	Price  float64 `json:"price"`  // unit price, fixed at authorization time
	Total  float64 `json:"total"`  // Volume*Price rounded to 2 decimals
}

// Nozzle is the current snapshot of a single dispenser nozzle.
// Fueling is non-nil exactly while Status is AUTHORIZED or COMPLETED,
// and serializes as JSON null otherwise.
type Nozzle struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"` // FREE | WAITING | READY | AUTHORIZED | COMPLETED | BLOCKED | FAILED | UNCONFIGURED
	Fueling *Fueling `json:"fueling"`
}
