package service

import (
	"time"

	"dispenser_control/internal/models"
)

// Config is the simulation surface. Zero fields fall back to the reference
// deployment values.
type Config struct {
	NozzleCount     int           // number of nozzles, ids "01".."NN"
	InitialStatus   string        // status every nozzle starts in
	UnitPrice       float64       // currency per liter, fixed per episode
	VolumeQuantum   float64       // liters added per tick
	TargetVolume    float64       // liters at which an episode completes
	AuthorizeDelay  time.Duration // READY -> AUTHORIZED
	TickPeriod      time.Duration // AUTHORIZED self-loop
	CompletionDelay time.Duration // COMPLETED -> FREE
}

// Reference deployment defaults.
const (
	DefaultNozzleCount     = 48
	DefaultUnitPrice       = 5.89
	DefaultVolumeQuantum   = 0.5
	DefaultTargetVolume    = 20.0
	DefaultAuthorizeDelay  = 2 * time.Second
	DefaultTickPeriod      = 500 * time.Millisecond
	DefaultCompletionDelay = 3 * time.Second
)

// DefaultConfig returns the reference deployment configuration.
func DefaultConfig() Config {
	return Config{
		NozzleCount:     DefaultNozzleCount,
		InitialStatus:   models.StatusFree,
		UnitPrice:       DefaultUnitPrice,
		VolumeQuantum:   DefaultVolumeQuantum,
		TargetVolume:    DefaultTargetVolume,
		AuthorizeDelay:  DefaultAuthorizeDelay,
		TickPeriod:      DefaultTickPeriod,
		CompletionDelay: DefaultCompletionDelay,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NozzleCount <= 0 {
		c.NozzleCount = d.NozzleCount
	}
	if c.InitialStatus == "" {
		c.InitialStatus = d.InitialStatus
	}
	if c.UnitPrice <= 0 {
		c.UnitPrice = d.UnitPrice
	}
	if c.VolumeQuantum <= 0 {
		c.VolumeQuantum = d.VolumeQuantum
	}
	if c.TargetVolume <= 0 {
		c.TargetVolume = d.TargetVolume
	}
	if c.AuthorizeDelay <= 0 {
		c.AuthorizeDelay = d.AuthorizeDelay
	}
	if c.TickPeriod <= 0 {
		c.TickPeriod = d.TickPeriod
	}
	if c.CompletionDelay <= 0 {
		c.CompletionDelay = d.CompletionDelay
	}
	return c
}

// LogFilter supports audit-log filtering by time range, type and nozzle.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", "COMMAND", "FUELING_STARTED", "FUELING_COMPLETED", "NOZZLE_RESET"
	NozzleID string    // "" means all nozzles
}
