package service

import (
	"context"

	"dispenser_control/internal/logger"
	"dispenser_control/internal/models"
	"dispenser_control/internal/repository"
)

// Dispenser applies operator commands to individual nozzles.
type Dispenser interface {
	Apply(ctx context.Context, nozzleID, command string) (models.Nozzle, error)
}

// Monitoring exposes read-only snapshots of the whole nozzle set.
type Monitoring interface {
	Snapshot(ctx context.Context) ([]models.Nozzle, error)
}

// EventLog exposes the append-only audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DispenserEvent, error)
}

// Engine is the simulation lifecycle. Run blocks until ctx is canceled,
// then stops every outstanding nozzle timer (graceful shutdown in main()).
type Engine interface {
	Run(ctx context.Context)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Dispenser
	Monitoring
	EventLog
	Engine
}

// NewService wires the repository layer and simulation config into concrete
// services. The engine implements Dispenser, Monitoring and Engine itself;
// it owns the nozzle set exclusively.
func NewService(repos *repository.Repository, cfg Config, log *logger.Logger) *Service {
	engine := NewEngineService(cfg, repos.EventRepo, log)
	return &Service{
		Dispenser:  engine,
		Monitoring: engine,
		EventLog:   NewEventLogService(repos.EventRepo),
		Engine:     engine,
	}
}
