package repository

import (
	"context"
	"database/sql"
	"time"

	"dispenser_control/internal/models"
)

// EventRepo is an append-only audit trail of engine activity. It is
// observational only: nothing is ever read back into nozzle state.
type EventRepo interface {
	Append(ctx context.Context, e models.DispenserEvent) error
	List(ctx context.Context, from, to time.Time, typ, nozzleID string) ([]models.DispenserEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
