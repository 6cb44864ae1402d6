package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"dispenser_control/internal/logger"
	"dispenser_control/internal/models"
	"dispenser_control/internal/repository"
)

// Audit event types.
const (
	EventCommand          = "COMMAND"
	EventFuelingStarted   = "FUELING_STARTED"
	EventFuelingCompleted = "FUELING_COMPLETED"
	EventNozzleReset      = "NOZZLE_RESET"
)

// ErrNozzleNotFound is returned by Apply for an unknown nozzle id.
var ErrNozzleNotFound = errors.New("nozzle not found")

// nozzle is the engine-private mutable record. All access goes through the
// engine mutex.
type nozzle struct {
	id      string
	status  string
	fueling *models.Fueling

	// episode invalidates scheduled transitions: a timer only fires if the
	// nozzle is still in the episode it was scheduled under AND still in the
	// exact status it was scheduled to advance from. Stop() alone is not
	// enough, a timer may already be past the point of cancellation.
	episode uint64
	timer   *time.Timer // at most one pending transition per nozzle
}

// snapshot returns a detached value copy safe to hand out.
func (n *nozzle) snapshot() models.Nozzle {
	out := models.Nozzle{ID: n.id, Status: n.status}
	if n.fueling != nil {
		f := *n.fueling
		out.Fueling = &f
	}
	return out
}

// EngineService owns the nozzle set and advances each nozzle through the
// fueling cycle via guarded timers. Commands and timer callbacks serialize
// on one mutex, so the whole engine behaves as a single logical owner.
type EngineService struct {
	mu      sync.Mutex
	cfg     Config
	nozzles []*nozzle // fixed order, fixed cardinality
	byID    map[string]*nozzle
	stopped bool

	events repository.EventRepo
	log    *logger.Logger
}

// NewEngineService creates the nozzle set. Ids are zero-padded decimal
// strings assigned once and never reassigned.
func NewEngineService(cfg Config, events repository.EventRepo, log *logger.Logger) *EngineService {
	cfg = cfg.withDefaults()
	e := &EngineService{
		cfg:     cfg,
		nozzles: make([]*nozzle, cfg.NozzleCount),
		byID:    make(map[string]*nozzle, cfg.NozzleCount),
		events:  events,
		log:     log,
	}
	for i := range e.nozzles {
		n := &nozzle{
			id:     fmt.Sprintf("%02d", i+1),
			status: cfg.InitialStatus,
		}
		e.nozzles[i] = n
		e.byID[n.id] = n
	}
	return e
}

// Run blocks until ctx is canceled, then stops all outstanding timers.
func (e *EngineService) Run(ctx context.Context) {
	<-ctx.Done()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	for _, n := range e.nozzles {
		e.invalidate(n)
	}
}

// Snapshot returns an ordered, detached copy of every nozzle record.
// Copies are taken under the mutex; a reader never observes a torn record.
func (e *EngineService) Snapshot(ctx context.Context) ([]models.Nozzle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Nozzle, len(e.nozzles))
	for i, n := range e.nozzles {
		out[i] = n.snapshot()
	}
	return out, nil
}

// Apply validates a command against the nozzle's current status and either
// mutates immediately or schedules the next transition. It returns the record
// right after validation; delayed effects are observed later via Snapshot.
//
// AUTHORIZE is accepted only from WAITING or BLOCKED and is an acknowledged
// no-op elsewhere, which keeps the command surface idempotent. BLOCK and FREE
// are accepted from any state. An unrecognized command is a logged no-op
// success so the dispatcher stays total.
func (e *EngineService) Apply(ctx context.Context, nozzleID, command string) (models.Nozzle, error) {
	cmd := strings.ToUpper(strings.TrimSpace(command))

	e.mu.Lock()
	n, ok := e.byID[nozzleID]
	if !ok {
		e.mu.Unlock()
		return models.Nozzle{}, fmt.Errorf("%w: %q", ErrNozzleNotFound, nozzleID)
	}

	var ev *models.DispenserEvent
	switch cmd {
	case models.CommandAuthorize:
		ev = e.authorize(n)
	case models.CommandBlock:
		ev = e.block(n)
	case models.CommandFree:
		ev = e.freeNozzle(n)
	default:
		if e.log != nil {
			e.log.Warnw("unknown_command_ignored", "nozzle", nozzleID, "command", command)
		}
	}
	out := n.snapshot()
	e.mu.Unlock()

	e.record(ctx, ev)
	return out, nil
}

// ----- command transitions (caller holds e.mu) -----

// authorize moves WAITING/BLOCKED to READY and schedules the promotion to
// AUTHORIZED. Any other status is left untouched.
func (e *EngineService) authorize(n *nozzle) *models.DispenserEvent {
	if n.status != models.StatusWaiting && n.status != models.StatusBlocked {
		return nil
	}
	from := n.status
	e.invalidate(n)
	n.status = models.StatusReady
	e.schedule(n, e.cfg.AuthorizeDelay, models.StatusReady, e.beginFueling)
	return &models.DispenserEvent{
		NozzleID:    n.id,
		Type:        EventCommand,
		Description: "Nozzle authorized",
		Metadata:    map[string]any{"command": models.CommandAuthorize, "from": from, "to": n.status},
	}
}

func (e *EngineService) block(n *nozzle) *models.DispenserEvent {
	from := n.status
	e.invalidate(n)
	n.status = models.StatusBlocked
	n.fueling = nil
	return &models.DispenserEvent{
		NozzleID:    n.id,
		Type:        EventCommand,
		Description: "Nozzle blocked",
		Metadata:    map[string]any{"command": models.CommandBlock, "from": from},
	}
}

func (e *EngineService) freeNozzle(n *nozzle) *models.DispenserEvent {
	from := n.status
	e.invalidate(n)
	n.status = models.StatusFree
	n.fueling = nil
	return &models.DispenserEvent{
		NozzleID:    n.id,
		Type:        EventCommand,
		Description: "Nozzle freed",
		Metadata:    map[string]any{"command": models.CommandFree, "from": from},
	}
}

// ----- scheduled transitions (run with e.mu held by the timer guard) -----

// beginFueling promotes READY to AUTHORIZED and starts the tick loop.
func (e *EngineService) beginFueling(n *nozzle) *models.DispenserEvent {
	n.status = models.StatusAuthorized
	n.fueling = &models.Fueling{Volume: 0, Price: e.cfg.UnitPrice, Total: 0}
	e.schedule(n, e.cfg.TickPeriod, models.StatusAuthorized, e.advanceFueling)
	return &models.DispenserEvent{
		NozzleID:    n.id,
		Type:        EventFuelingStarted,
		Description: "Fueling started",
		Metadata:    map[string]any{"price": e.cfg.UnitPrice},
	}
}

// advanceFueling adds one volume quantum, recomputes the total and either
// reschedules itself or completes the episode at the target volume.
func (e *EngineService) advanceFueling(n *nozzle) *models.DispenserEvent {
	f := n.fueling
	f.Volume = round2(f.Volume + e.cfg.VolumeQuantum)
	f.Total = round2(f.Volume * f.Price)

	if f.Volume >= e.cfg.TargetVolume {
		n.status = models.StatusCompleted
		e.schedule(n, e.cfg.CompletionDelay, models.StatusCompleted, e.resetNozzle)
		return &models.DispenserEvent{
			NozzleID:    n.id,
			Type:        EventFuelingCompleted,
			Description: "Fueling completed",
			Metadata:    map[string]any{"volume": f.Volume, "total": f.Total},
		}
	}
	e.schedule(n, e.cfg.TickPeriod, models.StatusAuthorized, e.advanceFueling)
	return nil
}

// resetNozzle returns a COMPLETED nozzle to FREE and clears its episode data.
func (e *EngineService) resetNozzle(n *nozzle) *models.DispenserEvent {
	n.status = models.StatusFree
	n.fueling = nil
	n.timer = nil
	return &models.DispenserEvent{
		NozzleID:    n.id,
		Type:        EventNozzleReset,
		Description: "Nozzle reset to free",
	}
}

// ----- scheduling plumbing -----

// invalidate cancels the pending transition, if any, and bumps the episode
// counter so an already-fired callback becomes a no-op. Caller holds e.mu.
func (e *EngineService) invalidate(n *nozzle) {
	n.episode++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// schedule arms the nozzle's single pending transition: after d, fn runs
// under the engine mutex only if the nozzle is still in status `from` and
// still in the same episode. Caller holds e.mu.
func (e *EngineService) schedule(n *nozzle, d time.Duration, from string, fn func(*nozzle) *models.DispenserEvent) {
	epoch := n.episode
	n.timer = time.AfterFunc(d, func() {
		e.mu.Lock()
		if e.stopped || n.episode != epoch || n.status != from {
			e.mu.Unlock()
			return
		}
		ev := fn(n)
		e.mu.Unlock()
		e.record(context.Background(), ev)
	})
}

// record appends an audit event best-effort. A sink failure never fails or
// corrupts the mutation that produced the event.
func (e *EngineService) record(ctx context.Context, ev *models.DispenserEvent) {
	if ev == nil || e.events == nil {
		return
	}
	if err := e.events.Append(ctx, *ev); err != nil && e.log != nil {
		e.log.Warnw("event_append_failed", "err", err, "nozzle", ev.NozzleID, "type", ev.Type)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
