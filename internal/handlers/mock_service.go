package handlers

import (
	"context"

	"dispenser_control/internal/models"
	"dispenser_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDispenser struct {
	resp models.Nozzle
	err  error

	applyCalls  int
	lastNozzle  string
	lastCommand string
}

func (m *mockDispenser) Apply(ctx context.Context, nozzleID, command string) (models.Nozzle, error) {
	m.applyCalls++
	m.lastNozzle = nozzleID
	m.lastCommand = command
	return m.resp, m.err
}

type mockMonitoring struct {
	snapshot []models.Nozzle
	err      error
}

func (m *mockMonitoring) Snapshot(ctx context.Context) ([]models.Nozzle, error) {
	return m.snapshot, m.err
}

type mockEventLog struct {
	resp []models.DispenserEvent
	err  error

	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DispenserEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
