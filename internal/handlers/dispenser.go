package handlers

import (
	"errors"
	"net/http"

	"dispenser_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errGetSnapshot     = "failed to load nozzle snapshot"
	errApplyCommand    = "failed to apply command"
	errNozzleUnknown   = "unknown nozzle id"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for issuing a nozzle command.
type commandRequest struct {
	NozzleID string `json:"nozzleId" binding:"required"`
	Command  string `json:"command" binding:"required"` // AUTHORIZE | BLOCK | FREE
}

// CommandRequest is an exported model for Swagger docs of the command payload.
type CommandRequest struct {
	// Target nozzle id, zero-padded ("01".."48")
	NozzleID string `json:"nozzleId" example:"05"`
	// Command to apply. Allowed: AUTHORIZE, BLOCK, FREE
	Command string `json:"command" example:"AUTHORIZE"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Nozzle snapshot
// @Description  Ordered set of all nozzle records at the instant of the call.
// @Tags         dispenser
// @Produce      json
// @Success      200  {array}   models.Nozzle
// @Failure      500  {object}  map[string]string
// @Router       /api/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	ctx := c.Request.Context()
	nozzles, err := h.services.Monitoring.Snapshot(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSnapshot, "snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, nozzles)
}

// @Summary      Apply nozzle command
// @Description  AUTHORIZE is accepted from WAITING/BLOCKED; BLOCK and FREE from any state.
// @Tags         dispenser
// @Accept       json
// @Produce      json
// @Param        body  body   CommandRequest  true  "Command payload"
// @Success      200   {object}  map[string]interface{}  "success, nozzle"
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/command [post]
func (h *Handler) postCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	nz, err := h.services.Dispenser.Apply(ctx, req.NozzleID, req.Command)
	if err != nil {
		if errors.Is(err, service.ErrNozzleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errNozzleUnknown})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errApplyCommand, "command_failed", err,
			"nozzle", req.NozzleID, "command", req.Command)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"nozzle":  nz,
	})
}
