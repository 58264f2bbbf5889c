package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/application/service"
	"github.com/turtacn/kam/internal/infrastructure/bus"
	"github.com/turtacn/kam/pkg/errors"
)

// RegistrationHandler handles HTTP requests for batch registration runs.
type RegistrationHandler struct {
	registration service.RegistrationService
	progress     *bus.ProgressBus
	events       *bus.Emitter
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registration service.RegistrationService, progress *bus.ProgressBus, events *bus.Emitter) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		progress:     progress,
		events:       events,
	}
}

// Start launches a batch run.
func (h *RegistrationHandler) Start(c *gin.Context) {
	var req dto.StartBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrValidation("invalid request body").WithCause(err))
		return
	}

	if err := h.registration.Start(c.Request.Context(), req.ToParams()); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusAccepted, gin.H{"started": true})
}

// Stop requests a cooperative stop of the active run.
func (h *RegistrationHandler) Stop(c *gin.Context) {
	if err := h.registration.Stop(c.Request.Context()); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"stopping": true})
}

// Reset returns a finished run to the idle state.
func (h *RegistrationHandler) Reset(c *gin.Context) {
	if err := h.registration.Reset(c.Request.Context()); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"reset": true})
}

// Progress reports the current job snapshot.
func (h *RegistrationHandler) Progress(c *gin.Context) {
	dto.SendSuccess(c, http.StatusOK, h.registration.Progress(c.Request.Context()))
}

// StreamEvents streams progress snapshots and notification events over SSE.
// A new subscriber immediately receives the latest snapshot, then only the
// freshest one when it falls behind.
func (h *RegistrationHandler) StreamEvents(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	snapshots, cancelSnapshots := h.progress.Subscribe()
	defer cancelSnapshots()
	events, cancelEvents := h.events.Listen()
	defer cancelEvents()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			c.SSEvent("progress", snapshot)
			c.Writer.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(event.Name, event.Payload)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
