package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/application/service"
	"github.com/turtacn/kam/pkg/errors"
)

// HistoryHandler handles HTTP requests for the registration history ledger.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List returns every record, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.historyService.List(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.NewHistoryRecordDTOs(records))
}

// Clear removes every record.
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.historyService.Clear(c.Request.Context()); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"cleared": true})
}

// Export writes the ledger to a file on the server host.
func (h *HistoryHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrValidation("invalid request body").WithCause(err))
		return
	}

	if err := h.historyService.Export(c.Request.Context(), req.Path); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"path": req.Path})
}
