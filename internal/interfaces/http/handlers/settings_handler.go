package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/application/service"
	"github.com/turtacn/kam/pkg/errors"
)

// SettingsHandler handles HTTP requests for the registration settings.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// Get returns the stored settings with the password masked.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, settings)
}

// Update validates and persists new settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.SettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrValidation("invalid request body").WithCause(err))
		return
	}

	if err := h.settingsService.Update(c.Request.Context(), &req); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, gin.H{"updated": true})
}
