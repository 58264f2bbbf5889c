package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/application/service"
	"github.com/turtacn/kam/pkg/errors"
)

// AuthHandler handles HTTP requests for the device authorization flow.
type AuthHandler struct {
	authService service.DeviceAuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.DeviceAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Start begins a new device authorization session.
func (h *AuthHandler) Start(c *gin.Context) {
	var req dto.BeginAuthRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.SendError(c, errors.ErrValidation("invalid request body").WithCause(err))
			return
		}
	}

	resp, err := h.authService.Begin(c.Request.Context(), &req)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, resp)
}

// Cancel ends the active session, if any.
func (h *AuthHandler) Cancel(c *gin.Context) {
	h.authService.Cancel(c.Request.Context())
	dto.SendSuccess(c, http.StatusOK, gin.H{"cancelled": true})
}

// Status reports the current session snapshot.
func (h *AuthHandler) Status(c *gin.Context) {
	dto.SendSuccess(c, http.StatusOK, h.authService.Status(c.Request.Context()))
}

// URL returns the verification URL of the active session.
func (h *AuthHandler) URL(c *gin.Context) {
	url, err := h.authService.CurrentURL(c.Request.Context())
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, http.StatusOK, dto.AuthURLResponse{URL: url})
}
