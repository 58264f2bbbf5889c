// Package dto provides data transfer objects used in the application layer.
package dto

import "github.com/turtacn/kam/internal/domain/models"

// BeginAuthRequest carries optional overrides for starting a device
// authorization session.
type BeginAuthRequest struct {
	StartURL string `json:"start_url,omitempty"`
	Region   string `json:"region,omitempty"`
}

// DeviceAuthResponse is returned when a device authorization session has been
// requested and the browser verification can begin.
type DeviceAuthResponse struct {
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	UserCode                string `json:"user_code"`
	ExpiresAt               int64  `json:"expires_at"`
	Interval                int    `json:"interval"`
}

// NewDeviceAuthResponse maps the domain authorization info to its transport shape.
func NewDeviceAuthResponse(info *models.DeviceAuthInfo) *DeviceAuthResponse {
	return &DeviceAuthResponse{
		VerificationURI:         info.VerificationURI,
		VerificationURIComplete: info.VerificationURIComplete,
		UserCode:                info.UserCode,
		ExpiresAt:               info.ExpiresAt.Unix(),
		Interval:                info.Interval,
	}
}

// AuthURLResponse exposes the verification URL of the active session, if any.
type AuthURLResponse struct {
	URL string `json:"url"`
}
