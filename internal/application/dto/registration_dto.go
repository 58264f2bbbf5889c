package dto

import "github.com/turtacn/kam/internal/domain/models"

// StartBatchRequest carries the parameters of a batch registration run.
type StartBatchRequest struct {
	Count           int `json:"count"`
	IntervalSeconds int `json:"interval_seconds"`
}

// ToParams converts the request into domain batch parameters.
func (r *StartBatchRequest) ToParams() models.BatchParams {
	return models.BatchParams{
		Count:           r.Count,
		IntervalSeconds: r.IntervalSeconds,
	}
}

// SettingsDTO mirrors the registration settings exposed over the API. The
// email password is write-only and is never echoed back in full.
type SettingsDTO struct {
	ImapServer    string `json:"imap_server"`
	EmailDomain   string `json:"email_domain"`
	EmailPassword string `json:"email_password,omitempty"`
	ProxyEnabled  bool   `json:"proxy_enabled"`
	ProxyHost     string `json:"proxy_host,omitempty"`
	ProxyPort     int    `json:"proxy_port,omitempty"`
}

// ToModel converts the DTO into domain settings.
func (d *SettingsDTO) ToModel() *models.RegistrationSettings {
	return &models.RegistrationSettings{
		ImapServer:    d.ImapServer,
		EmailDomain:   d.EmailDomain,
		EmailPassword: d.EmailPassword,
		Proxy: models.ProxySettings{
			Enabled: d.ProxyEnabled,
			Host:    d.ProxyHost,
			Port:    d.ProxyPort,
		},
	}
}

// NewSettingsDTO maps domain settings to their transport shape, masking the
// stored password.
func NewSettingsDTO(s *models.RegistrationSettings) *SettingsDTO {
	dto := &SettingsDTO{
		ImapServer:   s.ImapServer,
		EmailDomain:  s.EmailDomain,
		ProxyEnabled: s.Proxy.Enabled,
		ProxyHost:    s.Proxy.Host,
		ProxyPort:    s.Proxy.Port,
	}
	if s.EmailPassword != "" {
		dto.EmailPassword = "********"
	}
	return dto
}
