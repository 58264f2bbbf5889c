package dto

import "github.com/turtacn/kam/internal/domain/models"

// HistoryRecordDTO is a single registration outcome in the history ledger.
type HistoryRecordDTO struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// NewHistoryRecordDTOs maps domain records preserving their order.
func NewHistoryRecordDTOs(records []models.RegistrationRecord) []*HistoryRecordDTO {
	out := make([]*HistoryRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, &HistoryRecordDTO{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Email:     r.Email,
			Password:  r.Password,
			Status:    string(r.Status),
			Error:     r.Error,
			AccountID: r.AccountID,
		})
	}
	return out
}

// ExportRequest names the destination file for a history export.
type ExportRequest struct {
	Path string `json:"path" binding:"required"`
}
