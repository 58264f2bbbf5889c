package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kam/internal/application/dto"
	appmocks "github.com/turtacn/kam/internal/application/service/mocks"
	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/errors"
)

func newHistoryTestRouter(svc *appmocks.MockHistoryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHistoryHandler(svc)
	r := gin.New()
	r.GET("/history", h.List)
	r.DELETE("/history", h.Clear)
	r.POST("/history/export", h.Export)
	return r
}

func TestHistoryList(t *testing.T) {
	svc := new(appmocks.MockHistoryService)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []models.RegistrationRecord{
		models.NewFailureRecord(errors.ErrAuthTransport("connection reset"), now.Add(time.Minute)),
		models.NewSuccessRecord(models.RegisteredAccount{Email: "user@example.com", Password: "Secret12!"}, now),
	}
	svc.On("List", mock.Anything).Return(records, nil).Once()
	router := newHistoryTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp.Data.([]interface{})
	require.Len(t, rows, 2)

	newest := rows[0].(map[string]interface{})
	require.Equal(t, "failed", newest["status"])
	// failure records never expose an email
	_, hasEmail := newest["email"]
	require.Equal(t, "", newest["email"])
	require.True(t, hasEmail)
}

func TestHistoryClear(t *testing.T) {
	svc := new(appmocks.MockHistoryService)
	svc.On("Clear", mock.Anything).Return(nil).Once()
	router := newHistoryTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHistoryExport(t *testing.T) {
	svc := new(appmocks.MockHistoryService)
	svc.On("Export", mock.Anything, "/tmp/history.csv").Return(nil).Once()
	router := newHistoryTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/history/export",
		strings.NewReader(`{"path":"/tmp/history.csv"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHistoryExportMissingPath(t *testing.T) {
	svc := new(appmocks.MockHistoryService)
	router := newHistoryTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/history/export", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

func TestHistoryExportFailure(t *testing.T) {
	svc := new(appmocks.MockHistoryService)
	svc.On("Export", mock.Anything, "/tmp/out.json").
		Return(errors.ErrExport("/tmp/out.json", errors.ErrPersistence("read failed"))).Once()
	router := newHistoryTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/history/export",
		strings.NewReader(`{"path":"/tmp/out.json"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, string(errors.ErrCodeExport), resp.Error.Code)
}
