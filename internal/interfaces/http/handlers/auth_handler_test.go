package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kam/internal/application/dto"
	appmocks "github.com/turtacn/kam/internal/application/service/mocks"
	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
)

func newAuthTestRouter(svc *appmocks.MockDeviceAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/auth/start", h.Start)
	r.POST("/auth/cancel", h.Cancel)
	r.GET("/auth/status", h.Status)
	r.GET("/auth/url", h.URL)
	return r
}

func TestAuthStartReturnsVerification(t *testing.T) {
	svc := new(appmocks.MockDeviceAuthService)
	svc.On("Begin", mock.Anything, mock.Anything).Return(&dto.DeviceAuthResponse{
		VerificationURI:         "https://device.sso/",
		VerificationURIComplete: "https://device.sso/?user_code=ABCD-EFGH",
		UserCode:                "ABCD-EFGH",
		Interval:                5,
	}, nil).Once()
	router := newAuthTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/start", strings.NewReader(`{"region":"eu-west-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	require.Equal(t, "ABCD-EFGH", data["user_code"])

	// the region override reached the service
	calledReq := svc.Calls[0].Arguments.Get(1).(*dto.BeginAuthRequest)
	require.Equal(t, "eu-west-1", calledReq.Region)
}

func TestAuthStartUpstreamFailure(t *testing.T) {
	svc := new(appmocks.MockDeviceAuthService)
	svc.On("Begin", mock.Anything, mock.Anything).
		Return(nil, errors.ErrAuthRequest("client registration rejected")).Once()
	router := newAuthTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/start", nil))

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, string(errors.ErrCodeAuthRequest), resp.Error.Code)
}

func TestAuthCancel(t *testing.T) {
	svc := new(appmocks.MockDeviceAuthService)
	svc.On("Cancel", mock.Anything).Once()
	router := newAuthTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/cancel", nil))

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAuthStatus(t *testing.T) {
	svc := new(appmocks.MockDeviceAuthService)
	svc.On("Status", mock.Anything).Return(models.SessionSnapshot{
		State:    constants.SessionStatePolling,
		UserCode: "ABCD-EFGH",
	}).Once()
	router := newAuthTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	require.Equal(t, string(constants.SessionStatePolling), data["state"])
}

func TestAuthURL(t *testing.T) {
	svc := new(appmocks.MockDeviceAuthService)
	svc.On("CurrentURL", mock.Anything).Return("https://device.sso/?user_code=X", nil).Once()
	router := newAuthTestRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/url", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	require.Equal(t, "https://device.sso/?user_code=X", data["url"])
}
