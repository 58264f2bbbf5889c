package handlers

import (
	"bufio"
	"context"
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
	"github.com/turtacn/kam/internal/infrastructure/bus"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
)

type registrationTestEnv struct {
	svc      *appmocks.MockRegistrationService
	progress *bus.ProgressBus
	events   *bus.Emitter
	router   *gin.Engine
}

func newRegistrationTestEnv() *registrationTestEnv {
	gin.SetMode(gin.TestMode)
	env := &registrationTestEnv{
		svc:      new(appmocks.MockRegistrationService),
		progress: bus.NewProgressBus(),
		events:   bus.NewEmitter(logger.NewNoopLogger()),
	}
	h := NewRegistrationHandler(env.svc, env.progress, env.events)
	r := gin.New()
	r.POST("/register/start", h.Start)
	r.POST("/register/stop", h.Stop)
	r.POST("/register/reset", h.Reset)
	r.GET("/register/progress", h.Progress)
	r.GET("/register/events", h.StreamEvents)
	env.router = r
	return env
}

func TestRegistrationStart(t *testing.T) {
	env := newRegistrationTestEnv()
	env.svc.On("Start", mock.Anything, models.BatchParams{Count: 3, IntervalSeconds: 10}).
		Return(nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register/start",
		strings.NewReader(`{"count":3,"interval_seconds":10}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	env.svc.AssertExpectations(t)
}

func TestRegistrationStartConflict(t *testing.T) {
	env := newRegistrationTestEnv()
	env.svc.On("Start", mock.Anything, mock.Anything).
		Return(errors.ErrAlreadyRunning()).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register/start",
		strings.NewReader(`{"count":1,"interval_seconds":5}`))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, string(errors.ErrCodeAlreadyRunning), resp.Error.Code)
}

func TestRegistrationStopWithoutRun(t *testing.T) {
	env := newRegistrationTestEnv()
	env.svc.On("Stop", mock.Anything).Return(errors.ErrNotRunning()).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register/stop", nil))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegistrationProgress(t *testing.T) {
	env := newRegistrationTestEnv()
	env.svc.On("Progress", mock.Anything).Return(models.ProgressSnapshot{
		Status:  constants.JobStatusRunning,
		Current: 2,
		Total:   5,
		Step:    constants.StepWaiting,
		Logs:    []string{"registered user1@example.com"},
	}).Once()

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/register/progress", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	require.Equal(t, string(constants.JobStatusRunning), data["status"])
	require.Equal(t, float64(2), data["current"])
}

func TestRegistrationEventStream(t *testing.T) {
	env := newRegistrationTestEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/register/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		env.router.ServeHTTP(w, req)
		close(done)
	}()

	// let the handler subscribe before publishing
	time.Sleep(50 * time.Millisecond)
	env.progress.Publish(models.ProgressSnapshot{Status: constants.JobStatusRunning, Current: 1, Total: 2})
	env.events.Emit(constants.EventRegistrationComplete, map[string]string{"status": "completed"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var sawProgress, sawComplete bool
	scanner := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") && strings.Contains(line, "progress") {
			sawProgress = true
		}
		if strings.HasPrefix(line, "event:") && strings.Contains(line, constants.EventRegistrationComplete) {
			sawComplete = true
		}
	}
	require.True(t, sawProgress)
	require.True(t, sawComplete)
}
