package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kam/internal/domain/models"
	repomocks "github.com/turtacn/kam/internal/domain/repository/mocks"
	servicemocks "github.com/turtacn/kam/internal/domain/service/mocks"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
)

type batchFixture struct {
	registrar *servicemocks.MockAccountRegistrar
	history   *repomocks.MockHistoryRepository
	accounts  *repomocks.MockAccountRepository
	settings  *repomocks.MockSettingsRepository
	progress  *servicemocks.RecordingProgressSink
	events    *servicemocks.RecordingEventSink
	audit     *servicemocks.MockAuditService
	metrics   *recordingMetrics
	clock     *servicemocks.FakeClock
	svc       RegistrationService
}

func validSettings() models.RegistrationSettings {
	return models.RegistrationSettings{
		ImapServer:    "imap.example.com",
		EmailDomain:   "@example.com",
		EmailPassword: "imap-password",
	}
}

func newBatchFixture(t *testing.T) *batchFixture {
	t.Helper()
	f := &batchFixture{
		registrar: new(servicemocks.MockAccountRegistrar),
		history:   new(repomocks.MockHistoryRepository),
		accounts:  new(repomocks.MockAccountRepository),
		settings:  new(repomocks.MockSettingsRepository),
		progress:  new(servicemocks.RecordingProgressSink),
		events:    new(servicemocks.RecordingEventSink),
		audit:     new(servicemocks.MockAuditService),
		metrics:   new(recordingMetrics),
		clock:     servicemocks.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	f.settings.On("Load", mock.Anything).Return(validSettings(), nil)
	f.audit.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.svc = NewRegistrationService(
		f.registrar, f.history, f.accounts, f.settings, f.progress,
		f.events, f.audit, f.metrics, f.clock, logger.NewNoopLogger(),
	)
	return f
}

func (f *batchFixture) waitForStatus(t *testing.T, want constants.JobStatus) models.ProgressSnapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.svc.Progress(context.Background()).Status == want
	}, 2*time.Second, 2*time.Millisecond)
	return f.svc.Progress(context.Background())
}

func account(i int) *models.RegisteredAccount {
	return &models.RegisteredAccount{
		Email:     fmt.Sprintf("user%d@example.com", i),
		Password:  fmt.Sprintf("Pass%dword!", i),
		AccountID: fmt.Sprintf("acct-%d", i),
	}
}

func TestBatchRunCompletesEveryItem(t *testing.T) {
	f := newBatchFixture(t)
	for i := 1; i <= 3; i++ {
		f.registrar.On("Register", mock.Anything, validSettings()).Return(account(i), nil).Once()
	}
	f.history.On("Append", mock.Anything, mock.MatchedBy(func(r models.RegistrationRecord) bool {
		return r.Status == constants.RecordStatusSuccess && r.Email != ""
	})).Return(nil).Times(3)
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil).Times(3)

	err := f.svc.Start(context.Background(), models.BatchParams{Count: 3, IntervalSeconds: 5})
	require.NoError(t, err)

	snapshot := f.waitForStatus(t, constants.JobStatusCompleted)
	require.Equal(t, 2, snapshot.Current)
	require.Equal(t, 3, snapshot.Total)
	require.Equal(t, constants.StepIdle, snapshot.Step)
	require.Empty(t, snapshot.Error)
	require.Contains(t, snapshot.Logs, "registered user2@example.com")

	// two inter-item waits for three items
	require.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, f.clock.Sleeps())

	// published item indices are 0-based and strictly in order
	var indices []int
	for _, s := range f.progress.Snapshots() {
		if s.Step != constants.StepRegistering {
			continue
		}
		if len(indices) == 0 || indices[len(indices)-1] != s.Current {
			indices = append(indices, s.Current)
		}
	}
	require.Equal(t, []int{0, 1, 2}, indices)

	events := f.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, constants.EventRegistrationComplete, events[0].Name)
	require.Equal(t, map[string]interface{}{
		"status":  string(constants.JobStatusCompleted),
		"success": true,
	}, events[0].Payload)
	require.Equal(t, []bool{true, false}, f.metrics.ActiveFlags())

	f.registrar.AssertExpectations(t)
	f.history.AssertExpectations(t)
	f.accounts.AssertExpectations(t)
}

func TestBatchRunFailsFast(t *testing.T) {
	f := newBatchFixture(t)
	f.registrar.On("Register", mock.Anything, mock.Anything).Return(account(1), nil).Once()
	f.registrar.On("Register", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("imap timeout")).Once()
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.Start(context.Background(), models.BatchParams{Count: 4, IntervalSeconds: 5})
	require.NoError(t, err)

	snapshot := f.waitForStatus(t, constants.JobStatusError)
	require.Equal(t, 1, snapshot.Current)
	// the registrar's message surfaces verbatim, without wrapping
	require.Equal(t, "imap timeout", snapshot.Error)

	// the third and fourth items are never attempted
	f.registrar.AssertNumberOfCalls(t, "Register", 2)

	// one success and one failure record, the failure with no email
	var failure models.RegistrationRecord
	for _, call := range f.history.Calls {
		record := call.Arguments.Get(1).(models.RegistrationRecord)
		if record.Status == constants.RecordStatusFailed {
			failure = record
		}
	}
	require.Equal(t, constants.RecordStatusFailed, failure.Status)
	require.Empty(t, failure.Email)
	require.Equal(t, "imap timeout", failure.Error)
}

func TestBatchStopFinishesInFlightItem(t *testing.T) {
	f := newBatchFixture(t)
	f.registrar.On("Register", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// stop arrives while the first item is still registering
			require.NoError(t, f.svc.Stop(context.Background()))
		}).
		Return(account(1), nil).Once()
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.Start(context.Background(), models.BatchParams{Count: 3, IntervalSeconds: 5})
	require.NoError(t, err)

	// a stopped run returns to idle rather than a terminal status of its own
	snapshot := f.waitForStatus(t, constants.JobStatusIdle)
	require.Equal(t, 0, snapshot.Current)
	require.Empty(t, snapshot.Error)

	// the in-flight item completed and was recorded
	f.registrar.AssertNumberOfCalls(t, "Register", 1)
	f.history.AssertNumberOfCalls(t, "Append", 1)

	var sawStopLog bool
	for _, s := range f.progress.Snapshots() {
		for _, line := range s.Logs {
			if strings.Contains(line, "stop requested") {
				sawStopLog = true
			}
		}
	}
	require.True(t, sawStopLog)

	events := f.events.Events()
	require.Len(t, events, 1)
	require.Equal(t, map[string]interface{}{
		"status":  string(constants.JobStatusIdle),
		"success": false,
	}, events[0].Payload)
}

func TestStartRejectsConcurrentRun(t *testing.T) {
	f := newBatchFixture(t)
	release := make(chan struct{})
	f.registrar.On("Register", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(account(1), nil).Once()
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.Start(context.Background(), models.BatchParams{Count: 1, IntervalSeconds: 5}))

	err := f.svc.Start(context.Background(), models.BatchParams{Count: 1, IntervalSeconds: 5})
	require.True(t, errors.HasCode(err, errors.ErrCodeAlreadyRunning))

	close(release)
	f.waitForStatus(t, constants.JobStatusCompleted)
}

func TestStartValidatesParams(t *testing.T) {
	f := newBatchFixture(t)
	cases := []models.BatchParams{
		{Count: 0, IntervalSeconds: 5},
		{Count: 101, IntervalSeconds: 5},
		{Count: 1, IntervalSeconds: 4},
	}
	for _, params := range cases {
		err := f.svc.Start(context.Background(), params)
		require.True(t, errors.HasCode(err, errors.ErrCodeValidation), "params %+v", params)
	}
	f.registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestStartRejectsIncompleteSettings(t *testing.T) {
	f := &batchFixture{
		registrar: new(servicemocks.MockAccountRegistrar),
		history:   new(repomocks.MockHistoryRepository),
		accounts:  new(repomocks.MockAccountRepository),
		settings:  new(repomocks.MockSettingsRepository),
		progress:  new(servicemocks.RecordingProgressSink),
		events:    new(servicemocks.RecordingEventSink),
		audit:     new(servicemocks.MockAuditService),
		metrics:   new(recordingMetrics),
		clock:     servicemocks.NewFakeClock(time.Now()),
	}
	f.settings.On("Load", mock.Anything).Return(models.RegistrationSettings{}, nil)
	f.svc = NewRegistrationService(
		f.registrar, f.history, f.accounts, f.settings, f.progress,
		f.events, f.audit, f.metrics, f.clock, logger.NewNoopLogger(),
	)

	err := f.svc.Start(context.Background(), models.BatchParams{Count: 1, IntervalSeconds: 5})
	require.Error(t, err)
	require.Equal(t, constants.JobStatusIdle, f.svc.Progress(context.Background()).Status)
	f.registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestStopWithoutActiveRun(t *testing.T) {
	f := newBatchFixture(t)
	err := f.svc.Stop(context.Background())
	require.True(t, errors.HasCode(err, errors.ErrCodeNotRunning))
}

func TestResetClearsFinishedRun(t *testing.T) {
	f := newBatchFixture(t)
	f.registrar.On("Register", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("imap timeout")).Once()
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.Start(context.Background(), models.BatchParams{Count: 1, IntervalSeconds: 5}))
	f.waitForStatus(t, constants.JobStatusError)

	require.NoError(t, f.svc.Reset(context.Background()))
	snapshot := f.svc.Progress(context.Background())
	require.Equal(t, constants.JobStatusIdle, snapshot.Status)
	require.Empty(t, snapshot.Error)
	require.Empty(t, snapshot.Logs)

	// reset is idempotent
	require.NoError(t, f.svc.Reset(context.Background()))
}

func TestResetRejectedWhileRunning(t *testing.T) {
	f := newBatchFixture(t)
	release := make(chan struct{})
	f.registrar.On("Register", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(account(1), nil).Once()
	f.history.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.Start(context.Background(), models.BatchParams{Count: 1, IntervalSeconds: 5}))

	err := f.svc.Reset(context.Background())
	require.True(t, errors.HasCode(err, errors.ErrCodeAlreadyRunning))

	close(release)
	f.waitForStatus(t, constants.JobStatusCompleted)
}

func TestPersistenceFailureDoesNotAbortRun(t *testing.T) {
	f := newBatchFixture(t)
	f.registrar.On("Register", mock.Anything, mock.Anything).Return(account(1), nil).Twice()
	f.history.On("Append", mock.Anything, mock.Anything).
		Return(errors.ErrPersistence("disk full"))
	f.accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.Start(context.Background(), models.BatchParams{Count: 2, IntervalSeconds: 5}))

	snapshot := f.waitForStatus(t, constants.JobStatusCompleted)
	require.Equal(t, 1, snapshot.Current)
	f.registrar.AssertNumberOfCalls(t, "Register", 2)
}
