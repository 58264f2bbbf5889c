package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/turtacn/kam/internal/domain/models"
	"github.com/turtacn/kam/internal/domain/repository"
	domainservice "github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/errors"
	"github.com/turtacn/kam/pkg/logger"
)

//go:generate mockery --name RegistrationService --output ./mocks --filename mock_registration_service.go --structname MockRegistrationService
// RegistrationService orchestrates batch account registration runs. At most
// one run is active at a time; progress is fanned out through the progress
// sink and every outcome is appended to the history ledger.
// RegistrationService 编排批量账号注册运行。同一时间最多只有一个运行；
// 进度通过进度接收器扇出，每个结果都会追加到历史台账。
type RegistrationService interface {
	// Start begins a batch run with the given parameters. It fails when a
	// run is already active or when the stored settings are incomplete.
	// Start 以给定参数开始一次批量运行。若已有运行在进行或已存储的
	// 设置不完整则失败。
	Start(ctx context.Context, params models.BatchParams) error

	// Stop requests a cooperative stop. The in-flight item is never
	// aborted; the run ends after it finishes and the job returns to idle.
	// Stop 请求协作式停止。进行中的条目不会被中止；运行在其完成后结束，
	// 任务回到空闲状态。
	Stop(ctx context.Context) error

	// Reset returns a finished or idle job to the idle state. Resetting
	// while a run is active is an error.
	// Reset 将已结束或空闲的任务恢复为空闲状态。运行期间重置会报错。
	Reset(ctx context.Context) error

	// Progress reports the current job snapshot.
	// Progress 报告当前任务快照。
	Progress(ctx context.Context) models.ProgressSnapshot
}

// registrationServiceImpl is the concrete implementation of RegistrationService.
// registrationServiceImpl 是 RegistrationService 接口的具体实现。
type registrationServiceImpl struct {
	registrar domainservice.AccountRegistrar
	history   repository.HistoryRepository
	accounts  repository.AccountRepository
	settings  repository.SettingsRepository
	progress  domainservice.ProgressSink
	events    domainservice.EventSink
	audit     domainservice.AuditService
	metrics   domainservice.MetricsRecorder
	clock     domainservice.Clock
	log       logger.Logger

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopOnce *sync.Once
	snapshot models.ProgressSnapshot
}

// NewRegistrationService creates a new instance of RegistrationService.
// NewRegistrationService 创建一个新的 RegistrationService 实例。
func NewRegistrationService(
	registrar domainservice.AccountRegistrar,
	history repository.HistoryRepository,
	accounts repository.AccountRepository,
	settings repository.SettingsRepository,
	progress domainservice.ProgressSink,
	events domainservice.EventSink,
	audit domainservice.AuditService,
	metrics domainservice.MetricsRecorder,
	clock domainservice.Clock,
	log logger.Logger,
) RegistrationService {
	return &registrationServiceImpl{
		registrar: registrar,
		history:   history,
		accounts:  accounts,
		settings:  settings,
		progress:  progress,
		events:    events,
		audit:     audit,
		metrics:   metrics,
		clock:     clock,
		log:       log,
		snapshot: models.ProgressSnapshot{
			Status: constants.JobStatusIdle,
			Step:   constants.StepIdle,
			Logs:   []string{},
		},
	}
}

// Start validates the parameters and settings, claims the single run slot and
// launches the worker goroutine.
func (s *registrationServiceImpl) Start(ctx context.Context, params models.BatchParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.ErrAlreadyRunning()
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.stopOnce = &sync.Once{}
	s.snapshot = models.ProgressSnapshot{
		Status: constants.JobStatusRunning,
		Total:  params.Count,
		Step:   constants.StepIdle,
		Logs:   []string{},
	}
	stopCh := s.stopCh
	s.mu.Unlock()

	s.metrics.SetJobActive(true)
	s.publish()
	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeBatchStart, constants.AuditResultSuccess, "batch registration started").
		WithMetadata(map[string]int{"count": params.Count, "interval_seconds": params.IntervalSeconds}))
	s.log.Info(ctx, "batch registration started", logger.Fields{
		"count":    params.Count,
		"interval": params.IntervalSeconds,
	})

	go s.run(params, settings, stopCh)
	return nil
}

// run executes the batch loop. A stop request is honoured between items and
// during the inter-item wait, never in the middle of a registration.
func (s *registrationServiceImpl) run(params models.BatchParams, settings models.RegistrationSettings, stopCh chan struct{}) {
	// the run outlives the HTTP request that started it
	ctx := context.Background()
	final := constants.JobStatusCompleted
	finalErr := ""

	// item indices are 0-based; log lines show the 1-based position
	for i := 0; i < params.Count; i++ {
		if stopRequested(stopCh) {
			final = constants.JobStatusIdle
			break
		}

		s.update(func(v *models.ProgressSnapshot) {
			v.Current = i
			v.Step = constants.StepRegistering
			v.Logs = append(v.Logs, fmt.Sprintf("registering account %d/%d", i+1, params.Count))
		})
		s.publish()

		started := s.clock.Now()
		account, err := s.registrar.Register(ctx, settings)
		s.metrics.ObserveRegistrationDuration(s.clock.Now().Sub(started).Seconds())

		if err != nil {
			s.metrics.RecordRegistration(false)
			s.recordFailure(ctx, i+1, err)
			final = constants.JobStatusError
			// the registrar's message is surfaced verbatim
			finalErr = err.Error()
			break
		}

		s.metrics.RecordRegistration(true)
		s.recordSuccess(ctx, *account)
		s.update(func(v *models.ProgressSnapshot) {
			v.Logs = append(v.Logs, fmt.Sprintf("registered %s", account.Email))
		})
		s.publish()

		if i < params.Count-1 {
			s.update(func(v *models.ProgressSnapshot) { v.Step = constants.StepWaiting })
			s.publish()
			if !s.waitInterval(params, stopCh) {
				final = constants.JobStatusIdle
				break
			}
		}
	}

	s.finish(ctx, final, finalErr)
}

// waitInterval sleeps for the inter-item delay. It returns false when a stop
// request ended the wait early.
func (s *registrationServiceImpl) waitInterval(params models.BatchParams, stopCh chan struct{}) bool {
	waitCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-waitCtx.Done():
		}
	}()
	if err := s.clock.Sleep(waitCtx, params.Interval()); err != nil {
		return false
	}
	return !stopRequested(stopCh)
}

func stopRequested(stopCh chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

// recordSuccess appends the ledger entry and saves the account. Persistence
// failures are logged but never abort the run.
func (s *registrationServiceImpl) recordSuccess(ctx context.Context, account models.RegisteredAccount) {
	record := models.NewSuccessRecord(account, s.clock.Now())
	if err := s.history.Append(ctx, record); err != nil {
		s.log.Error(ctx, "failed to append history record", err, logger.Fields{"email": account.Email})
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		s.log.Error(ctx, "failed to save registered account", err, logger.Fields{"email": account.Email})
	}
}

// recordFailure appends a failure entry. Failure records never carry an email.
func (s *registrationServiceImpl) recordFailure(ctx context.Context, index int, cause error) {
	record := models.NewFailureRecord(cause, s.clock.Now())
	if err := s.history.Append(ctx, record); err != nil {
		s.log.Error(ctx, "failed to append history record", err, logger.Fields{"index": index})
	}
	s.update(func(v *models.ProgressSnapshot) {
		v.Logs = append(v.Logs, fmt.Sprintf("account %d failed: %v", index, cause))
	})
	s.log.Error(ctx, "registration attempt failed", errors.ErrRegistrationItem(index, cause), logger.Fields{"index": index})
}

// finish records the terminal snapshot, releases the run slot and notifies
// the frontend surfaces.
func (s *registrationServiceImpl) finish(ctx context.Context, status constants.JobStatus, errMsg string) {
	s.mu.Lock()
	s.running = false
	s.snapshot.Status = status
	s.snapshot.Step = constants.StepIdle
	s.snapshot.Error = errMsg
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.metrics.SetJobActive(false)
	s.progress.Publish(snapshot)
	s.events.Emit(constants.EventRegistrationComplete, map[string]interface{}{
		"status":  string(status),
		"success": status == constants.JobStatusCompleted,
	})

	result := constants.AuditResultSuccess
	if status == constants.JobStatusError {
		result = constants.AuditResultFailure
	}
	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeBatchFinish, result, string(status)))
	s.log.Info(ctx, "batch registration finished", logger.Fields{
		"status": string(status),
		"error":  errMsg,
	})
}

// Stop signals the worker to end the run after the in-flight item. The job
// returns to idle once the worker observes the request.
func (s *registrationServiceImpl) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errors.ErrNotRunning()
	}
	s.snapshot.Logs = append(s.snapshot.Logs, "stop requested, finishing the in-flight item")
	snapshot := s.snapshotLocked()
	stopOnce, stopCh := s.stopOnce, s.stopCh
	s.mu.Unlock()

	stopOnce.Do(func() { close(stopCh) })
	s.progress.Publish(snapshot)
	s.log.Info(ctx, "batch registration stop requested")
	return nil
}

// Reset clears a finished job back to idle. Calling Reset on an idle job is
// a no-op.
func (s *registrationServiceImpl) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.ErrAlreadyRunning().WithMetadata("operation", "reset")
	}
	s.snapshot = models.ProgressSnapshot{
		Status: constants.JobStatusIdle,
		Step:   constants.StepIdle,
		Logs:   []string{},
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.progress.Publish(snapshot)
	return nil
}

// Progress returns a copy of the current snapshot.
func (s *registrationServiceImpl) Progress(ctx context.Context) models.ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// update mutates the snapshot under the lock.
func (s *registrationServiceImpl) update(fn func(*models.ProgressSnapshot)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.mu.Unlock()
}

// publish sends a copy of the current snapshot to the sink.
func (s *registrationServiceImpl) publish() {
	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.progress.Publish(snapshot)
}

// snapshotLocked copies the snapshot, including the logs slice so later
// appends never alias published values. Callers must hold s.mu.
func (s *registrationServiceImpl) snapshotLocked() models.ProgressSnapshot {
	snapshot := s.snapshot
	snapshot.Logs = append([]string(nil), s.snapshot.Logs...)
	return snapshot
}
