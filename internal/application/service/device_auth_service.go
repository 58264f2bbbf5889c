// Package service provides application-level services and use cases.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/kam/internal/application/dto"
	"github.com/turtacn/kam/internal/config"
	"github.com/turtacn/kam/internal/domain/models"
	domainservice "github.com/turtacn/kam/internal/domain/service"
	"github.com/turtacn/kam/pkg/constants"
	"github.com/turtacn/kam/pkg/logger"
)

//go:generate mockery --name DeviceAuthService --output ./mocks --filename mock_device_auth_service.go --structname MockDeviceAuthService
// DeviceAuthService drives the OAuth 2.0 Device Authorization Grant flow
// against the upstream identity provider: it starts a session, polls for the
// token in the background and exposes the session state.
// DeviceAuthService 驱动针对上游身份提供方的 OAuth 2.0 设备授权授予流程：
// 它启动会话、在后台轮询令牌并暴露会话状态。
type DeviceAuthService interface {
	// Begin starts a new device authorization session. Any previous session
	// is cancelled first; at most one session is active at a time.
	// Begin 启动一个新的设备授权会话。任何之前的会话会先被取消；
	// 同一时间最多只有一个活动会话。
	Begin(ctx context.Context, req *dto.BeginAuthRequest) (*dto.DeviceAuthResponse, error)

	// Cancel ends the active session, if any. Cancelling an idle or already
	// finished session is a no-op.
	// Cancel 结束当前活动会话（如果有）。取消空闲或已结束的会话是无操作。
	Cancel(ctx context.Context)

	// Status reports the current session snapshot.
	// Status 报告当前会话快照。
	Status(ctx context.Context) models.SessionSnapshot

	// CurrentURL returns the verification URL of the active session, or an
	// empty string when none is active.
	// CurrentURL 返回当前活动会话的验证 URL，无活动会话时返回空字符串。
	CurrentURL(ctx context.Context) (string, error)
}

// authSession tracks one device authorization attempt. The finished flag is
// flipped with a CAS so that exactly one terminal transition wins the race
// between the poll loop and a concurrent Cancel.
type authSession struct {
	info     *models.DeviceAuthInfo
	cancel   context.CancelFunc
	finished int32

	mu       sync.RWMutex
	snapshot models.SessionSnapshot
}

func (s *authSession) update(fn func(*models.SessionSnapshot)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.mu.Unlock()
}

func (s *authSession) view() models.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// claimTerminal marks the session finished. It returns true for exactly one
// caller per session.
func (s *authSession) claimTerminal() bool {
	return atomic.CompareAndSwapInt32(&s.finished, 0, 1)
}

// deviceAuthServiceImpl is the concrete implementation of DeviceAuthService.
// deviceAuthServiceImpl 是 DeviceAuthService 接口的具体实现。
type deviceAuthServiceImpl struct {
	provider domainservice.IdentityProvider
	urlStore domainservice.AuthURLStore
	events   domainservice.EventSink
	audit    domainservice.AuditService
	metrics  domainservice.MetricsRecorder
	clock    domainservice.Clock
	log      logger.Logger
	cfg      *config.AuthConfig

	// beginMu serializes Begin end to end, covering the provider call, so
	// two concurrent calls can never both install a session.
	beginMu sync.Mutex

	mu      sync.Mutex
	current *authSession
}

// NewDeviceAuthService creates a new instance of DeviceAuthService.
// NewDeviceAuthService 创建一个新的 DeviceAuthService 实例。
func NewDeviceAuthService(
	provider domainservice.IdentityProvider,
	urlStore domainservice.AuthURLStore,
	events domainservice.EventSink,
	audit domainservice.AuditService,
	metrics domainservice.MetricsRecorder,
	clock domainservice.Clock,
	log logger.Logger,
	cfg *config.AuthConfig,
) DeviceAuthService {
	return &deviceAuthServiceImpl{
		provider: provider,
		urlStore: urlStore,
		events:   events,
		audit:    audit,
		metrics:  metrics,
		clock:    clock,
		log:      log,
		cfg:      cfg,
	}
}

// Begin cancels any previous session, requests a fresh device authorization
// and starts the background token poller.
// Begin 取消任何之前的会话，请求一次新的设备授权并启动后台令牌轮询。
func (s *deviceAuthServiceImpl) Begin(ctx context.Context, req *dto.BeginAuthRequest) (*dto.DeviceAuthResponse, error) {
	s.beginMu.Lock()
	defer s.beginMu.Unlock()

	startURL := s.cfg.StartURL
	region := s.cfg.Region
	if req != nil && req.StartURL != "" {
		startURL = req.StartURL
	}
	if req != nil && req.Region != "" {
		region = req.Region
	}
	if startURL == "" {
		startURL = constants.DefaultStartURL
	}
	if region == "" {
		region = constants.DefaultRegion
	}

	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()

	info, err := s.provider.RequestDeviceAuthorization(ctx, startURL, region)
	if err != nil {
		s.log.Error(ctx, "device authorization request failed", err, logger.Fields{
			"start_url": startURL,
			"region":    region,
		})
		_ = s.audit.Record(ctx, models.NewAuditEvent(
			constants.EventTypeDeviceAuthStart, constants.AuditResultFailure, err.Error()))
		return nil, err
	}

	verificationURL := info.VerificationURIComplete
	if verificationURL == "" {
		verificationURL = info.VerificationURI
	}

	sess := &authSession{
		info: info,
		snapshot: models.SessionSnapshot{
			State:           constants.SessionStateRequested,
			VerificationURI: verificationURL,
			UserCode:        info.UserCode,
			StartedAt:       s.clock.Now(),
		},
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if err := s.urlStore.SetCurrent(ctx, verificationURL); err != nil {
		s.log.Warn(ctx, "failed to publish verification url", logger.Fields{"error": err.Error()})
	}
	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeDeviceAuthStart, constants.AuditResultSuccess, "device authorization started").
		WithMetadata(map[string]string{"user_code": info.UserCode, "region": region}))

	s.log.Info(ctx, "device authorization started", logger.Fields{
		"user_code":  info.UserCode,
		"interval":   info.Interval,
		"expires_at": info.ExpiresAt,
	})

	go s.poll(pollCtx, sess)

	return dto.NewDeviceAuthResponse(info), nil
}

// poll runs until the session reaches a terminal state. The interval grows on
// slow_down verdicts and never shrinks back.
func (s *deviceAuthServiceImpl) poll(ctx context.Context, sess *authSession) {
	sess.update(func(v *models.SessionSnapshot) { v.State = constants.SessionStatePolling })
	interval := sess.info.PollInterval()

	for {
		if !sess.info.ExpiresAt.IsZero() && !s.clock.Now().Before(sess.info.ExpiresAt) {
			s.finishSession(sess, constants.SessionStateExpired, "", "device code expired before approval")
			return
		}
		if err := s.clock.Sleep(ctx, interval); err != nil {
			s.finishSession(sess, constants.SessionStateCancelled, "", "")
			return
		}

		result, err := s.provider.PollToken(ctx, sess.info)
		if err != nil {
			if ctx.Err() != nil {
				s.finishSession(sess, constants.SessionStateCancelled, "", "")
				return
			}
			s.log.Error(ctx, "token poll failed", err, logger.Fields{"user_code": sess.info.UserCode})
			s.finishSession(sess, constants.SessionStateFailed, "", err.Error())
			return
		}
		s.metrics.RecordPoll(result.Status)

		switch result.Status {
		case models.PollStatusPending:
			// keep polling at the current interval
		case models.PollStatusSlowDown:
			interval += constants.SlowDownIncrementSeconds * time.Second
		case models.PollStatusSuccess:
			email := result.Credentials.Email
			if email == "" {
				email = emailFromIDToken(result.Credentials.IDToken)
			}
			s.finishSession(sess, constants.SessionStateSucceeded, email, "")
			return
		case models.PollStatusExpired:
			s.finishSession(sess, constants.SessionStateExpired, "", "device code expired before approval")
			return
		case models.PollStatusDenied:
			s.finishSession(sess, constants.SessionStateDenied, "", "authorization denied by the user")
			return
		}
	}
}

// finishSession applies the terminal transition exactly once and fans out the
// side effects: metrics, audit, the login-success event and the url store.
func (s *deviceAuthServiceImpl) finishSession(sess *authSession, state constants.SessionState, email, errMsg string) {
	if !sess.claimTerminal() {
		return
	}
	sess.cancel()
	sess.update(func(v *models.SessionSnapshot) {
		v.State = state
		v.Email = email
		v.Error = errMsg
	})

	ctx := context.Background()
	s.metrics.RecordAuthOutcome(string(state))
	if err := s.urlStore.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear verification url", logger.Fields{"error": err.Error()})
	}

	result := constants.AuditResultFailure
	if state == constants.SessionStateSucceeded {
		result = constants.AuditResultSuccess
	}
	_ = s.audit.Record(ctx, models.NewAuditEvent(
		constants.EventTypeDeviceAuthResult, result, string(state)).
		WithMetadata(map[string]string{"user_code": sess.info.UserCode, "email": email}))

	if state == constants.SessionStateSucceeded {
		s.events.Emit(constants.EventLoginSuccess, map[string]string{"email": email})
		s.log.Info(ctx, "device authorization succeeded", logger.Fields{"email": email})
		return
	}
	s.log.Info(ctx, "device authorization ended", logger.Fields{
		"state": string(state),
		"error": errMsg,
	})
}

// Cancel ends the active session. Safe to call at any time.
// Cancel 结束当前活动会话，可随时安全调用。
func (s *deviceAuthServiceImpl) Cancel(ctx context.Context) {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// cancelLocked must be called with s.mu held.
func (s *deviceAuthServiceImpl) cancelLocked() {
	sess := s.current
	if sess == nil {
		return
	}
	sess.cancel()
	s.finishSession(sess, constants.SessionStateCancelled, "", "")
}

// Status reports the snapshot of the current session, or the idle state when
// no session was ever started.
// Status 报告当前会话的快照，若从未启动过会话则返回空闲状态。
func (s *deviceAuthServiceImpl) Status(ctx context.Context) models.SessionSnapshot {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()
	if sess == nil {
		return models.SessionSnapshot{State: constants.SessionStateIdle}
	}
	return sess.view()
}

// CurrentURL returns the verification URL stored for the active session.
// CurrentURL 返回为当前活动会话保存的验证 URL。
func (s *deviceAuthServiceImpl) CurrentURL(ctx context.Context) (string, error) {
	return s.urlStore.Current(ctx)
}

// emailFromIDToken extracts the email claim without verifying the signature.
// The token was just issued to us over TLS, so the claims are trusted here.
func emailFromIDToken(idToken string) string {
	if idToken == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok {
		return email
	}
	return ""
}
