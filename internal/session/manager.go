package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/connectedautocare/console-gateway/pkg/errors"
	"github.com/connectedautocare/console-gateway/pkg/logger"
	"github.com/connectedautocare/console-gateway/pkg/platform"
)

const networkFailureMessage = "network error, please try again"

type platformAPI interface {
	Login(ctx context.Context, email, password string) (*platform.AuthResponse, error)
	Register(ctx context.Context, payload platform.RegisterPayload) (*platform.AuthResponse, error)
	VerifyToken(ctx context.Context, token, sessionID string) (*platform.VerifyResponse, error)
	Logout(ctx context.Context, token, sessionID string) error
	ChangePassword(ctx context.Context, token, sessionID, current, next string) error
}

// Manager is the single source of truth for who is logged in. Each browser
// session owns one persisted token slot; all mutation funnels through the
// operations below, and nothing outside the manager ever writes the store.
type Manager struct {
	store  sessionStore
	keyer  sessionKeyer
	api    platformAPI
	signal *Signal
	logg   *logger.Logger
	ttl    time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

// slot tracks the in-memory view of one session. gen fences out-of-order
// resolutions: a verify result only applies if no newer mutation has
// bumped the generation since the verify began.
type slot struct {
	status  Status
	user    *platform.User
	loading bool
	gen     uint64
}

// ManagerParams bundles the dependencies required to build a session manager.
type ManagerParams struct {
	Store    sessionStore
	Keyer    sessionKeyer
	API      platformAPI
	Signal   *Signal
	Logger   *logger.Logger
	TokenTTL time.Duration
}

// NewManager constructs a session manager with the provided dependencies.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if params.Keyer == nil {
		return nil, fmt.Errorf("token keyer is required")
	}
	if params.API == nil {
		return nil, fmt.Errorf("platform api is required")
	}
	if params.Signal == nil {
		params.Signal = NewSignal()
	}
	if params.TokenTTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Manager{
		store:  params.Store,
		keyer:  params.Keyer,
		api:    params.API,
		signal: params.Signal,
		logg:   params.Logger,
		ttl:    params.TokenTTL,
		slots:  make(map[string]*slot),
	}, nil
}

// ExpirySignal exposes the token-expiry broadcast owned by the manager.
func (m *Manager) ExpirySignal() *Signal {
	return m.signal
}

// Snapshot returns the current state of a session without touching the
// network. An unknown session reads as unauthenticated and settled.
func (m *Manager) Snapshot(sessionID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(sessionID)
}

// Resolve returns a settled state for the session, verifying the persisted
// token when the slot has not been resolved yet.
func (m *Manager) Resolve(ctx context.Context, sessionID string) State {
	m.mu.Lock()
	s := m.slotLocked(sessionID)
	if s.status == StatusAuthenticated && s.user != nil {
		state := m.snapshotLocked(sessionID)
		m.mu.Unlock()
		return state
	}
	m.mu.Unlock()
	return m.Verify(ctx, sessionID)
}

// Verify resolves the persisted token against the upstream verify-token
// endpoint. Every failure mode settles to unauthenticated with the slot
// cleared; nothing escapes as an error. Stale responses are discarded
// rather than applied when a logout or a newer attempt has raced ahead.
func (m *Manager) Verify(ctx context.Context, sessionID string) State {
	token, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID))
	if err != nil || token == "" {
		if err != nil && !isNotFound(err) && m.logg != nil {
			m.logg.Error(ctx, "read token slot", err)
		}
		m.mu.Lock()
		s := m.slotLocked(sessionID)
		s.status = StatusUnauthenticated
		s.user = nil
		s.loading = false
		state := m.snapshotLocked(sessionID)
		m.mu.Unlock()
		return state
	}

	m.mu.Lock()
	s := m.slotLocked(sessionID)
	s.status = StatusVerifying
	s.loading = true
	gen := s.gen
	m.mu.Unlock()

	resp, err := m.api.VerifyToken(ctx, token, sessionID)
	valid := err == nil && resp != nil && resp.Valid && resp.User != nil

	if !valid {
		if delErr := m.store.Del(ctx, m.keyer.SessionTokenKey(sessionID)); delErr != nil && m.logg != nil {
			m.logg.Error(ctx, "clear token slot after failed verify", delErr)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s = m.slotLocked(sessionID)
	if s.gen != gen {
		return m.snapshotLocked(sessionID)
	}
	if valid {
		s.status = StatusAuthenticated
		s.user = resp.User
	} else {
		s.status = StatusUnauthenticated
		s.user = nil
	}
	s.loading = false
	return m.snapshotLocked(sessionID)
}

// Login exchanges credentials for a session. Success persists the token and
// caches the user together; failure persists nothing and carries the
// upstream message, or a generic network-error string.
func (m *Manager) Login(ctx context.Context, sessionID, email, password string) Result {
	gen := m.beginAttempt(sessionID)

	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.settleAttempt(sessionID, gen)
		return Result{Message: failureMessage(err)}
	}

	if err := m.store.Set(ctx, m.keyer.SessionTokenKey(sessionID), resp.Token, m.ttl); err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "persist token slot", err)
		}
		m.settleAttempt(sessionID, gen)
		return Result{Message: networkFailureMessage}
	}

	m.mu.Lock()
	s := m.slotLocked(sessionID)
	if s.gen == gen {
		s.status = StatusAuthenticated
		s.user = resp.User
		s.loading = false
	}
	m.mu.Unlock()

	return Result{OK: true, User: resp.User}
}

// Register validates the flat form locally, maps it to the nested upstream
// payload, and on success establishes the session exactly like login.
func (m *Manager) Register(ctx context.Context, sessionID string, form RegisterForm) Result {
	if msg, ok := form.Validate(); !ok {
		return Result{Message: msg}
	}

	gen := m.beginAttempt(sessionID)

	resp, err := m.api.Register(ctx, form.Payload())
	if err != nil {
		m.settleAttempt(sessionID, gen)
		return Result{Message: failureMessage(err)}
	}

	if err := m.store.Set(ctx, m.keyer.SessionTokenKey(sessionID), resp.Token, m.ttl); err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "persist token slot", err)
		}
		m.settleAttempt(sessionID, gen)
		return Result{Message: networkFailureMessage}
	}

	m.mu.Lock()
	s := m.slotLocked(sessionID)
	if s.gen == gen {
		s.status = StatusAuthenticated
		s.user = resp.User
		s.loading = false
	}
	m.mu.Unlock()

	return Result{OK: true, User: resp.User}
}

// Logout tears the session down. The upstream notification is best effort;
// local cleanup always runs, and calling it on an already unauthenticated
// session is a no-op.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	key := m.keyer.SessionTokenKey(sessionID)

	token, err := m.store.Get(ctx, key)
	if err != nil && !isNotFound(err) && m.logg != nil {
		m.logg.Error(ctx, "read token slot during logout", err)
	}
	if token != "" {
		if err := m.api.Logout(ctx, token, sessionID); err != nil && m.logg != nil {
			m.logg.Warn(m.logg.WithSessionID(ctx, sessionID), "upstream logout failed: "+err.Error())
		}
	}

	if err := m.store.Del(ctx, key); err != nil && m.logg != nil {
		m.logg.Error(ctx, "clear token slot during logout", err)
	}

	m.mu.Lock()
	s := m.slotLocked(sessionID)
	s.gen++
	s.status = StatusUnauthenticated
	s.user = nil
	s.loading = false
	m.mu.Unlock()
}

// ChangePassword forwards a password change for an authenticated session.
// The session state is left untouched on either outcome.
func (m *Manager) ChangePassword(ctx context.Context, sessionID, current, next string) Result {
	token, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID))
	if err != nil || token == "" {
		return Result{Message: "authentication required"}
	}
	if err := m.api.ChangePassword(ctx, token, sessionID, current, next); err != nil {
		return Result{Message: failureMessage(err)}
	}
	return Result{OK: true, Message: "password updated"}
}

// Token reads the persisted bearer token for handing to the upstream
// helper. Callers only ever read the value; the manager stays the sole
// writer of the slot.
func (m *Manager) Token(ctx context.Context, sessionID string) string {
	token, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID))
	if err != nil {
		return ""
	}
	return token
}

func (m *Manager) beginAttempt(sessionID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slotLocked(sessionID)
	s.gen++
	s.loading = true
	return s.gen
}

func (m *Manager) settleAttempt(sessionID string, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.slotLocked(sessionID)
	if s.gen == gen {
		s.loading = false
	}
}

func (m *Manager) slotLocked(sessionID string) *slot {
	s, ok := m.slots[sessionID]
	if !ok {
		s = &slot{status: StatusUnauthenticated}
		m.slots[sessionID] = s
	}
	return s
}

func (m *Manager) snapshotLocked(sessionID string) State {
	s, ok := m.slots[sessionID]
	if !ok {
		return State{Status: StatusUnauthenticated}
	}
	return State{Status: s.status, User: s.user, Loading: s.loading}
}

func failureMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		if msg := typed.Message(); msg != "" {
			return msg
		}
	}
	return networkFailureMessage
}
