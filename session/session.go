// Package session owns the authentication lifecycle: credential
// persistence, login/register/logout, startup verification, and the
// observable session state every other component derives its decisions
// from.
//
// The Manager is the sole writer of session state. Consumers read
// point-in-time Snapshots and subscribe for changes; they must treat
// the window before Initialize completes as indeterminate.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/audit"
	"github.com/tenantflow/tenantflow-go/metrics"
)

// Status is the session lifecycle phase.
type Status int

const (
	// StatusInitializing holds from construction until the startup
	// verification completes, successfully or not. No access decision
	// may be made while in this phase.
	StatusInitializing Status = iota

	// StatusReady means the startup verification has resolved.
	StatusReady
)

// Snapshot is a point-in-time copy of session state.
type Snapshot struct {
	Status Status
	User   *tenantflow.User
}

// IsAuthenticated reports whether an identity is established.
func (s Snapshot) IsAuthenticated() bool { return s.User != nil }

// IsOwner reports whether the identity is a property owner.
func (s Snapshot) IsOwner() bool { return s.User != nil && s.User.Role == tenantflow.RoleOwner }

// IsTenant reports whether the identity is a tenant.
func (s Snapshot) IsTenant() bool { return s.User != nil && s.User.Role == tenantflow.RoleTenant }

// IsAdmin reports whether the identity is an administrator.
func (s Snapshot) IsAdmin() bool { return s.User != nil && s.User.Role == tenantflow.RoleAdmin }

// IsVerified reports whether the identity has passed owner
// verification (non-owners are implicitly verified).
func (s Snapshot) IsVerified() bool { return s.User.Verified() }

// Event is delivered to subscribers on every state transition.
type Event struct {
	Snapshot Snapshot

	// ForcedLogout marks transitions caused by a 401 response rather
	// than a user action. UI layers route to the login page on it.
	ForcedLogout bool
	Reason       string
}

// Result is the outcome of a user-initiated auth operation. Failures
// carry a user-displayable message; the session state is guaranteed
// unchanged on failure.
type Result struct {
	OK      bool
	User    *tenantflow.User
	Message string
}

// Fallback messages when the server gives no displayable error.
const (
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"
	msgLoginOK        = "Login successful!"
	msgRegisterOK     = "Registration successful! Please wait for admin approval."
	msgLogoutOK       = "Logged out successfully"
)

// Manager owns session state. All mutations go through it; reads go
// through Snapshot or subscriptions.
type Manager struct {
	auth    tenantflow.AuthBackend
	store   tenantflow.CredentialStore
	alerter tenantflow.Alerter
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Logger

	initOnce sync.Once
	verify   singleflight.Group

	mu      sync.Mutex
	status  Status
	user    *tenantflow.User
	subs    map[int]func(Event)
	nextSub int
}

// Option configures the Manager.
type Option func(*Manager)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithAudit attaches an audit logger for session transitions.
func WithAudit(l *audit.Logger) Option {
	return func(mgr *Manager) { mgr.audit = l }
}

// NewManager creates a session manager bound to the client's auth
// backend and credential store. Both must be configured.
func NewManager(c *tenantflow.Client, opts ...Option) (*Manager, error) {
	if c.Auth() == nil {
		return nil, errors.New("tenantflow/session: client has no auth backend")
	}
	if c.Credentials() == nil {
		return nil, errors.New("tenantflow/session: client has no credential store")
	}

	m := &Manager{
		auth:    c.Auth(),
		store:   c.Credentials(),
		alerter: c.Alerter(),
		logger:  c.Logger(),
		metrics: metrics.New(false),
		subs:    make(map[int]func(Event)),
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// Snapshot returns a point-in-time copy of session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Status: m.status, User: m.user}
}

// Subscribe registers fn to run on every state transition. The
// returned function removes the subscription. fn is called outside the
// manager's lock and may call back into the manager.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// set replaces session state and notifies subscribers.
func (m *Manager) set(status Status, user *tenantflow.User, forced bool, reason string) {
	m.mu.Lock()
	m.status = status
	m.user = user
	ev := Event{
		Snapshot:     Snapshot{Status: status, User: user},
		ForcedLogout: forced,
		Reason:       reason,
	}
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Initialize runs the startup verification exactly once per Manager.
// It reads the persisted credential and, if one exists, validates it
// against the server. Any failure demotes silently to the logged-out
// state; Initialize itself never fails. Safe to call concurrently;
// all callers return after the first run completes.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() { m.initialize(ctx) })
}

func (m *Manager) initialize(ctx context.Context) {
	token, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, tenantflow.ErrNoCredential) {
			m.logger.Error("session: credential load failed", "err", err)
		}
		m.set(StatusReady, nil, false, "")
		return
	}

	if expiredToken(token) {
		// The server would reject it anyway; skip the round-trip.
		m.logger.Debug("session: stored credential is expired")
		m.clearCredential()
		m.metrics.RecordVerify(false)
		m.record("verify", "", "", false, "expired credential", nil)
		m.set(StatusReady, nil, false, "")
		return
	}

	user, err := m.verifyOnce(ctx)
	if err != nil {
		m.logger.Warn("session: startup verification failed", "err", err)
		m.serverLogout(ctx)
		m.clearCredential()
		m.metrics.RecordVerify(false)
		m.record("verify", "", "", false, "", err)
		m.set(StatusReady, nil, false, "")
		return
	}

	m.metrics.RecordVerify(true)
	m.record("verify", user.ID, string(user.Role), true, "", nil)
	m.set(StatusReady, user, false, "")
}

// verifyOnce deduplicates concurrent verification round-trips.
func (m *Manager) verifyOnce(ctx context.Context) (*tenantflow.User, error) {
	v, err, _ := m.verify.Do("verify", func() (any, error) {
		return m.auth.Verify(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*tenantflow.User), nil
}

// expiredToken inspects the stored JWT's exp claim without verifying
// the signature. Opaque or claim-less tokens are passed to the server
// undecided.
func expiredToken(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Login authenticates against the role-specific endpoint. On success
// the credential is persisted and the identity installed; on failure
// session state is left untouched and the result carries a
// user-displayable message.
func (m *Manager) Login(ctx context.Context, creds tenantflow.Credentials, role tenantflow.Role) Result {
	token, user, err := m.auth.Login(ctx, creds, role)
	if err != nil {
		msg := tenantflow.UserMessage(err, msgLoginFailed)
		m.alerter.Error(msg)
		m.metrics.RecordLogin(string(role), false)
		m.record("login", "", string(role), false, "", err)
		return Result{Message: msg}
	}

	if err := m.store.Save(token); err != nil {
		m.logger.Error("session: credential save failed", "err", err)
		m.alerter.Error(msgLoginFailed)
		m.metrics.RecordLogin(string(role), false)
		m.record("login", user.ID, string(role), false, "credential save failed", err)
		return Result{Message: msgLoginFailed}
	}

	m.metrics.RecordLogin(string(role), true)
	m.record("login", user.ID, string(role), true, "", nil)
	m.set(StatusReady, user, false, "")
	m.alerter.Success(msgLoginOK)
	return Result{OK: true, User: user}
}

// Register submits a tenant or admin sign-up. The caller is not
// authenticated by this operation. Owners register through
// RegisterOwner (multipart document flow).
func (m *Manager) Register(ctx context.Context, reg tenantflow.Registration, role tenantflow.Role) Result {
	return m.finishRegister(string(role), m.auth.Register(ctx, reg, role))
}

// RegisterOwner submits an owner sign-up with verification documents.
func (m *Manager) RegisterOwner(ctx context.Context, reg tenantflow.OwnerRegistration) Result {
	return m.finishRegister(string(tenantflow.RoleOwner), m.auth.RegisterOwner(ctx, reg))
}

func (m *Manager) finishRegister(role string, err error) Result {
	if err != nil {
		msg := tenantflow.UserMessage(err, msgRegisterFailed)
		m.alerter.Error(msg)
		m.metrics.RecordRegister(role, false)
		m.record("register", "", role, false, "", err)
		return Result{Message: msg}
	}

	m.metrics.RecordRegister(role, true)
	m.record("register", "", role, true, "", nil)
	m.alerter.Success(msgRegisterOK)
	return Result{OK: true}
}

// Logout ends the session. The server call is best-effort: its failure
// is logged and swallowed, and the local session is cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	var userID, role string
	if snap := m.Snapshot(); snap.User != nil {
		userID, role = snap.User.ID, string(snap.User.Role)
	}

	m.serverLogout(ctx)
	m.clearCredential()
	m.record("logout", userID, role, true, "", nil)
	m.set(StatusReady, nil, false, "")
	m.alerter.Success(msgLogoutOK)
}

// serverLogout informs the server, if a credential is attached.
func (m *Manager) serverLogout(ctx context.Context) {
	if _, err := m.store.Load(); err != nil {
		return
	}
	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("session: server logout failed", "err", err)
	}
}

func (m *Manager) clearCredential() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("session: credential clear failed", "err", err)
	}
}

// ForceLogout clears the session without a server round-trip. It is
// the entry point for the transport's 401 hook and may fire at any
// time, triggered by any in-flight request in the application.
func (m *Manager) ForceLogout(reason string) {
	var userID, role string
	if snap := m.Snapshot(); snap.User != nil {
		userID, role = snap.User.ID, string(snap.User.Role)
	}

	m.clearCredential()
	m.metrics.RecordForcedLogout()
	m.record("forced_logout", userID, role, true, reason, nil)
	m.set(StatusReady, nil, true, reason)
}

// UpdateUser replaces the identity after an out-of-band profile edit.
// No validation is performed.
func (m *Manager) UpdateUser(u *tenantflow.User) {
	m.mu.Lock()
	status := m.status
	m.mu.Unlock()

	var userID, role string
	if u != nil {
		userID, role = u.ID, string(u.Role)
	}
	m.record("update_user", userID, role, true, "", nil)
	m.set(status, u, false, "")
}

// record emits an audit event when an audit logger is attached.
func (m *Manager) record(action, userID, role string, ok bool, details string, err error) {
	if m.audit == nil {
		return
	}
	e := audit.Event{
		UserID:  userID,
		Role:    role,
		Action:  action,
		Result:  "success",
		Details: details,
	}
	if !ok {
		e.Result = "failure"
	}
	if err != nil {
		e.Error = err.Error()
	}
	m.audit.Record(e)
}
