// Package fake provides in-memory implementations of the tenantflow
// backend interfaces for testing.
//
// Use fake.NewClient() in unit tests to avoid network calls: accounts
// and notifications are declared up front with options, and the fake
// honors the same credential-store contract as the rest transport, so
// session.Manager behaves identically against it.
package fake

import (
	"context"
	"fmt"
	"sync"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/credstore"
)

// Option configures the fake backend.
type Option func(*state)

type account struct {
	password string
	user     *tenantflow.User
}

type state struct {
	mu            sync.Mutex
	accounts      map[string]*account // keyed by email|role
	tokens        map[string]*tenantflow.User
	notifications map[string][]tenantflow.Notification // per user, newest first
	registered    []string
	nextToken     int
}

// WithAccount adds a login-able account. The issued token is
// deterministic per login ("tok-1", "tok-2", ...).
func WithAccount(email, password string, user *tenantflow.User) Option {
	return func(s *state) {
		s.accounts[accountKey(email, user.Role)] = &account{password: password, user: user}
	}
}

// WithToken adds a pre-authorized token, as if a previous session had
// persisted it.
func WithToken(token string, user *tenantflow.User) Option {
	return func(s *state) {
		s.tokens[token] = user
	}
}

// WithNotifications seeds the notification list for a user, newest
// first.
func WithNotifications(userID string, ns ...tenantflow.Notification) Option {
	return func(s *state) {
		s.notifications[userID] = append(s.notifications[userID], ns...)
	}
}

func accountKey(email string, role tenantflow.Role) string {
	return email + "|" + string(role)
}

// Backend implements every tenantflow backend interface in memory. The
// attached credential is read through the same CredentialStore the
// session manager writes, mirroring the rest transport.
type Backend struct {
	s     *state
	store tenantflow.CredentialStore
}

// compile-time checks
var (
	_ tenantflow.AuthBackend         = (*Backend)(nil)
	_ tenantflow.NotificationBackend = (*Backend)(nil)
	_ tenantflow.ProfileBackend      = (*Backend)(nil)
)

// New creates a fake backend reading the attached credential from
// store.
func New(store tenantflow.CredentialStore, opts ...Option) *Backend {
	s := &state{
		accounts:      make(map[string]*account),
		tokens:        make(map[string]*tenantflow.User),
		notifications: make(map[string][]tenantflow.Notification),
	}
	for _, o := range opts {
		o(s)
	}
	return &Backend{s: s, store: store}
}

// NewClient creates a *tenantflow.Client wired to an in-memory backend
// and an in-memory credential store.
func NewClient(opts ...Option) (*tenantflow.Client, *Backend) {
	store := credstore.NewMemory()
	b := New(store, opts...)
	c, err := tenantflow.NewClient(
		tenantflow.Config{BaseURL: "fake://localhost"},
		tenantflow.WithAuthBackend(b),
		tenantflow.WithNotificationBackend(b),
		tenantflow.WithProfileBackend(b),
		tenantflow.WithCredentialStore(store),
	)
	if err != nil {
		panic(fmt.Sprintf("fake: wiring client: %v", err))
	}
	return c, b
}

// current resolves the attached credential to a user.
func (b *Backend) current() (*tenantflow.User, error) {
	token, err := b.store.Load()
	if err != nil {
		return nil, &tenantflow.APIError{Status: 401, Message: "no token"}
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	user, ok := b.s.tokens[token]
	if !ok {
		return nil, &tenantflow.APIError{Status: 401, Message: "invalid token"}
	}
	return user, nil
}

// --- AuthBackend ---

// Login checks the declared accounts and issues a fresh token.
func (b *Backend) Login(ctx context.Context, creds tenantflow.Credentials, role tenantflow.Role) (string, *tenantflow.User, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	acct, ok := b.s.accounts[accountKey(creds.Email, role)]
	if !ok || acct.password != creds.Password {
		return "", nil, &tenantflow.APIError{Status: 401, Message: "Invalid credentials"}
	}
	b.s.nextToken++
	token := fmt.Sprintf("tok-%d", b.s.nextToken)
	b.s.tokens[token] = acct.user
	return token, acct.user, nil
}

// Verify resolves the attached credential.
func (b *Backend) Verify(ctx context.Context) (*tenantflow.User, error) {
	return b.current()
}

// RegisterOwner records the sign-up; the account stays pending until a
// matching WithAccount is declared.
func (b *Backend) RegisterOwner(ctx context.Context, reg tenantflow.OwnerRegistration) error {
	if len(reg.Documents) == 0 {
		return &tenantflow.APIError{Status: 400, Message: "Please upload at least one verification document"}
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.registered = append(b.s.registered, reg.Fields["email"])
	return nil
}

// Register records a tenant or admin sign-up.
func (b *Backend) Register(ctx context.Context, reg tenantflow.Registration, role tenantflow.Role) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	email, _ := reg["email"].(string)
	b.s.registered = append(b.s.registered, email)
	return nil
}

// Logout invalidates the attached token.
func (b *Backend) Logout(ctx context.Context) error {
	token, err := b.store.Load()
	if err != nil {
		return nil
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	delete(b.s.tokens, token)
	return nil
}

// Registered returns the emails seen by the register endpoints.
func (b *Backend) Registered() []string {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return append([]string(nil), b.s.registered...)
}

// --- NotificationBackend ---

// List pages through the current user's notifications.
func (b *Backend) List(ctx context.Context, opts tenantflow.ListOptions) ([]tenantflow.Notification, error) {
	user, err := b.current()
	if err != nil {
		return nil, err
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = tenantflow.DefaultPageSize
	}

	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	all := b.s.notifications[user.ID]
	start := (opts.Page - 1) * opts.Limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + opts.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]tenantflow.Notification(nil), all[start:end]...), nil
}

// MarkRead marks one of the current user's notifications read.
func (b *Backend) MarkRead(ctx context.Context, id string) error {
	user, err := b.current()
	if err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for i, n := range b.s.notifications[user.ID] {
		if n.ID == id {
			b.s.notifications[user.ID][i].IsRead = true
			return nil
		}
	}
	return &tenantflow.APIError{Status: 404, Message: "Notification not found"}
}

// MarkAllRead marks every notification of the current user read.
func (b *Backend) MarkAllRead(ctx context.Context) error {
	user, err := b.current()
	if err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for i := range b.s.notifications[user.ID] {
		b.s.notifications[user.ID][i].IsRead = true
	}
	return nil
}

// Send appends a notification at the head of the recipient's list.
func (b *Backend) Send(ctx context.Context, userID string, n tenantflow.Notification) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.notifications[userID] = append([]tenantflow.Notification{n}, b.s.notifications[userID]...)
	return nil
}

// SendBulk delivers the notification to each target user.
func (b *Backend) SendBulk(ctx context.Context, bulk tenantflow.BulkNotification) error {
	n := tenantflow.Notification{Title: bulk.Title, Message: bulk.Message}
	for _, id := range bulk.UserIDs {
		if err := b.Send(ctx, id, n); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes the current user's notifications.
func (b *Backend) Stats(ctx context.Context) (*tenantflow.NotificationStats, error) {
	user, err := b.current()
	if err != nil {
		return nil, err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	stats := &tenantflow.NotificationStats{}
	for _, n := range b.s.notifications[user.ID] {
		stats.Total++
		if !n.IsRead {
			stats.Unread++
		}
	}
	return stats, nil
}

// --- ProfileBackend ---

// Profile returns the current user's opaque profile payload.
func (b *Backend) Profile(ctx context.Context, role tenantflow.Role) (map[string]any, error) {
	user, err := b.current()
	if err != nil {
		return nil, err
	}
	return user.Profile, nil
}

// UpdateProfile merges the fields into the current user's profile and
// returns the updated user.
func (b *Backend) UpdateProfile(ctx context.Context, role tenantflow.Role, fields map[string]any) (*tenantflow.User, error) {
	user, err := b.current()
	if err != nil {
		return nil, err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	updated := *user
	updated.Profile = make(map[string]any, len(user.Profile)+len(fields))
	for k, v := range user.Profile {
		updated.Profile[k] = v
	}
	for k, v := range fields {
		updated.Profile[k] = v
	}
	return &updated, nil
}
