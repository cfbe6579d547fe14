// Package notify keeps a local notification projection consistent with
// the server's read/unread state.
//
// The synchronizer holds the currently loaded pages (newest first) and
// an unread counter. The counter is exact immediately after a page-1
// refresh and incrementally adjusted afterwards; once older pages are
// loaded it can drift from the server-side ground truth. The drift is
// accepted, not reconciled.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/metrics"
	"github.com/tenantflow/tenantflow-go/session"
)

// Synchronizer maintains the notification collection for the current
// user. Safe for concurrent use.
type Synchronizer struct {
	backend  tenantflow.NotificationBackend
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pageSize int

	mu     sync.Mutex
	active bool
	gen    uint64
	items  []tenantflow.Notification
	unread int
}

// Option configures the Synchronizer.
type Option func(*Synchronizer)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// NewSynchronizer creates a synchronizer bound to the client's
// notification backend.
func NewSynchronizer(c *tenantflow.Client, opts ...Option) (*Synchronizer, error) {
	if c.Notifications() == nil {
		return nil, errors.New("tenantflow/notify: client has no notification backend")
	}
	s := &Synchronizer{
		backend:  c.Notifications(),
		logger:   c.Logger(),
		metrics:  metrics.New(false),
		pageSize: c.Config().PageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Activate starts synchronization for a freshly authenticated user:
// the collection is rebuilt from page 1. Activating again (e.g. a
// different user logged in) discards the previous state.
func (s *Synchronizer) Activate(ctx context.Context) {
	s.mu.Lock()
	s.active = true
	s.gen++
	s.items = nil
	s.setUnreadLocked(0)
	s.mu.Unlock()

	s.FetchPage(ctx, 1, s.pageSize)
}

// Deactivate clears the collection on logout. Results of fetches still
// in flight are discarded when they resolve; a logged-out synchronizer
// stays empty.
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.gen++
	s.items = nil
	s.setUnreadLocked(0)
}

// FetchPage loads one page from the server. Page 1 replaces the
// collection and recomputes the unread count from that page; later
// pages append to the tail and leave the count untouched. Failures are
// logged and swallowed; the returned slice is the fetched page (nil on
// failure). Results are discarded if Deactivate or a newer Activate
// ran while the fetch was in flight.
func (s *Synchronizer) FetchPage(ctx context.Context, page, limit int) []tenantflow.Notification {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pageSize
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	fetched, err := s.backend.List(ctx, tenantflow.ListOptions{Page: page, Limit: limit})
	if err != nil {
		s.logger.Error("notify: fetch failed", "page", page, "err", err)
		s.metrics.RecordNotificationFetch(false)
		return nil
	}
	s.metrics.RecordNotificationFetch(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Applying would resurrect state the logout (or a newer
		// activation) already cleared.
		s.logger.Debug("notify: discarding stale fetch", "page", page)
		return nil
	}
	if page == 1 {
		s.items = append([]tenantflow.Notification(nil), fetched...)
		unread := 0
		for _, n := range fetched {
			if !n.IsRead {
				unread++
			}
		}
		s.setUnreadLocked(unread)
	} else {
		s.items = append(s.items, fetched...)
	}
	return fetched
}

// MarkRead asks the server to mark one notification read, then applies
// the same change locally. Nothing is mutated before the server
// confirms; failures are logged, not surfaced.
func (s *Synchronizer) MarkRead(ctx context.Context, id string) {
	if err := s.backend.MarkRead(ctx, id); err != nil {
		s.logger.Error("notify: mark read failed", "id", id, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsRead = true
			break
		}
	}
	if s.unread > 0 {
		s.setUnreadLocked(s.unread - 1)
	}
}

// MarkAllRead asks the server to mark everything read, then zeroes the
// local state. Failures are logged, not surfaced.
func (s *Synchronizer) MarkAllRead(ctx context.Context) {
	if err := s.backend.MarkAllRead(ctx); err != nil {
		s.logger.Error("notify: mark all read failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsRead = true
	}
	s.setUnreadLocked(0)
}

// Add inserts a locally originated notification at the head of the
// collection. There is no live server push channel; this is for events
// synthesized inside the running application.
func (s *Synchronizer) Add(n tenantflow.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]tenantflow.Notification{n}, s.items...)
	if !n.IsRead {
		s.setUnreadLocked(s.unread + 1)
	}
}

// Remove deletes a local entry. The unread count is intentionally not
// adjusted, mirroring the historical behavior this projection is
// modeled on, even when the removed entry was unread.
func (s *Synchronizer) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Notifications returns a copy of the currently loaded collection,
// newest first.
func (s *Synchronizer) Notifications() []tenantflow.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tenantflow.Notification(nil), s.items...)
}

// UnreadCount returns the locally tracked unread count. Never negative.
func (s *Synchronizer) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Active reports whether the synchronizer is bound to an authenticated
// session.
func (s *Synchronizer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Synchronizer) setUnreadLocked(n int) {
	s.unread = n
	s.metrics.SetUnread(n)
}

// Send delivers a notification to one user (admin operation). The
// local collection is not touched; the recipient sees it on their next
// refresh.
func (s *Synchronizer) Send(ctx context.Context, userID string, n tenantflow.Notification) error {
	return s.backend.Send(ctx, userID, n)
}

// SendBulk delivers the same notification to a set of users.
func (s *Synchronizer) SendBulk(ctx context.Context, b tenantflow.BulkNotification) error {
	return s.backend.SendBulk(ctx, b)
}

// Stats returns the server-side notification summary.
func (s *Synchronizer) Stats(ctx context.Context) (*tenantflow.NotificationStats, error) {
	return s.backend.Stats(ctx)
}

// BindSession ties the synchronizer's lifecycle to a session manager:
// it activates when authentication is established and deactivates on
// logout (forced or not). Only the transition matters: identity updates
// within an authenticated session do not refetch. The activation fetch
// runs off the caller's goroutine so session transitions are never
// blocked by a network round-trip. The returned function removes the
// subscription.
func (s *Synchronizer) BindSession(mgr *session.Manager) (unbind func()) {
	var mu sync.Mutex
	prev := mgr.Snapshot().IsAuthenticated()
	return mgr.Subscribe(func(ev session.Event) {
		auth := ev.Snapshot.IsAuthenticated()
		mu.Lock()
		changed := auth != prev
		prev = auth
		mu.Unlock()
		if !changed {
			return
		}
		if auth {
			go s.Activate(context.Background())
			return
		}
		s.Deactivate()
	})
}
