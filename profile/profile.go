// Package profile reads and updates the role-specific profile payload
// attached to a user.
package profile

import (
	"context"
	"fmt"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/session"
)

// Service wraps a ProfileBackend with role dispatch and session
// propagation.
type Service struct {
	backend tenantflow.ProfileBackend
	mgr     *session.Manager
}

// New creates a profile service bound to the session manager that
// receives updated users after edits.
func New(backend tenantflow.ProfileBackend, mgr *session.Manager) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("tenantflow/profile: backend is required")
	}
	if mgr == nil {
		return nil, fmt.Errorf("tenantflow/profile: session manager is required")
	}
	return &Service{backend: backend, mgr: mgr}, nil
}

// Get returns the profile payload for the current identity's role.
func (s *Service) Get(ctx context.Context) (map[string]any, error) {
	role, err := s.currentRole()
	if err != nil {
		return nil, err
	}
	p, err := s.backend.Profile(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("tenantflow/profile: %w", err)
	}
	return p, nil
}

// Update applies the given fields to the current identity's profile
// and pushes the server's updated user into the session manager, so
// every session consumer sees the edit.
func (s *Service) Update(ctx context.Context, fields map[string]any) (*tenantflow.User, error) {
	role, err := s.currentRole()
	if err != nil {
		return nil, err
	}
	user, err := s.backend.UpdateProfile(ctx, role, fields)
	if err != nil {
		return nil, fmt.Errorf("tenantflow/profile: %w", err)
	}
	s.mgr.UpdateUser(user)
	return user, nil
}

func (s *Service) currentRole() (tenantflow.Role, error) {
	snap := s.mgr.Snapshot()
	if snap.User == nil {
		return "", fmt.Errorf("tenantflow/profile: not authenticated")
	}
	return snap.User.Role, nil
}
