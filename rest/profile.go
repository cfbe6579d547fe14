package rest

import (
	"context"
	"fmt"
	"net/http"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

// ProfileAPI implements tenantflow.ProfileBackend over HTTP. Owners and
// tenants have role-specific profile endpoints; admins have none.
type ProfileAPI struct {
	t *Transport
}

// compile-time check
var _ tenantflow.ProfileBackend = (*ProfileAPI)(nil)

func profilePath(role tenantflow.Role) (string, error) {
	switch role {
	case tenantflow.RoleOwner:
		return "/owners/profile", nil
	case tenantflow.RoleTenant:
		return "/tenants/profile", nil
	default:
		return "", fmt.Errorf("rest: no profile endpoint for role %q", role)
	}
}

// profileResponse is the success envelope of the profile GET endpoints.
type profileResponse struct {
	Profile map[string]any `json:"profile"`
}

// updateResponse is the success envelope of the profile PUT endpoints.
type updateResponse struct {
	User *tenantflow.User `json:"user"`
}

// Profile returns the role-specific profile payload.
func (p *ProfileAPI) Profile(ctx context.Context, role tenantflow.Role) (map[string]any, error) {
	path, err := profilePath(role)
	if err != nil {
		return nil, err
	}
	var resp profileResponse
	if err := p.t.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

// UpdateProfile applies the given fields and returns the updated user,
// suitable for session.Manager.UpdateUser.
func (p *ProfileAPI) UpdateProfile(ctx context.Context, role tenantflow.Role, fields map[string]any) (*tenantflow.User, error) {
	path, err := profilePath(role)
	if err != nil {
		return nil, err
	}
	var resp updateResponse
	if err := p.t.doJSON(ctx, http.MethodPut, path, fields, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("rest: update response missing user")
	}
	return resp.User, nil
}
