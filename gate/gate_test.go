package gate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/credstore"
	"github.com/tenantflow/tenantflow-go/fake"
	"github.com/tenantflow/tenantflow-go/gate"
	"github.com/tenantflow/tenantflow-go/session"
)

func snap(status session.Status, user *tenantflow.User) session.Snapshot {
	return session.Snapshot{Status: status, User: user}
}

func owner(status tenantflow.VerificationStatus) *tenantflow.User {
	return &tenantflow.User{ID: "o-1", Role: tenantflow.RoleOwner, VerificationStatus: status}
}

func TestDecide_Table(t *testing.T) {
	tenant := &tenantflow.User{ID: "t-1", Role: tenantflow.RoleTenant}
	admin := &tenantflow.User{ID: "a-1", Role: tenantflow.RoleAdmin}

	tests := []struct {
		name    string
		snap    session.Snapshot
		allowed []tenantflow.Role
		want    gate.Outcome
	}{
		{
			name: "initializing always loads, even with no identity",
			snap: snap(session.StatusInitializing, nil),
			want: gate.Loading,
		},
		{
			name:    "initializing beats role mismatch",
			snap:    snap(session.StatusInitializing, tenant),
			allowed: []tenantflow.Role{tenantflow.RoleOwner},
			want:    gate.Loading,
		},
		{
			name: "no identity redirects to login",
			snap: snap(session.StatusReady, nil),
			want: gate.RedirectToLogin,
		},
		{
			name:    "no identity beats role check",
			snap:    snap(session.StatusReady, nil),
			allowed: []tenantflow.Role{tenantflow.RoleTenant},
			want:    gate.RedirectToLogin,
		},
		{
			name:    "role not in allow-list",
			snap:    snap(session.StatusReady, tenant),
			allowed: []tenantflow.Role{tenantflow.RoleOwner},
			want:    gate.RedirectToUnauthorized,
		},
		{
			name:    "role in allow-list grants",
			snap:    snap(session.StatusReady, tenant),
			allowed: []tenantflow.Role{tenantflow.RoleTenant},
			want:    gate.Grant,
		},
		{
			name: "empty allow-list admits any authenticated role",
			snap: snap(session.StatusReady, admin),
			want: gate.Grant,
		},
		{
			name:    "pending owner held at interstitial even when role allowed",
			snap:    snap(session.StatusReady, owner(tenantflow.VerificationPending)),
			allowed: []tenantflow.Role{tenantflow.RoleOwner},
			want:    gate.VerificationPending,
		},
		{
			name:    "rejected owner gets distinct interstitial",
			snap:    snap(session.StatusReady, owner(tenantflow.VerificationRejected)),
			allowed: []tenantflow.Role{tenantflow.RoleOwner},
			want:    gate.VerificationRejected,
		},
		{
			name:    "approved owner grants",
			snap:    snap(session.StatusReady, owner(tenantflow.VerificationApproved)),
			allowed: []tenantflow.Role{tenantflow.RoleOwner},
			want:    gate.Grant,
		},
		{
			name:    "role mismatch beats owner verification",
			snap:    snap(session.StatusReady, owner(tenantflow.VerificationPending)),
			allowed: []tenantflow.Role{tenantflow.RoleAdmin},
			want:    gate.RedirectToUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Decide(tt.snap, tt.allowed, "/some/route")
			require.Equal(t, tt.want, d.Outcome)
		})
	}
}

func TestDecide_RedirectTargets(t *testing.T) {
	d := gate.Decide(snap(session.StatusReady, nil), nil, "/owner/properties")
	require.Equal(t, gate.LoginRoute, d.Target)
	require.Equal(t, "/owner/properties", d.From, "origin preserved for post-login return")

	tenant := &tenantflow.User{Role: tenantflow.RoleTenant}
	d = gate.Decide(snap(session.StatusReady, tenant), []tenantflow.Role{tenantflow.RoleOwner}, "/owner/properties")
	require.Equal(t, gate.UnauthorizedRoute, d.Target)
}

func TestDecide_InterstitialsDoNotRedirect(t *testing.T) {
	for _, vs := range []tenantflow.VerificationStatus{tenantflow.VerificationPending, tenantflow.VerificationRejected} {
		d := gate.Decide(snap(session.StatusReady, owner(vs)), []tenantflow.Role{tenantflow.RoleOwner}, "/owner/dashboard")
		require.Empty(t, d.Target, "verification interstitial must not redirect (loop)")
	}
}

func TestRouteRoles(t *testing.T) {
	require.Equal(t, []tenantflow.Role{tenantflow.RoleOwner}, gate.RouteRoles("/owner/dashboard"))
	require.Equal(t, []tenantflow.Role{tenantflow.RoleTenant}, gate.RouteRoles("/tenant"))
	require.Equal(t, []tenantflow.Role{tenantflow.RoleAdmin}, gate.RouteRoles("/admin/settings"))
	require.Nil(t, gate.RouteRoles("/auth/login"))
	require.Nil(t, gate.RouteRoles("/ownership"), "prefix match is per path segment")
}

func TestNavItems_PerRole(t *testing.T) {
	for _, role := range []tenantflow.Role{tenantflow.RoleOwner, tenantflow.RoleTenant, tenantflow.RoleAdmin} {
		items := gate.NavItems(role)
		require.Len(t, items, 5)
		for _, item := range items {
			require.Equal(t, []tenantflow.Role{role}, gate.RouteRoles(item.Href),
				"every nav item must point into the role's own section")
		}
	}
	require.Nil(t, gate.NavItems(tenantflow.Role("ghost")))
}

func TestGuard_ReevaluatesOnSessionChange(t *testing.T) {
	user := &tenantflow.User{ID: "t-1", Email: "a@b.com", Role: tenantflow.RoleTenant}
	client, _ := fake.NewClient(fake.WithAccount("a@b.com", "secret1", user))
	mgr, err := session.NewManager(client)
	require.NoError(t, err)

	var decisions []gate.Decision
	g := gate.NewGuard(mgr, "/tenant/dashboard", gate.RouteRoles("/tenant/dashboard"),
		func(d gate.Decision) { decisions = append(decisions, d) })
	defer g.Close()

	// Immediate evaluation while still initializing.
	require.Equal(t, gate.Loading, decisions[0].Outcome)

	mgr.Initialize(context.Background())
	require.Equal(t, gate.RedirectToLogin, decisions[1].Outcome)

	mgr.Login(context.Background(), tenantflow.Credentials{Email: "a@b.com", Password: "secret1"}, tenantflow.RoleTenant)
	require.Equal(t, gate.Grant, decisions[2].Outcome)

	// Navigation to a different section re-evaluates with that
	// section's allow-list.
	d := g.Visit("/admin/settings")
	require.Equal(t, gate.RedirectToUnauthorized, d.Outcome)

	mgr.Logout(context.Background())
	last := decisions[len(decisions)-1]
	require.Equal(t, gate.RedirectToLogin, last.Outcome)
}

func TestGuard_LoginScenario(t *testing.T) {
	// Login as tenant, then check both allow-lists against the
	// resulting session.
	store := credstore.NewMemory()
	backend := fake.New(store, fake.WithAccount("a@b.com", "secret1",
		&tenantflow.User{ID: "1", Role: tenantflow.RoleTenant}))
	client, err := tenantflow.NewClient(
		tenantflow.Config{BaseURL: "fake://localhost"},
		tenantflow.WithAuthBackend(backend),
		tenantflow.WithCredentialStore(store),
	)
	require.NoError(t, err)
	mgr, err := session.NewManager(client)
	require.NoError(t, err)
	mgr.Initialize(context.Background())

	result := mgr.Login(context.Background(),
		tenantflow.Credentials{Email: "a@b.com", Password: "secret1"}, tenantflow.RoleTenant)
	require.True(t, result.OK)
	require.Equal(t, tenantflow.RoleTenant, mgr.Snapshot().User.Role)

	d := gate.Decide(mgr.Snapshot(), []tenantflow.Role{tenantflow.RoleOwner}, "/owner/dashboard")
	require.Equal(t, gate.RedirectToUnauthorized, d.Outcome)

	d = gate.Decide(mgr.Snapshot(), []tenantflow.Role{tenantflow.RoleTenant}, "/tenant/dashboard")
	require.Equal(t, gate.Grant, d.Outcome)
}
