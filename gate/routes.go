package gate

import (
	"strings"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

// routeRoles is the fixed allow-list per route section. Everything
// under a role prefix requires exactly that role; /auth/* and the
// unauthorized page are public.
var routeRoles = map[string][]tenantflow.Role{
	"/owner":  {tenantflow.RoleOwner},
	"/tenant": {tenantflow.RoleTenant},
	"/admin":  {tenantflow.RoleAdmin},
}

// RouteRoles returns the allow-list for a route path. A nil result
// means any authenticated role; public routes are the caller's concern
// (the gate is only consulted for protected routes).
func RouteRoles(path string) []tenantflow.Role {
	for prefix, roles := range routeRoles {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return roles
		}
	}
	return nil
}

// NavItem is one per-role navigation entry (the sidebar of a UI
// embedding the SDK).
type NavItem struct {
	Name string
	Href string
}

// NavItems returns the navigation entries for a role, in display
// order. Unknown roles get none.
func NavItems(role tenantflow.Role) []NavItem {
	switch role {
	case tenantflow.RoleOwner:
		return []NavItem{
			{Name: "Dashboard", Href: "/owner/dashboard"},
			{Name: "Properties", Href: "/owner/properties"},
			{Name: "Bookings", Href: "/owner/bookings"},
			{Name: "Complaints", Href: "/owner/complaints"},
			{Name: "Tenants", Href: "/owner/tenants"},
		}
	case tenantflow.RoleTenant:
		return []NavItem{
			{Name: "Dashboard", Href: "/tenant/dashboard"},
			{Name: "Search Rooms", Href: "/tenant/search"},
			{Name: "My Bookings", Href: "/tenant/bookings"},
			{Name: "Complaints", Href: "/tenant/complaints"},
			{Name: "Profile", Href: "/tenant/profile"},
		}
	case tenantflow.RoleAdmin:
		return []NavItem{
			{Name: "Dashboard", Href: "/admin/dashboard"},
			{Name: "Users", Href: "/admin/users"},
			{Name: "Bookings", Href: "/admin/bookings"},
			{Name: "Complaints", Href: "/admin/complaints"},
			{Name: "Settings", Href: "/admin/settings"},
		}
	}
	return nil
}

// HomeRoute returns the post-login landing route for a role.
func HomeRoute(role tenantflow.Role) string {
	switch role {
	case tenantflow.RoleOwner:
		return "/owner/dashboard"
	case tenantflow.RoleTenant:
		return "/tenant/dashboard"
	case tenantflow.RoleAdmin:
		return "/admin/dashboard"
	}
	return LoginRoute
}
