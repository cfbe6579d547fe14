// Package gate makes route-level access decisions from session state.
//
// Decide is a pure function of (session snapshot, allowed roles); it
// holds no state of its own and must be re-evaluated on every session
// change and every route change. Guard does exactly that on top of a
// session.Manager subscription.
package gate

import (
	tenantflow "github.com/tenantflow/tenantflow-go"
	"github.com/tenantflow/tenantflow-go/session"
)

// Outcome is the kind of decision the gate produced.
type Outcome int

const (
	// Loading: initialization has not resolved; render a placeholder,
	// never a redirect.
	Loading Outcome = iota

	// RedirectToLogin: no identity; go to the login page, preserving
	// the originally requested route for a best-effort return.
	RedirectToLogin

	// RedirectToUnauthorized: authenticated, but the role is not in
	// the route's allow-list.
	RedirectToUnauthorized

	// VerificationPending: owner awaiting review; terminal
	// interstitial, no redirect (a redirect here would loop).
	VerificationPending

	// VerificationRejected: owner rejected by review; terminal
	// interstitial distinct from the pending one.
	VerificationRejected

	// Grant: render the protected content.
	Grant
)

// String returns the outcome name for logs and tests.
func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToUnauthorized:
		return "redirect-to-unauthorized"
	case VerificationPending:
		return "verification-pending"
	case VerificationRejected:
		return "verification-rejected"
	case Grant:
		return "grant"
	}
	return "unknown"
}

// Well-known routes the gate redirects to.
const (
	LoginRoute        = "/auth/login"
	UnauthorizedRoute = "/unauthorized"
)

// Decision is the gate's verdict for one route evaluation.
type Decision struct {
	Outcome Outcome

	// Target is the redirect destination for the redirect outcomes.
	Target string

	// From is the originally requested route, preserved on a login
	// redirect so the login flow can return there (best-effort).
	From string
}

// Decide evaluates the access rules for a route in order, first match
// wins:
//
//  1. session still initializing       -> Loading
//  2. no identity                      -> RedirectToLogin
//  3. role not in non-empty allow-list -> RedirectToUnauthorized
//  4. owner pending verification       -> VerificationPending
//  5. owner rejected                   -> VerificationRejected
//  6. otherwise                        -> Grant
//
// An empty allowed set admits any authenticated role. route is only
// recorded in the decision; it does not influence the verdict.
func Decide(snap session.Snapshot, allowed []tenantflow.Role, route string) Decision {
	if snap.Status == session.StatusInitializing {
		return Decision{Outcome: Loading, From: route}
	}

	if snap.User == nil {
		return Decision{Outcome: RedirectToLogin, Target: LoginRoute, From: route}
	}

	if len(allowed) > 0 && !roleAllowed(snap.User.Role, allowed) {
		return Decision{Outcome: RedirectToUnauthorized, Target: UnauthorizedRoute, From: route}
	}

	if snap.User.Role == tenantflow.RoleOwner {
		switch snap.User.VerificationStatus {
		case tenantflow.VerificationPending:
			return Decision{Outcome: VerificationPending, From: route}
		case tenantflow.VerificationRejected:
			return Decision{Outcome: VerificationRejected, From: route}
		}
	}

	return Decision{Outcome: Grant, From: route}
}

func roleAllowed(role tenantflow.Role, allowed []tenantflow.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// Guard re-evaluates a route on every session transition and on every
// navigation, pushing each Decision to the registered callback.
type Guard struct {
	mgr     *session.Manager
	decide  func(Decision)
	unsub   func()
	route   string
	allowed []tenantflow.Role
}

// NewGuard creates a guard for the given route and allow-list. The
// callback fires immediately with the decision for the current state,
// then again on every session change. Release with Close.
func NewGuard(mgr *session.Manager, route string, allowed []tenantflow.Role, onDecision func(Decision)) *Guard {
	g := &Guard{
		mgr:     mgr,
		decide:  onDecision,
		route:   route,
		allowed: allowed,
	}
	g.unsub = mgr.Subscribe(func(ev session.Event) {
		g.decide(Decide(ev.Snapshot, g.allowed, g.route))
	})
	g.decide(Decide(mgr.Snapshot(), g.allowed, g.route))
	return g
}

// Visit re-evaluates for a route change, using the route's registered
// allow-list.
func (g *Guard) Visit(route string) Decision {
	g.route = route
	g.allowed = RouteRoles(route)
	d := Decide(g.mgr.Snapshot(), g.allowed, g.route)
	g.decide(d)
	return d
}

// Close removes the session subscription.
func (g *Guard) Close() {
	g.unsub()
}
