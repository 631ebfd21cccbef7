package access

import (
	"strings"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

const (
	// LoginPath is the reserved login view.
	LoginPath = "/login"
	// DefaultPath is the reserved default authenticated view.
	DefaultPath = "/dashboard"
)

// Route is a named view. Unprotected routes render for everyone unless they
// are GuestOnly, in which case signed-in users are sent to DefaultPath.
type Route struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	Protected    bool        `json:"protected"`
	RequiredRole domain.Role `json:"requiredRole,omitempty"`
	GuestOnly    bool        `json:"guestOnly,omitempty"`
	// Menu marks routes shown in the dashboard navigation.
	Menu bool `json:"-"`
}

// DefaultRoutes is the view table of the web client, in menu order.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Path: "/"},
		{Name: "login", Path: LoginPath, GuestOnly: true},
		{Name: "register", Path: "/register", GuestOnly: true},
		{Name: "dashboard", Path: DefaultPath, Protected: true, Menu: true},
		{Name: "creator-dashboard", Path: "/creator/dashboard", Protected: true, RequiredRole: domain.RoleCreator},
		{Name: "sponsorships", Path: "/sponsorships", Protected: true, RequiredRole: domain.RoleCreator, Menu: true},
		{Name: "brand-dashboard", Path: "/brand/dashboard", Protected: true, RequiredRole: domain.RoleBrand},
		{Name: "creators", Path: "/creators", Protected: true, RequiredRole: domain.RoleBrand, Menu: true},
		{Name: "campaigns", Path: "/campaigns", Protected: true, RequiredRole: domain.RoleBrand, Menu: true},
		{Name: "billing", Path: "/billing", Protected: true, Menu: true},
		{Name: "settings", Path: "/settings", Protected: true, Menu: true},
	}
}

// Gate applies Decide to a route table.
type Gate struct {
	routes []Route
	byPath map[string]Route
}

func NewGate(routes []Route) *Gate {
	g := &Gate{routes: routes, byPath: make(map[string]Route, len(routes))}
	for _, r := range routes {
		g.byPath[normalize(r.Path)] = r
	}
	return g
}

// Lookup finds the route registered for path.
func (g *Gate) Lookup(path string) (Route, bool) {
	r, ok := g.byPath[normalize(path)]
	return r, ok
}

// Evaluate returns the decision for a route and, for redirects, the target
// path.
func (g *Gate) Evaluate(s domain.SessionSnapshot, r Route) (Decision, string) {
	var d Decision
	switch {
	case r.Protected:
		d = Decide(s, r.RequiredRole)
	case r.GuestOnly:
		switch {
		case !s.State.Settled():
			d = Wait
		case s.Authenticated():
			d = RedirectToDefault
		default:
			d = Render
		}
	default:
		d = Render
	}
	return d, Target(d)
}

// Navigation lists the menu routes the session may open, in table order.
func (g *Gate) Navigation(s domain.SessionSnapshot) []Route {
	var out []Route
	for _, r := range g.routes {
		if !r.Menu {
			continue
		}
		if d, _ := g.Evaluate(s, r); d == Render {
			out = append(out, r)
		}
	}
	return out
}

// Target maps redirect decisions to their reserved path.
func Target(d Decision) string {
	switch d {
	case RedirectToLogin:
		return LoginPath
	case RedirectToDefault:
		return DefaultPath
	default:
		return ""
	}
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
