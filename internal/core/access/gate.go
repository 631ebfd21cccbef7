// Package access decides what a requested view gets for the current session:
// its content, a redirect, or a neutral waiting indicator while the session
// is still loading. All role checks for views go through Decide.
package access

import "github.com/sponsormatch/matchbot/internal/core/domain"

// Decision is the closed set of gate outcomes.
type Decision int

const (
	// Wait means the session has not settled yet; show a neutral indicator
	// and neither render protected content nor redirect.
	Wait Decision = iota
	Render
	RedirectToLogin
	RedirectToDefault
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToDefault:
		return "redirect_default"
	default:
		return "unknown"
	}
}

// Decide is the gate for a protected view. required == "" means any
// authenticated role may see it.
func Decide(s domain.SessionSnapshot, required domain.Role) Decision {
	if !s.State.Settled() {
		return Wait
	}
	if !s.Authenticated() {
		return RedirectToLogin
	}
	if required != "" && s.Profile.Role != required {
		return RedirectToDefault
	}
	return Render
}
