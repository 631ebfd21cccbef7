package domain

// SessionState is the lifecycle position of the process-wide session.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads and log fields.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Settled reports whether the initial load has completed, i.e. a gate
// decision based on this state can be trusted.
func (s SessionState) Settled() bool {
	return s == StateAnonymous || s == StateAuthenticated
}

// SessionSnapshot is an immutable view of the session at one point in time.
// Profile is a private deep copy; mutating it has no effect on the session.
type SessionSnapshot struct {
	State   SessionState `json:"state"`
	Profile *UserProfile `json:"profile,omitempty"`
	Busy    bool         `json:"busy"`
	// Version increases by one on every published transition.
	Version uint64 `json:"version"`
}

// Authenticated reports whether the snapshot carries an active identity.
func (s SessionSnapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.Profile != nil
}
