package auth

import "context"

// Decision is the outcome of an entry check: either entry is allowed, or
// the caller is told where to redirect.
type Decision struct {
	Allow      bool   `json:"allow"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// Gate decides whether a protected view may be entered. It only checks
// identity presence; role-specific views are a rendering concern.
type Gate struct {
	provider   Provider
	loginRoute string
}

func NewGate(provider Provider, loginRoute string) *Gate {
	return &Gate{provider: provider, loginRoute: loginRoute}
}

// CanEnter suspends until identity readiness becomes known, then allows
// entry if an identity is present, or redirects to the login route. The
// wait is abandoned when ctx is cancelled.
func (g *Gate) CanEnter(ctx context.Context, route string) (Decision, error) {
	select {
	case <-g.provider.Ready():
	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
	if _, ok := g.provider.Current(); ok {
		return Decision{Allow: true}, nil
	}
	return Decision{RedirectTo: g.loginRoute}, nil
}
