// Package auth holds the identity-provider contract consumed by the core
// and the authorization gate protecting its views.
package auth

import "github.com/tutorlink/backend/core/user"

// Provider is the external identity provider: it authenticates
// principals, keeps the current identity, and emits change events.
// Its credential internals (hashing, token issuance) are not part of
// this contract.
type Provider interface {
	// Ready is closed exactly once, when the initial identity state
	// becomes known. Before that, presence is meaningless.
	Ready() <-chan struct{}
	// Current returns the present identity; ok is false when absent.
	Current() (usr user.User, ok bool)
	// OnChange registers a callback invoked with every identity change;
	// usr is nil when the identity becomes absent (logout).
	OnChange(fn func(usr *user.User))
}
