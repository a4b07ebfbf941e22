// Package identitysvc implements the identity provider against the
// document store's users collection: account registration, credential
// checks, and current-identity change events.
package identitysvc

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/auth"
	"github.com/tutorlink/backend/core/user"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

type Service struct {
	users user.Repository
	log   core.Logger

	mu      sync.Mutex
	current *user.User
	subs    []func(*user.User)

	ready     chan struct{}
	readyOnce sync.Once
}

var _ auth.Provider = (*Service)(nil)

func NewService(users user.Repository, log core.Logger) *Service {
	return &Service{
		users: users,
		log:   log,
		ready: make(chan struct{}),
	}
}

// Start publishes the initial identity state: the process starts with no
// identity present, and readiness becomes known at that point. Callers
// waiting on Ready are released here at the latest.
func (svc *Service) Start(ctx context.Context) {
	svc.markReady()
}

// Register creates an account and its profile document, then makes the
// new identity current (registration signs the principal in).
func (svc *Service) Register(ctx context.Context, na user.NewAccount) (user.User, error) {
	now := time.Now().UTC()
	usr := user.User{
		Name:          na.Name,
		Email:         na.Email,
		Username:      na.Username,
		AccountNumber: na.AccountNumber,
		Role:          na.Role,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(na.Password); err != nil {
		return user.User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.users.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == user.ErrEmailExists {
			return user.User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	svc.setCurrent(&usr)
	return usr, nil
}

// Login authenticates by email and password and makes the identity
// current on success.
func (svc *Service) Login(ctx context.Context, email, pwd string) (user.User, error) {
	usr, err := svc.users.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrAuthenticationFailed
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return user.User{}, ErrAuthenticationFailed
	}
	if usr, err = svc.users.SetLastLogin(ctx, usr); err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	svc.setCurrent(&usr)
	return usr, nil
}

// Logout makes the identity absent.
func (svc *Service) Logout() {
	svc.setCurrent(nil)
}

func (svc *Service) Current() (user.User, bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.current == nil {
		return user.User{}, false
	}
	return *svc.current, true
}

func (svc *Service) Ready() <-chan struct{} {
	return svc.ready
}

func (svc *Service) OnChange(fn func(usr *user.User)) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.subs = append(svc.subs, fn)
}

// setCurrent swaps the identity and fires the change callbacks serially,
// so a subscriber's teardown for the old identity completes before any
// work for the new one begins.
func (svc *Service) setCurrent(usr *user.User) {
	svc.mu.Lock()
	svc.current = usr
	subs := append(([]func(*user.User))(nil), svc.subs...)
	svc.mu.Unlock()

	svc.markReady()
	for _, fn := range subs {
		fn(usr)
	}
}

func (svc *Service) markReady() {
	svc.readyOnce.Do(func() { close(svc.ready) })
}
