// Package app wires the identity provider, the profile cache and the
// session synchronizer into one process-scoped runtime. Components are
// started when an identity becomes present and torn down, snapshots
// cleared, when it becomes absent.
package app

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/auth"
	"github.com/tutorlink/backend/core/profile"
	"github.com/tutorlink/backend/core/session"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

// App owns the live views. It exposes the four published sequences and
// satisfies session.Directory for the lifecycle controller's reference
// checks.
type App struct {
	provider auth.Provider
	users    user.Repository
	subjects subject.Repository
	sessions session.Repository
	log      core.Logger

	mu     sync.Mutex
	cache  *profile.Cache
	sync   *session.Synchronizer
	cancel context.CancelFunc
}

func New(provider auth.Provider, users user.Repository, subjects subject.Repository, sessions session.Repository, log core.Logger) *App {
	return &App{
		provider: provider,
		users:    users,
		subjects: subjects,
		sessions: sessions,
		log:      log,
	}
}

// Bind subscribes the runtime to identity changes. Teardown of a previous
// identity always completes before the next identity's subscriptions are
// established; per-user data never crosses the identity boundary.
func (a *App) Bind(ctx context.Context) {
	a.provider.OnChange(func(usr *user.User) {
		a.stop()
		if usr != nil {
			if err := a.start(ctx); err != nil {
				a.log.Error("starting data synchronization", err)
			}
		}
	})
	if _, ok := a.provider.Current(); ok {
		if err := a.start(ctx); err != nil {
			a.log.Error("starting data synchronization", err)
		}
	}
}

func (a *App) start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	usersCh, err := a.users.WatchUsers(runCtx)
	if err != nil {
		cancel()
		return errors.Wrap(err, "watching users")
	}
	subjectsCh, err := a.subjects.WatchSubjects(runCtx)
	if err != nil {
		cancel()
		return errors.Wrap(err, "watching subjects")
	}
	sessionsCh, err := a.sessions.WatchSessions(runCtx)
	if err != nil {
		cancel()
		return errors.Wrap(err, "watching sessions")
	}

	cache := profile.NewCache(usersCh, subjectsCh)
	synchronizer := session.NewSynchronizer(cache.Updates(), sessionsCh, a.log)
	go cache.Run(runCtx)
	go synchronizer.Run(runCtx)

	a.cache = cache
	a.sync = synchronizer
	a.cancel = cancel
	return nil
}

func (a *App) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.cache.Clear()
	a.sync.Clear()
	a.cache = nil
	a.sync = nil
	a.cancel = nil
}

// Snapshot returns the latest profile snapshot, or a zero (not ready)
// snapshot when no identity is present.
func (a *App) Snapshot() profile.Snapshot {
	a.mu.Lock()
	cache := a.cache
	a.mu.Unlock()
	if cache == nil {
		return profile.Snapshot{}
	}
	return cache.Snapshot()
}

func (a *App) AllUsers() []user.User {
	return a.Snapshot().Users
}

func (a *App) AllTutors() []user.User {
	return a.Snapshot().Tutors()
}

func (a *App) AllSubjects() []subject.Subject {
	return a.Snapshot().Subjects
}

func (a *App) AllSessions() session.Views {
	a.mu.Lock()
	synchronizer := a.sync
	a.mu.Unlock()
	if synchronizer == nil {
		return nil
	}
	return synchronizer.AllSessions()
}
