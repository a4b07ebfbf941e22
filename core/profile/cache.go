// Package profile materializes the users and subjects collections into
// process-local lookup snapshots for the session synchronizer and the
// lifecycle controller.
package profile

import (
	"context"
	"sync"

	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

// Snapshot is one consistent materialization of both collections. It is
// replaced wholesale on every upstream notification; readers never see a
// part-old/part-new table.
type Snapshot struct {
	Users    []user.User
	Subjects []subject.Subject

	usersByID    map[string]user.User
	subjectsByID map[string]subject.Subject
	ready        bool
}

// Ready reports whether both source collections have been received at
// least once and the user table is non-empty. The synchronizer must not
// join against a snapshot that is not ready.
func (s Snapshot) Ready() bool {
	return s.ready && len(s.Users) > 0
}

func (s Snapshot) UserByID(id string) (user.User, bool) {
	usr, ok := s.usersByID[id]
	return usr, ok
}

func (s Snapshot) SubjectByID(id string) (subject.Subject, bool) {
	sub, ok := s.subjectsByID[id]
	return sub, ok
}

func (s Snapshot) Tutors() []user.User {
	tutors := make([]user.User, 0, len(s.Users))
	for _, usr := range s.Users {
		if usr.IsTutor() {
			tutors = append(tutors, usr)
		}
	}
	return tutors
}

// Cache consumes the users and subjects watch channels and keeps the
// latest Snapshot. A coalesced copy of every new snapshot is pushed on
// Updates for downstream recomputation.
type Cache struct {
	users    <-chan []user.User
	subjects <-chan []subject.Subject
	updates  chan Snapshot

	mu           sync.RWMutex
	snap         Snapshot
	haveUsers    bool
	haveSubjects bool
}

func NewCache(users <-chan []user.User, subjects <-chan []subject.Subject) *Cache {
	return &Cache{
		users:    users,
		subjects: subjects,
		updates:  make(chan Snapshot, 1),
	}
}

// Run consumes both watch channels until ctx is cancelled. It is the only
// writer of the snapshot.
func (c *Cache) Run(ctx context.Context) {
	var users []user.User
	var subjects []subject.Subject
	for {
		select {
		case <-ctx.Done():
			return
		case us, ok := <-c.users:
			if !ok {
				return
			}
			users = us
			c.mu.Lock()
			c.haveUsers = true
			c.mu.Unlock()
		case subs, ok := <-c.subjects:
			if !ok {
				return
			}
			subjects = subs
			c.mu.Lock()
			c.haveSubjects = true
			c.mu.Unlock()
		}
		c.replace(users, subjects)
	}
}

// replace builds a fresh snapshot and swaps it in atomically.
func (c *Cache) replace(users []user.User, subjects []subject.Subject) {
	snap := Snapshot{
		Users:        users,
		Subjects:     subjects,
		usersByID:    make(map[string]user.User, len(users)),
		subjectsByID: make(map[string]subject.Subject, len(subjects)),
	}
	for _, usr := range users {
		snap.usersByID[usr.ID] = usr
	}
	for _, sub := range subjects {
		snap.subjectsByID[sub.ID] = sub
	}

	c.mu.Lock()
	snap.ready = c.haveUsers && c.haveSubjects
	c.snap = snap
	c.mu.Unlock()

	c.publish(snap)
}

// publish pushes the snapshot with latest-wins coalescing so a slow
// consumer only ever lags by one notification.
func (c *Cache) publish(snap Snapshot) {
	for {
		select {
		case c.updates <- snap:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

// Updates ticks with the latest snapshot after every upstream change.
func (c *Cache) Updates() <-chan Snapshot {
	return c.updates
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) AllUsers() []user.User {
	return c.Snapshot().Users
}

func (c *Cache) AllTutors() []user.User {
	return c.Snapshot().Tutors()
}

func (c *Cache) AllSubjects() []subject.Subject {
	return c.Snapshot().Subjects
}

// Clear drops the snapshot; called on logout so no per-user data survives
// the identity boundary.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.snap = Snapshot{}
	c.haveUsers = false
	c.haveSubjects = false
	c.mu.Unlock()
}
