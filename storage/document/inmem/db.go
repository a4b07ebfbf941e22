// Package inmemdb is an in-memory document store backend with
// subscribe-for-changes semantics. It backs tests and local development.
package inmemdb

import (
	"context"
	"sync"

	"github.com/tutorlink/backend/core/session"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

type DB struct {
	mu       sync.RWMutex
	users    map[string]*user.User
	subjects map[string]*subject.Subject
	sessions map[string]*session.Record

	userWatchers    []chan []user.User
	subjectWatchers []chan []subject.Subject
	sessionWatchers []chan []session.Record
}

func NewDB() *DB {
	return &DB{
		users:    make(map[string]*user.User),
		subjects: make(map[string]*subject.Subject),
		sessions: make(map[string]*session.Record),
	}
}

// send delivers a snapshot with latest-wins coalescing: a watcher that is
// not keeping up only ever lags by one notification.
func send(ch chan []user.User, snap []user.User) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func sendSubjects(ch chan []subject.Subject, snap []subject.Subject) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

func sendSessions(ch chan []session.Record, snap []session.Record) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// WatchUsers registers a watcher; the current snapshot is pushed
// immediately, then again on every users change. The initial snapshot is
// delivered under the lock (send never blocks) so a concurrent write
// cannot slip a newer snapshot in first and have it overwritten.
func (db *DB) WatchUsers(ctx context.Context) (<-chan []user.User, error) {
	ch := make(chan []user.User, 1)
	db.mu.Lock()
	db.userWatchers = append(db.userWatchers, ch)
	send(ch, db.userSnapshot())
	db.mu.Unlock()
	go func() {
		<-ctx.Done()
		db.mu.Lock()
		defer db.mu.Unlock()
		for i, w := range db.userWatchers {
			if w == ch {
				db.userWatchers = append(db.userWatchers[:i], db.userWatchers[i+1:]...)
				break
			}
		}
	}()
	return ch, nil
}

func (db *DB) WatchSubjects(ctx context.Context) (<-chan []subject.Subject, error) {
	ch := make(chan []subject.Subject, 1)
	db.mu.Lock()
	db.subjectWatchers = append(db.subjectWatchers, ch)
	sendSubjects(ch, db.subjectSnapshot())
	db.mu.Unlock()
	go func() {
		<-ctx.Done()
		db.mu.Lock()
		defer db.mu.Unlock()
		for i, w := range db.subjectWatchers {
			if w == ch {
				db.subjectWatchers = append(db.subjectWatchers[:i], db.subjectWatchers[i+1:]...)
				break
			}
		}
	}()
	return ch, nil
}

func (db *DB) WatchSessions(ctx context.Context) (<-chan []session.Record, error) {
	ch := make(chan []session.Record, 1)
	db.mu.Lock()
	db.sessionWatchers = append(db.sessionWatchers, ch)
	sendSessions(ch, db.sessionSnapshot())
	db.mu.Unlock()
	go func() {
		<-ctx.Done()
		db.mu.Lock()
		defer db.mu.Unlock()
		for i, w := range db.sessionWatchers {
			if w == ch {
				db.sessionWatchers = append(db.sessionWatchers[:i], db.sessionWatchers[i+1:]...)
				break
			}
		}
	}()
	return ch, nil
}

// notify fans a fresh snapshot out to the collection's watchers. Must be
// called with db.mu held.
func (db *DB) notifyUsers() {
	snap := db.userSnapshot()
	for _, ch := range db.userWatchers {
		send(ch, snap)
	}
}

func (db *DB) notifySubjects() {
	snap := db.subjectSnapshot()
	for _, ch := range db.subjectWatchers {
		sendSubjects(ch, snap)
	}
}

func (db *DB) notifySessions() {
	snap := db.sessionSnapshot()
	for _, ch := range db.sessionWatchers {
		sendSessions(ch, snap)
	}
}

func (db *DB) userSnapshot() []user.User {
	users := make([]user.User, 0, len(db.users))
	for _, u := range db.users {
		users = append(users, cloneUser(*u))
	}
	return users
}

func (db *DB) subjectSnapshot() []subject.Subject {
	subjects := make([]subject.Subject, 0, len(db.subjects))
	for _, s := range db.subjects {
		subjects = append(subjects, *s)
	}
	return subjects
}

func (db *DB) sessionSnapshot() []session.Record {
	sessions := make([]session.Record, 0, len(db.sessions))
	for _, s := range db.sessions {
		sessions = append(sessions, cloneSession(*s))
	}
	return sessions
}

// cloneUser copies the record so watchers cannot mutate store state.
func cloneUser(u user.User) user.User {
	if u.SubjectIDs != nil {
		u.SubjectIDs = append([]string(nil), u.SubjectIDs...)
	}
	if u.PasswordHash != nil {
		u.PasswordHash = append([]byte(nil), u.PasswordHash...)
	}
	return u
}

func cloneSession(rec session.Record) session.Record {
	if rec.Personal != nil {
		p := *rec.Personal
		rec.Personal = &p
	}
	if rec.Global != nil {
		g := *rec.Global
		g.AttendeeIDs = append([]string(nil), g.AttendeeIDs...)
		rec.Global = &g
	}
	if rec.Materials != nil {
		rec.Materials = append([]session.Material(nil), rec.Materials...)
	}
	return rec
}
