package profile

import (
	"context"
	"testing"
	"time"

	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

type cacheFixture struct {
	users    chan []user.User
	subjects chan []subject.Subject
	cache    *Cache
}

func newCacheFixture(t *testing.T) *cacheFixture {
	t.Helper()
	f := &cacheFixture{
		users:    make(chan []user.User, 1),
		subjects: make(chan []subject.Subject, 1),
	}
	f.cache = NewCache(f.users, f.subjects)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.cache.Run(ctx)
	return f
}

func (f *cacheFixture) waitFor(t *testing.T, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if snap := f.cache.Snapshot(); cond(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for snapshot, have %+v", f.cache.Snapshot())
	return Snapshot{}
}

var (
	tutor = user.User{ID: "tut1", Name: "Alan Turing", Role: user.RoleTutor}
	stud  = user.User{ID: "stu1", Name: "Ada Lovelace", Role: user.RoleStudent}
	cs101 = subject.Subject{ID: "cs101", Name: "Intro to Programming"}
)

func TestCacheReadiness(t *testing.T) {
	f := newCacheFixture(t)

	if f.cache.Snapshot().Ready() {
		t.Error("zero snapshot must not be ready")
	}

	// one collection alone is not enough
	f.users <- []user.User{tutor}
	f.waitFor(t, func(s Snapshot) bool { return len(s.Users) == 1 })
	if f.cache.Snapshot().Ready() {
		t.Error("snapshot ready before both collections were received")
	}

	f.subjects <- []subject.Subject{cs101}
	f.waitFor(t, func(s Snapshot) bool { return s.Ready() })
}

func TestCacheEmptyUsersIsNotReady(t *testing.T) {
	f := newCacheFixture(t)
	f.users <- []user.User{}
	f.subjects <- []subject.Subject{cs101}

	f.waitFor(t, func(s Snapshot) bool { return len(s.Subjects) == 1 })
	// both collections received, but an empty user table cannot back a join
	if f.cache.Snapshot().Ready() {
		t.Error("snapshot with no users must not be ready")
	}

	f.users <- []user.User{tutor}
	f.waitFor(t, func(s Snapshot) bool { return s.Ready() })
}

func TestCacheReplacesWholesale(t *testing.T) {
	f := newCacheFixture(t)
	f.users <- []user.User{tutor, stud}
	f.subjects <- []subject.Subject{cs101}
	f.waitFor(t, func(s Snapshot) bool { return len(s.Users) == 2 })

	// a new users notification replaces the table, it does not merge
	f.users <- []user.User{stud}
	snap := f.waitFor(t, func(s Snapshot) bool { return len(s.Users) == 1 })
	if _, ok := snap.UserByID(tutor.ID); ok {
		t.Error("stale user survived the snapshot replacement")
	}
	if _, ok := snap.UserByID(stud.ID); !ok {
		t.Error("fresh user missing from the snapshot")
	}
}

func TestCacheLookupsAndTutors(t *testing.T) {
	f := newCacheFixture(t)
	f.users <- []user.User{tutor, stud}
	f.subjects <- []subject.Subject{cs101}
	snap := f.waitFor(t, func(s Snapshot) bool { return s.Ready() })

	if usr, ok := snap.UserByID("stu1"); !ok || usr.Name != stud.Name {
		t.Errorf("UserByID(stu1) = %+v, %v", usr, ok)
	}
	if _, ok := snap.UserByID("ghost"); ok {
		t.Error("UserByID(ghost) resolved")
	}
	if sub, ok := snap.SubjectByID("cs101"); !ok || sub.Name != cs101.Name {
		t.Errorf("SubjectByID(cs101) = %+v, %v", sub, ok)
	}

	tutors := f.cache.AllTutors()
	if len(tutors) != 1 || tutors[0].ID != tutor.ID {
		t.Errorf("AllTutors() = %+v, want only %q", tutors, tutor.ID)
	}
}

func TestCacheUpdatesCoalesce(t *testing.T) {
	f := newCacheFixture(t)
	f.users <- []user.User{tutor}
	f.subjects <- []subject.Subject{cs101}
	f.waitFor(t, func(s Snapshot) bool { return s.Ready() })

	// nobody drains Updates; a burst of changes must not block the cache
	for i := 0; i < 10; i++ {
		f.users <- []user.User{tutor, stud}
		f.waitFor(t, func(s Snapshot) bool { return len(s.Users) == 2 })
		f.users <- []user.User{tutor}
		f.waitFor(t, func(s Snapshot) bool { return len(s.Users) == 1 })
	}

	// the subscriber sees the latest snapshot, not the backlog
	select {
	case snap := <-f.cache.Updates():
		if len(snap.Users) != 1 {
			t.Errorf("coalesced snapshot has %d users, want the latest (1)", len(snap.Users))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestCacheClear(t *testing.T) {
	f := newCacheFixture(t)
	f.users <- []user.User{tutor}
	f.subjects <- []subject.Subject{cs101}
	f.waitFor(t, func(s Snapshot) bool { return s.Ready() })

	f.cache.Clear()
	snap := f.cache.Snapshot()
	if snap.Ready() || len(snap.Users) != 0 || len(snap.Subjects) != 0 {
		t.Errorf("snapshot after Clear = %+v, want zero", snap)
	}
}
