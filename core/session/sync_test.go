package session

import (
	"context"
	"testing"
	"time"

	"github.com/tutorlink/backend/core/profile"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

type syncFixture struct {
	users    chan []user.User
	subjects chan []subject.Subject
	sessions chan []Record
	sync     *Synchronizer
	cancel   context.CancelFunc
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		users:    make(chan []user.User, 1),
		subjects: make(chan []subject.Subject, 1),
		sessions: make(chan []Record, 1),
	}
	cache := profile.NewCache(f.users, f.subjects)
	f.sync = NewSynchronizer(cache.Updates(), f.sessions, nil)

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	t.Cleanup(cancel)
	go cache.Run(ctx)
	go f.sync.Run(ctx)
	return f
}

// waitForViews polls until the published set has n views or the deadline
// passes.
func (f *syncFixture) waitForViews(t *testing.T, n int) []View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if views := f.sync.AllSessions(); len(views) == n {
			return views
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d views, have %d", n, len(f.sync.AllSessions()))
	return nil
}

var (
	syncTutor   = user.User{ID: "tut1", Name: "Alan Turing", Role: user.RoleTutor}
	syncStudent = user.User{ID: "stu1", Name: "Ada Lovelace", Role: user.RoleStudent}
	syncSubject = subject.Subject{ID: "cs101", Name: "Intro to Programming"}
)

func personalRecord(id string) Record {
	return Record{
		ID:        id,
		Personal:  &PersonalDetails{StudentID: syncStudent.ID, StudentName: syncStudent.Name},
		TutorID:   syncTutor.ID,
		SubjectID: syncSubject.ID,
		Status:    StatusPending,
	}
}

func TestSynchronizerJoinsResolvedRecords(t *testing.T) {
	f := newSyncFixture(t)
	f.users <- []user.User{syncTutor, syncStudent}
	f.subjects <- []subject.Subject{syncSubject}
	f.sessions <- []Record{personalRecord("s1")}

	views := f.waitForViews(t, 1)
	v := views[0]
	if v.Tutor.ID != syncTutor.ID || v.Subject.ID != syncSubject.ID {
		t.Errorf("unexpected join: tutor %q subject %q", v.Tutor.ID, v.Subject.ID)
	}
	if v.Student == nil || v.Student.ID != syncStudent.ID {
		t.Errorf("student not resolved: %+v", v.Student)
	}
}

func TestSynchronizerNeverPublishesDanglingReferences(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{name: "unknown tutor", rec: Record{ID: "s1", TutorID: "ghost", SubjectID: syncSubject.ID}},
		{name: "unknown subject", rec: Record{ID: "s1", TutorID: syncTutor.ID, SubjectID: "ghost"}},
		{
			name: "unknown student",
			rec: Record{
				ID:        "s1",
				Personal:  &PersonalDetails{StudentID: "ghost"},
				TutorID:   syncTutor.ID,
				SubjectID: syncSubject.ID,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t)
			f.users <- []user.User{syncTutor, syncStudent}
			f.subjects <- []subject.Subject{syncSubject}
			// a resolvable record proves the tick ran; the dangling one
			// must be excluded from the published set.
			f.sessions <- []Record{tt.rec, personalRecord("ok")}

			views := f.waitForViews(t, 1)
			if views[0].ID != "ok" {
				t.Errorf("published view %q, want %q", views[0].ID, "ok")
			}
		})
	}
}

func TestSynchronizerDropsUnresolvedAttendees(t *testing.T) {
	f := newSyncFixture(t)
	f.users <- []user.User{syncTutor, syncStudent}
	f.subjects <- []subject.Subject{syncSubject}
	f.sessions <- []Record{{
		ID:        "g1",
		Global:    &GlobalDetails{CreatedBy: "coord1", AttendeeIDs: []string{syncStudent.ID, "ghost"}, MaxAttendees: 5},
		TutorID:   syncTutor.ID,
		SubjectID: syncSubject.ID,
	}}

	views := f.waitForViews(t, 1)
	if len(views[0].Attendees) != 1 || views[0].Attendees[0].ID != syncStudent.ID {
		t.Errorf("attendees = %+v, want only %q", views[0].Attendees, syncStudent.ID)
	}
	// the raw attendee set is untouched; only the view is smaller
	if len(views[0].Global.AttendeeIDs) != 2 {
		t.Errorf("raw attendee ids = %v, want 2 entries", views[0].Global.AttendeeIDs)
	}
}

func TestSynchronizerOrderIndependence(t *testing.T) {
	f := newSyncFixture(t)
	// sessions arrive before the profile collections
	f.sessions <- []Record{personalRecord("s1")}
	time.Sleep(50 * time.Millisecond)
	if views := f.sync.AllSessions(); len(views) != 0 {
		t.Fatalf("published %d views before the profile snapshot was usable", len(views))
	}

	f.users <- []user.User{syncTutor, syncStudent}
	f.subjects <- []subject.Subject{syncSubject}
	f.waitForViews(t, 1)
}

func TestSynchronizerKeepsPreviousViewsWhenSnapshotNotReady(t *testing.T) {
	f := newSyncFixture(t)
	f.users <- []user.User{syncTutor, syncStudent}
	f.subjects <- []subject.Subject{syncSubject}
	f.sessions <- []Record{personalRecord("s1")}
	f.waitForViews(t, 1)

	// an empty user table means the snapshot is no longer usable; the
	// previously published set must survive the tick untouched
	f.users <- []user.User{}
	time.Sleep(50 * time.Millisecond)
	if views := f.sync.AllSessions(); len(views) != 1 {
		t.Errorf("views = %d, want previous set retained", len(views))
	}
}

func TestSynchronizerClear(t *testing.T) {
	f := newSyncFixture(t)
	f.users <- []user.User{syncTutor, syncStudent}
	f.subjects <- []subject.Subject{syncSubject}
	f.sessions <- []Record{personalRecord("s1")}
	f.waitForViews(t, 1)

	f.cancel()
	f.sync.Clear()
	if views := f.sync.AllSessions(); views != nil {
		t.Errorf("views = %+v, want nil after Clear", views)
	}
}
