package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/profile"
	"github.com/tutorlink/backend/core/user"
)

// Synchronizer keeps the live joined session views. On every raw session
// notification or profile snapshot change it recomputes the full joined
// set from scratch and publishes it as one atomic replacement; it never
// patches a previously published view in place.
type Synchronizer struct {
	profiles <-chan profile.Snapshot
	sessions <-chan []Record
	log      core.Logger

	mu    sync.RWMutex
	views []View
}

func NewSynchronizer(profiles <-chan profile.Snapshot, sessions <-chan []Record, log core.Logger) *Synchronizer {
	return &Synchronizer{
		profiles: profiles,
		sessions: sessions,
		log:      log,
	}
}

// Run recomputes on every dependency tick until ctx is cancelled. There
// is no ordering guarantee between the users/subjects and sessions
// subscriptions, so the join is idempotent and safely re-runnable: when
// the profile snapshot is not usable yet, the tick is skipped and the
// previously published set is left untouched.
func (s *Synchronizer) Run(ctx context.Context) {
	var snap profile.Snapshot
	var recs []Record
	var haveRecs bool
	for {
		select {
		case <-ctx.Done():
			return
		case sn, ok := <-s.profiles:
			if !ok {
				return
			}
			snap = sn
		case rs, ok := <-s.sessions:
			if !ok {
				return
			}
			recs = rs
			haveRecs = true
		}
		if !snap.Ready() || !haveRecs {
			continue
		}
		s.replace(join(recs, snap, s.log))
	}
}

// join resolves every raw record against the snapshot. Records whose
// tutor or subject (or student, for personal sessions) do not resolve are
// excluded: a view with a dangling reference is never published, at the
// cost of transient invisibility until the cache catches up. Unresolved
// attendees of a global session are only a resolution gap: the view is
// published without them.
func join(recs []Record, snap profile.Snapshot, log core.Logger) []View {
	views := make([]View, 0, len(recs))
	for _, rec := range recs {
		tutor, ok := snap.UserByID(rec.TutorID)
		if !ok {
			continue
		}
		sub, ok := snap.SubjectByID(rec.SubjectID)
		if !ok {
			continue
		}
		view := View{Record: rec, Tutor: tutor, Subject: sub}

		if rec.Personal != nil {
			student, ok := snap.UserByID(rec.Personal.StudentID)
			if !ok {
				continue
			}
			view.Student = &student
		}
		if rec.Global != nil {
			attendees := make([]user.User, 0, len(rec.Global.AttendeeIDs))
			for _, id := range rec.Global.AttendeeIDs {
				att, ok := snap.UserByID(id)
				if !ok {
					if log != nil {
						log.Info(fmt.Sprintf("session %s: dropping unresolved attendee %s", rec.ID, id))
					}
					continue
				}
				attendees = append(attendees, att)
			}
			view.Attendees = attendees
		}
		views = append(views, view)
	}
	return views
}

func (s *Synchronizer) replace(views []View) {
	s.mu.Lock()
	s.views = views
	s.mu.Unlock()
}

// AllSessions returns the latest published joined set. The returned slice
// is never mutated after publication.
func (s *Synchronizer) AllSessions() []View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views
}

// Clear drops the published set; called on logout.
func (s *Synchronizer) Clear() {
	s.replace(nil)
}
