package session

import "time"

// Views is a published joined set. The filters below are the dashboard's
// derived lists; they are pure functions over the set and never mutate it.
type Views []View

func (v Views) filter(keep func(View) bool) Views {
	out := make(Views, 0, len(v))
	for _, view := range v {
		if keep(view) {
			out = append(out, view)
		}
	}
	return out
}

func (v View) concernsStudent(userID string) bool {
	if v.IsGlobal() {
		return v.HasAttendee(userID)
	}
	return v.Personal != nil && v.Personal.StudentID == userID
}

// UpcomingForStudent lists the student's future sessions: confirmed
// personal ones plus any joined global session.
func (v Views) UpcomingForStudent(userID string, now time.Time) Views {
	return v.filter(func(view View) bool {
		if !view.Date.After(now) {
			return false
		}
		if view.IsGlobal() {
			return view.HasAttendee(userID)
		}
		return view.concernsStudent(userID) && view.Status == StatusConfirmed
	})
}

// PastForStudent lists the student's finished or elapsed sessions.
func (v Views) PastForStudent(userID string, now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.concernsStudent(userID) &&
			(view.Status == StatusCompleted || view.Status == StatusCancelled || !view.Date.After(now))
	})
}

// JoinableGlobal lists future confirmed global sessions the student has
// not joined and that still have capacity.
func (v Views) JoinableGlobal(userID string, now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.IsGlobal() &&
			view.Date.After(now) &&
			view.Status == StatusConfirmed &&
			len(view.Global.AttendeeIDs) < view.Global.MaxAttendees &&
			!view.HasAttendee(userID)
	})
}

// PendingForTutor lists the tutor's personal requests awaiting approval.
func (v Views) PendingForTutor(tutorID string) Views {
	return v.filter(func(view View) bool {
		return !view.IsGlobal() && view.TutorID == tutorID && view.Status == StatusPending
	})
}

// UpcomingForTutor lists the tutor's future confirmed sessions.
func (v Views) UpcomingForTutor(tutorID string, now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.TutorID == tutorID && view.Status == StatusConfirmed && view.Date.After(now)
	})
}

// PastForTutor lists the tutor's finished or elapsed sessions.
func (v Views) PastForTutor(tutorID string, now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.TutorID == tutorID &&
			(view.Status == StatusCompleted || view.Status == StatusCancelled || !view.Date.After(now))
	})
}

// UpcomingGlobal lists all future global sessions (coordinator overview).
func (v Views) UpcomingGlobal(now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.IsGlobal() && view.Date.After(now)
	})
}

// PastGlobal lists all elapsed global sessions (coordinator overview).
func (v Views) PastGlobal(now time.Time) Views {
	return v.filter(func(view View) bool {
		return view.IsGlobal() && !view.Date.After(now)
	})
}
