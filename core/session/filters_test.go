package session

import (
	"testing"
	"time"
)

func TestViewsFilters(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	personal := func(id, studentID string, status Status, date time.Time) View {
		return View{Record: Record{
			ID:       id,
			Personal: &PersonalDetails{StudentID: studentID},
			TutorID:  "tut1",
			Status:   status,
			Date:     date,
		}}
	}
	global := func(id string, status Status, date time.Time, max int, attendees ...string) View {
		return View{Record: Record{
			ID:      id,
			Global:  &GlobalDetails{CreatedBy: "coord1", AttendeeIDs: attendees, MaxAttendees: max},
			TutorID: "tut1",
			Status:  status,
			Date:    date,
		}}
	}

	views := Views{
		personal("p-pending", "stu1", StatusPending, future),
		personal("p-confirmed", "stu1", StatusConfirmed, future),
		personal("p-done", "stu1", StatusCompleted, past),
		personal("p-cancelled", "stu1", StatusCancelled, future),
		personal("p-other", "stu2", StatusConfirmed, future),
		global("g-joined", StatusConfirmed, future, 5, "stu1"),
		global("g-open", StatusConfirmed, future, 5, "stu2"),
		global("g-full", StatusConfirmed, future, 1, "stu2"),
		global("g-past", StatusConfirmed, past, 5),
	}

	ids := func(vs Views) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = v.ID
		}
		return out
	}

	tests := []struct {
		name string
		got  Views
		want []string
	}{
		{name: "student upcoming", got: views.UpcomingForStudent("stu1", now), want: []string{"p-confirmed", "g-joined"}},
		{name: "student past", got: views.PastForStudent("stu1", now), want: []string{"p-done", "p-cancelled"}},
		{name: "student joinable", got: views.JoinableGlobal("stu1", now), want: []string{"g-open"}},
		{name: "tutor pending", got: views.PendingForTutor("tut1"), want: []string{"p-pending"}},
		{name: "tutor upcoming", got: views.UpcomingForTutor("tut1", now), want: []string{"p-confirmed", "p-other", "g-joined", "g-open", "g-full"}},
		{name: "tutor past", got: views.PastForTutor("tut1", now), want: []string{"p-done", "p-cancelled", "g-past"}},
		{name: "global upcoming", got: views.UpcomingGlobal(now), want: []string{"g-joined", "g-open", "g-full"}},
		{name: "global past", got: views.PastGlobal(now), want: []string{"g-past"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.got)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
