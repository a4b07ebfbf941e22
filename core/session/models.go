package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

var ErrNotFound = errors.New("session not found")

// Status is a tutoring session's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions holds the permitted lifecycle edges. completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s.IsValid()
}

// CanTransition reports whether moving from s to `to` is a permitted edge.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Material is a named resource attached to a session; insertion order is
// significant.
type Material struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

// PersonalDetails is the one-student session shape.
// StudentName is a point-in-time copy of the student's display name,
// captured at creation and never re-synced.
type PersonalDetails struct {
	StudentID   string `json:"studentId" bson:"studentId"`
	StudentName string `json:"studentName,omitempty" bson:"studentName,omitempty"`
}

// GlobalDetails is the many-attendee session shape. AttendeeIDs is a set:
// no duplicates, order irrelevant, size capped by MaxAttendees.
type GlobalDetails struct {
	CreatedBy    string   `json:"createdBy" bson:"createdBy"`
	AttendeeIDs  []string `json:"attendeeIds" bson:"attendeeIds"`
	MaxAttendees int      `json:"maxAttendees" bson:"maxAttendees"`
}

// Record is a raw session document. Exactly one of Personal or Global is
// set; TutorName and SubjectName are denormalized creation-time copies
// kept for cheap list rendering.
type Record struct {
	ID              string           `json:"id" bson:"_id,omitempty"`
	Personal        *PersonalDetails `json:"personal,omitempty" bson:"personal,omitempty"`
	Global          *GlobalDetails   `json:"global,omitempty" bson:"global,omitempty"`
	TutorID         string           `json:"tutorId" bson:"tutorId"`
	SubjectID       string           `json:"subjectId" bson:"subjectId"`
	TutorName       string           `json:"tutorName,omitempty" bson:"tutorName,omitempty"`
	SubjectName     string           `json:"subjectName,omitempty" bson:"subjectName,omitempty"`
	Topic           string           `json:"topic" bson:"topic"`
	Date            time.Time        `json:"date" bson:"date"` // UTC
	DurationMinutes int              `json:"durationMinutes" bson:"durationMinutes"`
	Status          Status           `json:"status" bson:"status"`
	Materials       []Material       `json:"materials" bson:"materials"`
	Comments        string           `json:"comments,omitempty" bson:"comments,omitempty"`
	SessionLink     string           `json:"sessionLink,omitempty" bson:"sessionLink,omitempty"`
	Paid            bool             `json:"paid" bson:"paid"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"` // UTC
}

func (r Record) IsGlobal() bool { return r.Global != nil }

func (r Record) HasAttendee(userID string) bool {
	if r.Global == nil {
		return false
	}
	for _, id := range r.Global.AttendeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// View is a Record with its references resolved against the profile cache.
// Attendees may be smaller than Global.AttendeeIDs when some ids did not
// resolve; Tutor and Subject always did, or the view was not published.
type View struct {
	Record
	Student   *user.User      `json:"student,omitempty"`
	Tutor     user.User       `json:"tutor"`
	Subject   subject.Subject `json:"subject"`
	Attendees []user.User     `json:"attendees,omitempty"`
}

// Update is a partial merge write; nil fields are left untouched.
type Update struct {
	Status      *Status
	SessionLink *string
	Comments    *string
	Materials   *[]Material
	Paid        *bool
}

// PaymentAmount is the tutor compensation for a session, computed at
// display time and never stored.
func PaymentAmount(durationMinutes int, hourlyRate float64) float64 {
	return float64(durationMinutes) / 60 * hourlyRate
}

// Repository is the sessions collection of the document store.
type Repository interface {
	// WatchSessions pushes the full current raw session set on every
	// collection change.
	WatchSessions(ctx context.Context) (<-chan []Record, error)
	CreateSession(ctx context.Context, rec Record) (Record, error)
	GetSessionByID(ctx context.Context, id string) (Record, error)
	UpdateSession(ctx context.Context, id string, upd Update) error
	// AppendAttendee adds studentID to a global session's attendee set
	// (set-union; appending an existing id is a no-op).
	AppendAttendee(ctx context.Context, id, studentID string) error
}
