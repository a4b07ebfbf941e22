package session

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorlink/backend/core"
)

// NewRequest holds the data of a student's personal session request.
type NewRequest struct {
	StudentID       string    `json:"studentId" validate:"required"`
	TutorID         string    `json:"tutorId" validate:"required"`
	SubjectID       string    `json:"subjectId" validate:"required"`
	Topic           string    `json:"topic" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Topic = core.CleanString(nr.Topic)
	return validate.Struct(nr)
}

// NewGlobalSession holds the data of a coordinator's many-attendee session.
type NewGlobalSession struct {
	TutorID         string    `json:"tutorId" validate:"required"`
	SubjectID       string    `json:"subjectId" validate:"required"`
	Topic           string    `json:"topic" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"required,gt=0"`
	MaxAttendees    int       `json:"maxAttendees" validate:"required,gt=0"`
	CreatedBy       string    `json:"createdBy" validate:"required"`
}

func (ng *NewGlobalSession) Validate(validate *validator.Validate) error {
	ng.Topic = core.CleanString(ng.Topic)
	return validate.Struct(ng)
}
