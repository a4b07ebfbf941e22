package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/session"
	"github.com/tutorlink/backend/core/user"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
	Route string    `json:"route"`
}

type StatusUpdateRequest struct {
	Status session.Status `json:"status" validate:"required"`
}

func (r *StatusUpdateRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type PaymentRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

func (r *PaymentRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

type PaymentResponse struct {
	Paid   bool    `json:"paid"`
	Amount float64 `json:"amount"`
}

// TutorSubjectsRequest replaces the tutor's competency list wholesale;
// an empty list clears it.
type TutorSubjectsRequest struct {
	SubjectIDs []string `json:"subjectIds"`
}
