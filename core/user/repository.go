package user

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

// Repository is the users collection of the document store.
type Repository interface {
	// WatchUsers pushes the full current user set on every collection change.
	// The first snapshot is pushed as soon as the subscription is established.
	WatchUsers(ctx context.Context) (<-chan []User, error)
	CreateUser(ctx context.Context, usr User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// SetTutorSubjects replaces a tutor's subject-competency list wholesale.
	SetTutorSubjects(ctx context.Context, tutorID string, subjectIDs []string) error
	SetLastLogin(ctx context.Context, usr User) (User, error)
}
