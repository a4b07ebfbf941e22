package subject

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("subject not found")

// Subject is immutable reference data; the set is written once by the
// seeding operation and only ever read afterwards.
type Subject struct {
	ID   string `json:"id" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name"`
}

// Repository is the subjects collection of the document store.
type Repository interface {
	// WatchSubjects pushes the full current subject set on every collection change.
	WatchSubjects(ctx context.Context) (<-chan []Subject, error)
	CreateSubject(ctx context.Context, sub Subject) (Subject, error)
	GetSubjectByID(ctx context.Context, id string) (Subject, error)
}

// DefaultSubjects is the reference catalog written by the seeding command.
var DefaultSubjects = []Subject{
	{ID: "cs101", Name: "Intro to Programming"},
	{ID: "math202", Name: "Calculus II"},
	{ID: "phy301", Name: "Modern Physics"},
	{ID: "chem101", Name: "General Chemistry"},
}

// Seed creates any default subject that does not exist yet.
func Seed(ctx context.Context, repo Repository) error {
	for _, sub := range DefaultSubjects {
		if _, err := repo.GetSubjectByID(ctx, sub.ID); err == nil {
			continue
		} else if errors.Cause(err) != ErrNotFound {
			return errors.Wrap(err, "checking subject")
		}
		if _, err := repo.CreateSubject(ctx, sub); err != nil {
			return errors.Wrap(err, "creating subject")
		}
	}
	return nil
}
