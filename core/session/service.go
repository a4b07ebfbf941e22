package session

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/profile"
	"github.com/tutorlink/backend/core/subject"
	"github.com/tutorlink/backend/core/user"
)

var (
	ErrInvalidReference = errors.New("referenced record not found")
	ErrCapacityExceeded = errors.New("session is full")
	ErrNotGlobal        = errors.New("not a global session")
)

// InvalidTransitionError is returned when a status change does not follow
// a permitted lifecycle edge.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func IsInvalidTransition(err error) bool {
	_, ok := errors.Cause(err).(*InvalidTransitionError)
	return ok
}

// Directory resolves references against the latest profile snapshot.
// *profile.Cache satisfies it; a nil Directory falls back to store reads.
type Directory interface {
	Snapshot() profile.Snapshot
}

// Service is the session lifecycle controller. Every operation validates
// its references and the requested transition before any write is
// attempted, performs a single targeted write, and relies on the
// synchronizer to propagate the resulting view.
type Service struct {
	repo     Repository
	users    user.Repository
	subjects subject.Repository
	dir      Directory
	mailSvc  core.EmailService
	log      core.Logger
}

func NewService(repo Repository, users user.Repository, subjects subject.Repository, dir Directory, mailSvc core.EmailService, log core.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		subjects: subjects,
		dir:      dir,
		mailSvc:  mailSvc,
		log:      log,
	}
}

// CreateRequest writes a new personal session with status pending.
// Display names of the resolved student/tutor/subject are denormalized
// into the record at creation time and never re-synced.
func (svc *Service) CreateRequest(ctx context.Context, nr NewRequest) (Record, error) {
	student, err := svc.resolveUser(ctx, nr.StudentID)
	if err != nil {
		return Record{}, refErr(err, "student %s", nr.StudentID)
	}
	tutor, err := svc.resolveTutor(ctx, nr.TutorID)
	if err != nil {
		return Record{}, err
	}
	sub, err := svc.resolveSubject(ctx, nr.SubjectID)
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		Personal: &PersonalDetails{
			StudentID:   student.ID,
			StudentName: student.Name,
		},
		TutorID:         tutor.ID,
		SubjectID:       sub.ID,
		TutorName:       tutor.Name,
		SubjectName:     sub.Name,
		Topic:           nr.Topic,
		Date:            nr.Date.UTC(),
		DurationMinutes: nr.DurationMinutes,
		Status:          StatusPending,
		Materials:       []Material{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	rec, err = svc.repo.CreateSession(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "creating session request")
	}
	return rec, nil
}

// CreateGlobal writes a new many-attendee session with status confirmed
// and an empty attendee set.
func (svc *Service) CreateGlobal(ctx context.Context, ng NewGlobalSession) (Record, error) {
	coordinator, err := svc.resolveUser(ctx, ng.CreatedBy)
	if err != nil {
		return Record{}, refErr(err, "coordinator %s", ng.CreatedBy)
	}
	if !coordinator.IsCoordinator() {
		return Record{}, errors.Wrapf(ErrInvalidReference, "coordinator %s", ng.CreatedBy)
	}
	tutor, err := svc.resolveTutor(ctx, ng.TutorID)
	if err != nil {
		return Record{}, err
	}
	sub, err := svc.resolveSubject(ctx, ng.SubjectID)
	if err != nil {
		return Record{}, err
	}

	now := time.Now().UTC()
	rec := Record{
		Global: &GlobalDetails{
			CreatedBy:    coordinator.ID,
			AttendeeIDs:  []string{},
			MaxAttendees: ng.MaxAttendees,
		},
		TutorID:         tutor.ID,
		SubjectID:       sub.ID,
		TutorName:       tutor.Name,
		SubjectName:     sub.Name,
		Topic:           ng.Topic,
		Date:            ng.Date.UTC(),
		DurationMinutes: ng.DurationMinutes,
		Status:          StatusConfirmed,
		Materials:       []Material{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	rec, err = svc.repo.CreateSession(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "creating global session")
	}
	return rec, nil
}

// Get returns a single stored session record.
func (svc *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, err := svc.repo.GetSessionByID(ctx, id)
	return rec, errors.Wrap(err, "getting session")
}

// SetStatus moves a session along the lifecycle graph. Attempts to leave
// a terminal state, or to move backward, are rejected before any write.
func (svc *Service) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.IsValid() {
		return core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
	}
	rec, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if !rec.Status.CanTransition(status) {
		return &InvalidTransitionError{From: rec.Status, To: status}
	}
	if err := svc.repo.UpdateSession(ctx, id, Update{Status: &status}); err != nil {
		return errors.Wrap(err, "updating session status")
	}
	if status == StatusConfirmed && rec.Personal != nil {
		svc.sendConfirmationMail(ctx, rec)
	}
	return nil
}

// DetailsUpdate carries the editable session details; nil fields are left
// untouched. Materials replaces the whole ordered list.
type DetailsUpdate struct {
	SessionLink *string     `json:"sessionLink"`
	Comments    *string     `json:"comments"`
	Materials   *[]Material `json:"materials"`
}

// UpdateDetails performs a partial merge write of the editable details.
func (svc *Service) UpdateDetails(ctx context.Context, id string, upd DetailsUpdate) error {
	if _, err := svc.repo.GetSessionByID(ctx, id); err != nil {
		return errors.Wrap(err, "getting session")
	}
	err := svc.repo.UpdateSession(ctx, id, Update{
		SessionLink: upd.SessionLink,
		Comments:    upd.Comments,
		Materials:   upd.Materials,
	})
	return errors.Wrap(err, "updating session details")
}

// AddAttendee joins a student to a global session. Joining twice is a
// no-op; joining a full session fails with ErrCapacityExceeded and leaves
// the stored set unchanged.
func (svc *Service) AddAttendee(ctx context.Context, id, studentID string) error {
	rec, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if !rec.IsGlobal() {
		return ErrNotGlobal
	}
	if rec.HasAttendee(studentID) {
		return nil
	}
	if len(rec.Global.AttendeeIDs) >= rec.Global.MaxAttendees {
		return ErrCapacityExceeded
	}
	if _, err := svc.resolveUser(ctx, studentID); err != nil {
		return refErr(err, "student %s", studentID)
	}
	return errors.Wrap(svc.repo.AppendAttendee(ctx, id, studentID), "appending attendee")
}

// SetPaymentStatus records whether the tutor has been compensated. The
// amount itself is computed at display time (see PaymentAmount).
func (svc *Service) SetPaymentStatus(ctx context.Context, id string, paid bool) error {
	if _, err := svc.repo.GetSessionByID(ctx, id); err != nil {
		return errors.Wrap(err, "getting session")
	}
	return errors.Wrap(svc.repo.UpdateSession(ctx, id, Update{Paid: &paid}), "updating payment status")
}

// AssignTutorSubjects replaces a tutor's subject-competency list wholesale.
func (svc *Service) AssignTutorSubjects(ctx context.Context, tutorID string, subjectIDs []string) error {
	if _, err := svc.resolveTutor(ctx, tutorID); err != nil {
		return err
	}
	for _, subID := range subjectIDs {
		if _, err := svc.resolveSubject(ctx, subID); err != nil {
			return err
		}
	}
	return errors.Wrap(svc.users.SetTutorSubjects(ctx, tutorID, subjectIDs), "setting tutor subjects")
}

// resolveUser looks a user up in the profile cache, falling back to a
// point read on the store when the cache has no usable snapshot.
func (svc *Service) resolveUser(ctx context.Context, id string) (user.User, error) {
	if svc.dir != nil {
		if snap := svc.dir.Snapshot(); snap.Ready() {
			if usr, ok := snap.UserByID(id); ok {
				return usr, nil
			}
		}
	}
	return svc.users.GetUserByID(ctx, id)
}

func (svc *Service) resolveTutor(ctx context.Context, id string) (user.User, error) {
	tutor, err := svc.resolveUser(ctx, id)
	if err != nil {
		return user.User{}, refErr(err, "tutor %s", id)
	}
	if !tutor.IsTutor() {
		return user.User{}, errors.Wrapf(ErrInvalidReference, "tutor %s", id)
	}
	return tutor, nil
}

func (svc *Service) resolveSubject(ctx context.Context, id string) (subject.Subject, error) {
	if svc.dir != nil {
		if snap := svc.dir.Snapshot(); snap.Ready() {
			if sub, ok := snap.SubjectByID(id); ok {
				return sub, nil
			}
		}
	}
	sub, err := svc.subjects.GetSubjectByID(ctx, id)
	if err != nil {
		return subject.Subject{}, refErr(err, "subject %s", id)
	}
	return sub, nil
}

// refErr maps a failed reference lookup to ErrInvalidReference only when
// the record is missing; any other failure (a store outage) propagates
// wrapped so it is not mistaken for a bad foreign key.
func refErr(err error, format string, args ...interface{}) error {
	switch errors.Cause(err) {
	case user.ErrNotFound, subject.ErrNotFound:
		return errors.Wrapf(ErrInvalidReference, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

func (svc *Service) sendConfirmationMail(ctx context.Context, rec Record) {
	if svc.mailSvc == nil {
		return
	}
	student, err := svc.resolveUser(ctx, rec.Personal.StudentID)
	if err != nil {
		if svc.log != nil {
			svc.log.Error("looking up student for confirmation mail", err)
		}
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: "Your tutoring session is confirmed",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour session %q with %s on %s has been confirmed.\n",
			student.Name, rec.Topic, rec.TutorName, rec.Date.Format(time.RFC1123),
		),
	})
}
