package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tutorlink/backend/core/session"
)

type sessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) WatchSessions(ctx context.Context) (<-chan []session.Record, error) {
	return repo.db.WatchSessions(ctx)
}

func (repo *sessionRepository) CreateSession(ctx context.Context, rec session.Record) (session.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	stored := cloneSession(rec)
	repo.db.sessions[rec.ID] = &stored
	repo.db.notifySessions()
	return rec, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if rec, ok := repo.db.sessions[id]; ok {
		return cloneSession(*rec), nil
	}
	return session.Record{}, session.ErrNotFound
}

// UpdateSession merges the set fields only; nil fields are left untouched.
func (repo *sessionRepository) UpdateSession(ctx context.Context, id string, upd session.Update) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	rec, ok := repo.db.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	if upd.Status != nil {
		rec.Status = *upd.Status
	}
	if upd.SessionLink != nil {
		rec.SessionLink = *upd.SessionLink
	}
	if upd.Comments != nil {
		rec.Comments = *upd.Comments
	}
	if upd.Materials != nil {
		rec.Materials = append([]session.Material(nil), *upd.Materials...)
	}
	if upd.Paid != nil {
		rec.Paid = *upd.Paid
	}
	rec.UpdatedAt = time.Now().UTC()
	repo.db.notifySessions()
	return nil
}

// AppendAttendee is a set-union append: an id already present is not
// duplicated and triggers no notification.
func (repo *sessionRepository) AppendAttendee(ctx context.Context, id, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	rec, ok := repo.db.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	if rec.Global == nil {
		return session.ErrNotGlobal
	}
	for _, att := range rec.Global.AttendeeIDs {
		if att == studentID {
			return nil
		}
	}
	rec.Global.AttendeeIDs = append(rec.Global.AttendeeIDs, studentID)
	rec.UpdatedAt = time.Now().UTC()
	repo.db.notifySessions()
	return nil
}
