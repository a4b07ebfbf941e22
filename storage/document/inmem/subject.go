package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/tutorlink/backend/core/subject"
)

type subjectRepository struct {
	db *DB
}

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) WatchSubjects(ctx context.Context) (<-chan []subject.Subject, error) {
	return repo.db.WatchSubjects(ctx)
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	stored := sub
	repo.db.subjects[sub.ID] = &stored
	repo.db.notifySubjects()
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}
