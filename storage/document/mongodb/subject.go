package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/subject"
)

type subjectRepository struct {
	coll *mongo.Collection
	log  core.Logger
}

func NewSubjectRepository(db *mongo.Database, log core.Logger) subject.Repository {
	return &subjectRepository{coll: db.Collection(subjectsCollection), log: log}
}

func (repo *subjectRepository) list(ctx context.Context) ([]subject.Subject, error) {
	cur, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, core.NewStoreError("listing subjects", err)
	}
	var subjects []subject.Subject
	if err := cur.All(ctx, &subjects); err != nil {
		return nil, core.NewStoreError("decoding subjects", err)
	}
	return subjects, nil
}

func (repo *subjectRepository) WatchSubjects(ctx context.Context) (<-chan []subject.Subject, error) {
	ch := make(chan []subject.Subject, 1)
	emit := func(ctx context.Context) error {
		subjects, err := repo.list(ctx)
		if err != nil {
			return err
		}
		select {
		case ch <- subjects:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- subjects
		}
		return nil
	}
	if err := watch(ctx, repo.coll, repo.log, emit); err != nil {
		return nil, err
	}
	return ch, nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if _, err := repo.coll.InsertOne(ctx, sub); err != nil {
		return subject.Subject{}, core.NewStoreError("creating subject", err)
	}
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	var sub subject.Subject
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return subject.Subject{}, subject.ErrNotFound
	}
	if err != nil {
		return subject.Subject{}, core.NewStoreError("getting subject", err)
	}
	return sub, nil
}
