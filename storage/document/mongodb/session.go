package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/session"
)

type sessionRepository struct {
	coll *mongo.Collection
	log  core.Logger
}

func NewSessionRepository(db *mongo.Database, log core.Logger) session.Repository {
	return &sessionRepository{coll: db.Collection(sessionsCollection), log: log}
}

func (repo *sessionRepository) list(ctx context.Context) ([]session.Record, error) {
	cur, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, core.NewStoreError("listing sessions", err)
	}
	var recs []session.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, core.NewStoreError("decoding sessions", err)
	}
	return recs, nil
}

func (repo *sessionRepository) WatchSessions(ctx context.Context) (<-chan []session.Record, error) {
	ch := make(chan []session.Record, 1)
	emit := func(ctx context.Context) error {
		recs, err := repo.list(ctx)
		if err != nil {
			return err
		}
		select {
		case ch <- recs:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- recs
		}
		return nil
	}
	if err := watch(ctx, repo.coll, repo.log, emit); err != nil {
		return nil, err
	}
	return ch, nil
}

func (repo *sessionRepository) CreateSession(ctx context.Context, rec session.Record) (session.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if _, err := repo.coll.InsertOne(ctx, rec); err != nil {
		return session.Record{}, core.NewStoreError("creating session", err)
	}
	return rec, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Record, error) {
	var rec session.Record
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return session.Record{}, session.ErrNotFound
	}
	if err != nil {
		return session.Record{}, core.NewStoreError("getting session", err)
	}
	return rec, nil
}

// UpdateSession merges the set fields only; unset fields are untouched.
func (repo *sessionRepository) UpdateSession(ctx context.Context, id string, upd session.Update) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.SessionLink != nil {
		set["sessionLink"] = *upd.SessionLink
	}
	if upd.Comments != nil {
		set["comments"] = *upd.Comments
	}
	if upd.Materials != nil {
		set["materials"] = *upd.Materials
	}
	if upd.Paid != nil {
		set["paid"] = *upd.Paid
	}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return core.NewStoreError("updating session", err)
	}
	if res.MatchedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}

// AppendAttendee relies on $addToSet for the set-union semantics.
func (repo *sessionRepository) AppendAttendee(ctx context.Context, id, studentID string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"global.attendeeIds": studentID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return core.NewStoreError("appending attendee", err)
	}
	if res.MatchedCount == 0 {
		return session.ErrNotFound
	}
	return nil
}
