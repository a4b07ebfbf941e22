// Package mongodb is the MongoDB document store backend. Change streams
// provide the subscribe-for-changes semantics: every collection change
// re-lists the collection and pushes the full snapshot to watchers.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tutorlink/backend/core"
)

const (
	usersCollection    = "users"
	subjectsCollection = "subjects"
	sessionsCollection = "sessions"
)

// Open connects to Mongo and pings it, waiting a little longer between
// each attempt.
func Open(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, core.NewStoreError("connect", err)
	}
	if err := ping(ctx, client); err != nil {
		return nil, err
	}
	return client.Database(conf.Mongo.Database), nil
}

func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = client.Ping(ctx, nil); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	if err != nil {
		return core.NewStoreError("ping", errors.Wrap(err, "timeout"))
	}
	return nil
}

// watch re-runs emit on every change stream event until ctx is cancelled.
// emit is also run once before the stream is consumed, so watchers always
// receive an initial snapshot.
func watch(ctx context.Context, coll *mongo.Collection, log core.Logger, emit func(context.Context) error) error {
	if err := emit(ctx); err != nil {
		return err
	}
	stream, err := coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return core.NewStoreError("watch "+coll.Name(), err)
	}
	go func() {
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			if err := emit(ctx); err != nil && log != nil {
				log.Error("refreshing "+coll.Name()+" snapshot", err)
			}
		}
	}()
	return nil
}
