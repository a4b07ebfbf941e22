package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tutorlink/backend/core"
	"github.com/tutorlink/backend/core/user"
)

type userRepository struct {
	coll *mongo.Collection
	log  core.Logger
}

func NewUserRepository(db *mongo.Database, log core.Logger) user.Repository {
	return &userRepository{coll: db.Collection(usersCollection), log: log}
}

func (repo *userRepository) list(ctx context.Context) ([]user.User, error) {
	cur, err := repo.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, core.NewStoreError("listing users", err)
	}
	var users []user.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, core.NewStoreError("decoding users", err)
	}
	return users, nil
}

func (repo *userRepository) WatchUsers(ctx context.Context) (<-chan []user.User, error) {
	ch := make(chan []user.User, 1)
	emit := func(ctx context.Context) error {
		users, err := repo.list(ctx)
		if err != nil {
			return err
		}
		select {
		case ch <- users:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- users
		}
		return nil
	}
	if err := watch(ctx, repo.coll, repo.log, emit); err != nil {
		return nil, err
	}
	return ch, nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.GetUserByEmail(ctx, usr.Email); err == nil {
		return user.User{}, user.ErrEmailExists
	} else if err != user.ErrNotFound {
		return user.User{}, err
	}
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		return user.User{}, core.NewStoreError("creating user", err)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, core.NewStoreError("getting user", err)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.coll.FindOne(ctx, bson.M{"email": email}).Decode(&usr)
	if err == mongo.ErrNoDocuments {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, core.NewStoreError("getting user by email", err)
	}
	return usr, nil
}

func (repo *userRepository) SetTutorSubjects(ctx context.Context, tutorID string, subjectIDs []string) error {
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": tutorID}, bson.M{
		"$set": bson.M{
			"subjectIds": subjectIDs,
			"updatedAt":  time.Now().UTC(),
		},
	})
	if err != nil {
		return core.NewStoreError("setting tutor subjects", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = time.Now().UTC()
	res, err := repo.coll.UpdateOne(ctx, bson.M{"_id": usr.ID}, bson.M{
		"$set": bson.M{"lastLogin": usr.LastLogin},
	})
	if err != nil {
		return user.User{}, core.NewStoreError("setting last login", err)
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
