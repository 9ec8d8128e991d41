package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tokenDoc struct {
	Token string `bson:"token"`
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       float64            `bson:"age"`
	Password  string             `bson:"password"`
	Tokens    []tokenDoc         `bson:"tokens"`
	Avatar    []byte             `bson:"avatar,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) toUser() user.User {
	tokens := make([]string, 0, len(d.Tokens))
	for _, t := range d.Tokens {
		tokens = append(tokens, t.Token)
	}
	return user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		Password:  d.Password,
		Tokens:    tokens,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type UsersRepo struct {
	coll *mongo.Collection
	obs  observability.DBObserver
}

func NewUsersRepo(db *mongo.Database, obs observability.DBObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopDB{}
	}
	return &UsersRepo{coll: db.Collection(usersCollection), obs: obs}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Password:  u.Password,
		Tokens:    []tokenDoc{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, t := range u.Tokens {
		doc.Tokens = append(doc.Tokens, tokenDoc{Token: t})
	}

	err := r.obs.ObserveDB("users.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.findOne(ctx, "users.get_by_id", bson.M{"_id": oid})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.M{"email": email})
}

func (r *UsersRepo) GetByToken(ctx context.Context, id, token string) (user.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.findOne(ctx, "users.get_by_token", bson.M{"_id": oid, "tokens.token": token})
}

func (r *UsersRepo) Update(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.Password != nil {
		set["password"] = *changes.Password
	}
	if changes.Age != nil {
		set["age"] = *changes.Age
	}

	u, err := r.findOneAndUpdate(ctx, "users.update", oid, bson.M{"$set": set})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return user.User{}, user.ErrEmailTaken
	}
	return u, err
}

func (r *UsersRepo) PushToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, "users.push_token", id, bson.M{
		"$push": bson.M{"tokens": tokenDoc{Token: token}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UsersRepo) PullToken(ctx context.Context, id, token string) error {
	return r.updateOne(ctx, "users.pull_token", id, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *UsersRepo) ClearTokens(ctx context.Context, id string) error {
	return r.updateOne(ctx, "users.clear_tokens", id, bson.M{
		"$set": bson.M{"tokens": []tokenDoc{}, "updatedAt": time.Now().UTC()},
	})
}

func (r *UsersRepo) SetAvatar(ctx context.Context, id string, png []byte) error {
	now := time.Now().UTC()
	if png == nil {
		return r.updateOne(ctx, "users.unset_avatar", id, bson.M{
			"$unset": bson.M{"avatar": ""},
			"$set":   bson.M{"updatedAt": now},
		})
	}
	return r.updateOne(ctx, "users.set_avatar", id, bson.M{
		"$set": bson.M{"avatar": png, "updatedAt": now},
	})
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return user.ErrNotFound
	}

	var res *mongo.DeleteResult
	err := r.obs.ObserveDB("users.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": oid})
		return err
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (user.User, error) {
	var doc userDoc
	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toUser(), nil
}

func (r *UsersRepo) findOneAndUpdate(ctx context.Context, op string, oid primitive.ObjectID, update bson.M) (user.User, error) {
	var doc userDoc
	err := r.obs.ObserveDB(op, func() error {
		return r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": oid},
			update,
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toUser(), nil
}

func (r *UsersRepo) updateOne(ctx context.Context, op, id string, update bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return user.ErrNotFound
	}

	var res *mongo.UpdateResult
	err := r.obs.ObserveDB(op, func() error {
		var err error
		res, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
