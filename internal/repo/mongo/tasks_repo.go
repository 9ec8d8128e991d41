package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDoc) toTask() task.Task {
	return task.Task{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Completed:   d.Completed,
		Owner:       d.Owner.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type TasksRepo struct {
	coll *mongo.Collection
	obs  observability.DBObserver
}

func NewTasksRepo(db *mongo.Database, obs observability.DBObserver) *TasksRepo {
	if obs == nil {
		obs = observability.NopDB{}
	}
	return &TasksRepo{coll: db.Collection(tasksCollection), obs: obs}
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	owner, ok := objectID(t.Owner)
	if !ok {
		return task.Task{}, fmt.Errorf("insert task: invalid owner id %q", t.Owner)
	}

	now := time.Now().UTC()
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.obs.ObserveDB("tasks.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return doc.toTask(), nil
}

func (r *TasksRepo) List(ctx context.Context, owner string, q task.ListQuery) ([]task.Task, error) {
	out := make([]task.Task, 0)

	oid, ok := objectID(owner)
	if !ok {
		return out, nil
	}

	filter := bson.M{"owner": oid}
	if q.Completed != nil {
		filter["completed"] = *q.Completed
	}

	opts := options.Find()
	if q.SortField != "" {
		dir := 1
		if q.SortDesc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.SortField, Value: dir}})
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}

	err := r.obs.ObserveDB("tasks.list", func() error {
		cur, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var doc taskDoc
			if err := cur.Decode(&doc); err != nil {
				return err
			}
			out = append(out, doc.toTask())
		}
		return cur.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (r *TasksRepo) GetOwned(ctx context.Context, id, owner string) (task.Task, error) {
	filter, ok := ownedFilter(id, owner)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	var doc taskDoc
	err := r.obs.ObserveDB("tasks.get", func() error {
		return r.coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		return task.Task{}, mapTaskErr("get task", err)
	}
	return doc.toTask(), nil
}

func (r *TasksRepo) UpdateOwned(ctx context.Context, id, owner string, changes task.Changes) (task.Task, error) {
	filter, ok := ownedFilter(id, owner)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Completed != nil {
		set["completed"] = *changes.Completed
	}

	var doc taskDoc
	err := r.obs.ObserveDB("tasks.update", func() error {
		return r.coll.FindOneAndUpdate(
			ctx,
			filter,
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})
	if err != nil {
		return task.Task{}, mapTaskErr("update task", err)
	}
	return doc.toTask(), nil
}

func (r *TasksRepo) DeleteOwned(ctx context.Context, id, owner string) (task.Task, error) {
	filter, ok := ownedFilter(id, owner)
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	var doc taskDoc
	err := r.obs.ObserveDB("tasks.delete", func() error {
		return r.coll.FindOneAndDelete(ctx, filter).Decode(&doc)
	})
	if err != nil {
		return task.Task{}, mapTaskErr("delete task", err)
	}
	return doc.toTask(), nil
}

func (r *TasksRepo) DeleteByOwner(ctx context.Context, owner string) (int64, error) {
	oid, ok := objectID(owner)
	if !ok {
		return 0, nil
	}

	var res *mongo.DeleteResult
	err := r.obs.ObserveDB("tasks.delete_by_owner", func() error {
		var err error
		res, err = r.coll.DeleteMany(ctx, bson.M{"owner": oid})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete owner tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func ownedFilter(id, owner string) (bson.M, bool) {
	tid, ok := objectID(id)
	if !ok {
		return nil, false
	}
	oid, ok := objectID(owner)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": tid, "owner": oid}, true
}

func mapTaskErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return task.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
