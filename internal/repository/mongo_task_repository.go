package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/ems-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const taskCollection = "tasks"

// MongoTaskRepository keeps tasks in a MongoDB collection, one document per
// task keyed by the task's UUID.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository creates a TaskRepository backed by db.tasks
func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(taskCollection)}
}

// EnsureIndexes creates the indexes used by List
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, task)
	return err
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := bson.M{}
	if filter.AssignedTo != nil {
		query["assigned_to"] = *filter.AssignedTo
	}

	due := bson.M{}
	if filter.DueDateFrom != nil {
		due["$gte"] = *filter.DueDateFrom
	}
	if filter.DueDateBefore != nil {
		due["$lt"] = *filter.DueDateBefore
	}
	if len(due) > 0 {
		query["due_date"] = due
	}
	if len(filter.ExcludeStatuses) > 0 {
		query["status"] = bson.M{"$nin": filter.ExcludeStatuses}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find()
	if filter.SortByDueDate {
		opts.SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}})
	} else {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		opts.SetSkip(int64((filter.Page - 1) * filter.PageSize))
		opts.SetLimit(int64(filter.PageSize))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
