// Package mongo stores the task list as a single document, so a save replaces
// the whole collection atomically.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"schoolPlanner/internal/logger"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"schoolPlanner/internal/repository/task/codec"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	DefaultDatabase   = "school_planner"
	DefaultCollection = "planner"
	documentID        = "tasks"
)

// BSON datetimes only keep milliseconds, timestamps are kept as text.
type storedTask struct {
	ID          string  `bson:"id"`
	Title       string  `bson:"title"`
	Description string  `bson:"description"`
	DueDate     *string `bson:"due_date"`
	Priority    string  `bson:"priority"`
	Status      string  `bson:"status"`
	Category    string  `bson:"category"`
	CreatedAt   string  `bson:"created_at"`
	UpdatedAt   *string `bson:"updated_at"`
}

type document struct {
	ID      string       `bson:"_id"`
	Tasks   []storedTask `bson:"tasks"`
	SavedAt time.Time    `bson:"saved_at"`
}

type Storage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func Connect(ctx context.Context, uri, database, collection string) (*Storage, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("Repository: MongoDB connection failed", err)
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("Repository: MongoDB ping failed", err)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("Repository: connected to MongoDB", zap.String("database", database), zap.String("collection", collection))
	return &Storage{client: client, collection: client.Database(database).Collection(collection)}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	logger.Info("Repository: disconnecting from MongoDB")
	return s.client.Disconnect(ctx)
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: MongoDB ping failed", err)
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]*task.Task, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"_id": documentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*task.Task{}, nil
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	records := make([]codec.Record, 0, len(doc.Tasks))
	for _, st := range doc.Tasks {
		r, err := st.record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return codec.Decode(records)
}

func (s *Storage) Save(ctx context.Context, tasks []*task.Task) error {
	start := time.Now()

	doc := document{ID: documentID, Tasks: make([]storedTask, len(tasks)), SavedAt: time.Now().UTC()}
	for i, r := range codec.FromTasks(tasks) {
		doc.Tasks[i] = fromRecord(r)
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": documentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		logger.Error("Repository: failed to save tasks", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("mongo replace: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: slow operation", zap.Duration("ms", time.Since(start)), zap.Int("count", len(tasks)))
	}
	return nil
}

func fromRecord(r codec.Record) storedTask {
	st := storedTask{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Status:      r.Status,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339Nano),
	}
	if r.UpdatedAt != nil {
		u := r.UpdatedAt.Format(time.RFC3339Nano)
		st.UpdatedAt = &u
	}
	return st
}

func (st storedTask) record() (codec.Record, error) {
	r := codec.Record{
		ID:          st.ID,
		Title:       st.Title,
		Description: st.Description,
		DueDate:     st.DueDate,
		Priority:    st.Priority,
		Status:      st.Status,
		Category:    st.Category,
	}

	var err error
	if st.CreatedAt != "" {
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, st.CreatedAt); err != nil {
			return r, fmt.Errorf("%w: task %q: created_at: %v", repository.ErrCorrupt, st.ID, err)
		}
	}
	if st.UpdatedAt != nil {
		u, err := time.Parse(time.RFC3339Nano, *st.UpdatedAt)
		if err != nil {
			return r, fmt.Errorf("%w: task %q: updated_at: %v", repository.ErrCorrupt, st.ID, err)
		}
		r.UpdatedAt = &u
	}
	return r, nil
}
