package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by MongoStore.
const (
	TasksCollection       = "tasks"
	ProjectsCollection    = "projects"
	TimeEntriesCollection = "time_entries"
)

// MongoStore persists documents in MongoDB. Every round-trip goes through a
// circuit breaker so a failing server is not hammered by retries.
type MongoStore struct {
	tasks    *mongo.Collection
	projects *mongo.Collection
	entries  *mongo.Collection
	cb       *gobreaker.CircuitBreaker
}

// NewBreaker builds the circuit breaker used around MongoDB calls. It trips
// after maxFailures consecutive failures and probes again after timeout.
// Not-found results count as successes.
func NewBreaker(name string, maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithField("breaker", name).
				Warnf("circuit breaker changed from %s to %s", from, to)
		},
	})
}

// NewMongoStore uses the task, project and time entry collections of db.
func NewMongoStore(db *mongo.Database, cb *gobreaker.CircuitBreaker) *MongoStore {
	if cb == nil {
		cb = NewBreaker("mongo", 3, 5*time.Second)
	}
	return &MongoStore{
		tasks:    db.Collection(TasksCollection),
		projects: db.Collection(ProjectsCollection),
		entries:  db.Collection(TimeEntriesCollection),
		cb:       cb,
	}
}

// EnsureIndexes creates the secondary indexes the list queries rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	return s.exec(func() error {
		if _, err := s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "project", Value: 1}}},
			{Keys: bson.D{{Key: "parentTask", Value: 1}}},
			{Keys: bson.D{{Key: "recurrence.isRecurring", Value: 1}}},
			{Keys: bson.D{{Key: "recurrence.parentRecurringTaskId", Value: 1}, {Key: "dueDate", Value: 1}}},
		}); err != nil {
			return fmt.Errorf("store: task indexes: %w", err)
		}
		if _, err := s.entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "endTime", Value: 1}}},
			{Keys: bson.D{{Key: "taskId", Value: 1}}},
		}); err != nil {
			return fmt.Errorf("store: time entry indexes: %w", err)
		}
		return nil
	})
}

// exec runs fn through the circuit breaker.
func (s *MongoStore) exec(fn func() error) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

func (s *MongoStore) CreateTask(ctx context.Context, t *models.Task) error {
	normalizeTask(t)
	return s.exec(func() error {
		if _, err := s.tasks.InsertOne(ctx, t); err != nil {
			return fmt.Errorf("store: create task %s: %w", t.ID, err)
		}
		return nil
	})
}

func (s *MongoStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	err := s.exec(func() error {
		return findByID(ctx, s.tasks, "task", id, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *MongoStore) SaveTask(ctx context.Context, t *models.Task) error {
	normalizeTask(t)
	return s.exec(func() error {
		return replaceByID(ctx, s.tasks, "task", t.ID, t)
	})
}

func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	return s.exec(func() error {
		return deleteByID(ctx, s.tasks, "task", id)
	})
}

// ListTasks returns matching tasks ordered by creation time.
func (s *MongoStore) ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	filter := bson.M{}
	if f.Project != "" {
		filter["project"] = f.Project
	}
	if f.ParentTask != "" {
		filter["parentTask"] = f.ParentTask
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Recurring != nil {
		filter["recurrence.isRecurring"] = *f.Recurring
	}
	if f.ParentRecurringTaskID != "" {
		filter["recurrence.parentRecurringTaskId"] = f.ParentRecurringTaskID
	}
	if f.DueFrom != nil || f.DueTo != nil {
		due := bson.M{}
		if f.DueFrom != nil {
			due["$gte"] = f.DueFrom.UTC()
		}
		if f.DueTo != nil {
			due["$lte"] = f.DueTo.UTC()
		}
		filter["dueDate"] = due
	}

	var tasks []models.Task
	err := s.exec(func() error {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cur, err := s.tasks.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("store: list tasks: %w", err)
		}
		if err := cur.All(ctx, &tasks); err != nil {
			return fmt.Errorf("store: decode tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *MongoStore) CreateProject(ctx context.Context, p *models.Project) error {
	return s.exec(func() error {
		if _, err := s.projects.InsertOne(ctx, p); err != nil {
			return fmt.Errorf("store: create project %s: %w", p.ID, err)
		}
		return nil
	})
}

func (s *MongoStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := s.exec(func() error {
		return findByID(ctx, s.projects, "project", id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) SaveProject(ctx context.Context, p *models.Project) error {
	return s.exec(func() error {
		return replaceByID(ctx, s.projects, "project", p.ID, p)
	})
}

func (s *MongoStore) DeleteProject(ctx context.Context, id string) error {
	return s.exec(func() error {
		return deleteByID(ctx, s.projects, "project", id)
	})
}

func (s *MongoStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.exec(func() error {
		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
		cur, err := s.projects.Find(ctx, bson.M{}, opts)
		if err != nil {
			return fmt.Errorf("store: list projects: %w", err)
		}
		if err := cur.All(ctx, &projects); err != nil {
			return fmt.Errorf("store: decode projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *MongoStore) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	return s.exec(func() error {
		if _, err := s.entries.InsertOne(ctx, e); err != nil {
			return fmt.Errorf("store: create time entry %s: %w", e.ID, err)
		}
		return nil
	})
}

func (s *MongoStore) SaveTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	return s.exec(func() error {
		return replaceByID(ctx, s.entries, "time entry", e.ID, e)
	})
}

// ListTimeEntries returns matching entries, most recent start first.
func (s *MongoStore) ListTimeEntries(ctx context.Context, f TimeEntryFilter) ([]models.TimeEntry, error) {
	filter := bson.M{}
	if f.TaskID != "" {
		filter["taskId"] = f.TaskID
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.ProjectID != "" {
		filter["projectId"] = f.ProjectID
	}
	if f.OpenOnly {
		filter["endTime"] = nil
	}

	var entries []models.TimeEntry
	err := s.exec(func() error {
		opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
		cur, err := s.entries.Find(ctx, filter, opts)
		if err != nil {
			return fmt.Errorf("store: list time entries: %w", err)
		}
		if err := cur.All(ctx, &entries); err != nil {
			return fmt.Errorf("store: decode time entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func findByID(ctx context.Context, coll *mongo.Collection, kind, id string, out interface{}) error {
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("store: %s %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: get %s %s: %w", kind, id, err)
	}
	return nil
}

// replaceByID overwrites the whole document, inserting it if it is gone.
func replaceByID(ctx context.Context, coll *mongo.Collection, kind, id string, doc interface{}) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("store: save %s %s: %w", kind, id, err)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: delete %s %s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("store: %s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
