// Package codec converts task collections to and from their persisted form.
// Every adapter funnels loaded rows through Record.Task, so defaults and
// corruption checks are the same whatever the backend.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"strings"
	"time"
)

type Record struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	DueDate     *string    `json:"due_date" bson:"due_date"`
	Priority    string     `json:"priority" bson:"priority"`
	Status      string     `json:"status" bson:"status"`
	Category    string     `json:"category" bson:"category"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" bson:"updated_at"`
}

// jsonRecord also accepts the field names written by the browser planner.
type jsonRecord struct {
	Record
	Notes   *string `json:"notes"`
	Subject *string `json:"subject"`
}

func FromTask(t *task.Task) Record {
	r := Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Category:    t.Category,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		due := t.DueDate.String()
		r.DueDate = &due
	}
	return r
}

func FromTasks(tasks []*task.Task) []Record {
	records := make([]Record, len(tasks))
	for i, t := range tasks {
		records[i] = FromTask(t)
	}
	return records
}

// Task rebuilds a task, defaulting absent fields. Values that can never have
// been written by the store are reported as ErrCorrupt.
func (r Record) Task() (*task.Task, error) {
	if strings.TrimSpace(r.ID) == "" {
		return nil, fmt.Errorf("%w: task without id", repository.ErrCorrupt)
	}
	title, err := task.ValidateTitle(r.Title)
	if err != nil {
		return nil, corrupt(r.ID, err)
	}

	t := &task.Task{
		ID:          r.ID,
		Title:       title,
		Description: r.Description,
		Priority:    task.PriorityMedium,
		Status:      task.StatusTodo,
		Category:    task.DefaultCategory,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.Priority != "" {
		if t.Priority, err = task.ParsePriority(r.Priority); err != nil {
			return nil, corrupt(r.ID, err)
		}
	}
	if r.Status != "" {
		if t.Status, err = task.ParseStatus(r.Status); err != nil {
			return nil, corrupt(r.ID, err)
		}
	}
	if strings.TrimSpace(r.Category) != "" {
		t.Category = strings.TrimSpace(r.Category)
	}
	if r.DueDate != nil && strings.TrimSpace(*r.DueDate) != "" {
		due, err := task.ParseDate(*r.DueDate)
		if err != nil {
			return nil, corrupt(r.ID, err)
		}
		t.DueDate = &due
	}

	return t, nil
}

// Decode converts records in order and rejects duplicate ids.
func Decode(records []Record) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		t, err := r.Task()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", repository.ErrCorrupt, t.ID)
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func Marshal(tasks []*task.Task) ([]byte, error) {
	data, err := json.MarshalIndent(FromTasks(tasks), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Unmarshal treats empty input as an empty collection.
func Unmarshal(data []byte) ([]*task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*task.Task{}, nil
	}

	var raw []jsonRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}

	records := make([]Record, len(raw))
	for i, r := range raw {
		if r.Description == "" && r.Notes != nil {
			r.Description = *r.Notes
		}
		if r.Category == "" && r.Subject != nil {
			r.Category = *r.Subject
		}
		records[i] = r.Record
	}
	return Decode(records)
}

func corrupt(id string, err error) error {
	return fmt.Errorf("%w: task %q: %v", repository.ErrCorrupt, id, err)
}
