package task

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field '%s': %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Draft holds the raw input of a task that is about to be created.
// Empty strings mean "not supplied".
type Draft struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Category    string
}

// Policy collects the optional validation rules a store may switch on.
type Policy struct {
	// RejectPastDueDates refuses creation when the due date is earlier than the creation date.
	RejectPastDueDates bool
}

// New validates a draft and builds the task it describes. ID is left for the store to assign.
func New(d Draft, now time.Time, policy Policy) (*Task, error) {
	title, err := ValidateTitle(d.Title)
	if err != nil {
		return nil, err
	}

	priority := PriorityMedium
	if strings.TrimSpace(d.Priority) != "" {
		if priority, err = ParsePriority(d.Priority); err != nil {
			return nil, err
		}
	}

	var due *Date
	if strings.TrimSpace(d.DueDate) != "" {
		parsed, err := ParseDate(d.DueDate)
		if err != nil {
			return nil, invalid("due_date", err.Error())
		}
		if policy.RejectPastDueDates && parsed.Before(DateOf(now)) {
			return nil, invalid("due_date", "must not be earlier than today")
		}
		due = &parsed
	}

	return &Task{
		Title:       title,
		Description: d.Description,
		DueDate:     due,
		Priority:    priority,
		Status:      StatusTodo,
		Category:    normalizeCategory(d.Category),
		CreatedAt:   now,
	}, nil
}

func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", invalid("title", "must not be empty")
	}
	return trimmed, nil
}

// ParseStatus accepts the canonical names as well as the lowercase spellings
// used by older clients (pending, in-progress, done).
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)

	switch key {
	case "todo", "pending":
		return StatusTodo, nil
	case "in_progress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "":
		return "", invalid("status", "must not be empty")
	}
	return "", invalid("status", fmt.Sprintf("unknown status %q", s))
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if p == "" {
		return "", invalid("priority", "must not be empty")
	}
	if !p.Valid() {
		return "", invalid("priority", fmt.Sprintf("unknown priority %q", s))
	}
	return p, nil
}

func normalizeCategory(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return DefaultCategory
	}
	return trimmed
}
