package task

import (
	"fmt"
	"slices"
	"strings"
)

type SortField string

const (
	SortNone      SortField = ""
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortCreatedAt SortField = "created_at"
	SortTitle     SortField = "title"
)

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case SortNone, SortDueDate, SortPriority, SortCreatedAt, SortTitle:
		return f, nil
	}
	return "", invalid("sort", fmt.Sprintf("unknown sort field %q", s))
}

// Filter narrows a task list. Zero values mean "any".
type Filter struct {
	Status   Status
	Priority Priority
	Category string
	Sort     SortField
}

func (f Filter) Match(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	return true
}

// Sort orders tasks in place by field. The sort is stable, so ties keep insertion order.
// Tasks without a due date go last when sorting by due date.
func Sort(tasks []*Task, field SortField) {
	switch field {
	case SortDueDate:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Time().Compare(b.DueDate.Time())
		})
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return a.Priority.rank() - b.Priority.rank()
		})
	case SortCreatedAt:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortTitle:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		})
	}
}

// Summary counts tasks per status, the numbers the planner shows above the list.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Overdue  int            `json:"overdue"`
}

func Summarize(tasks []*Task, today Date) Summary {
	s := Summary{ByStatus: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.ByStatus[st] = 0
	}
	for _, t := range tasks {
		s.Total++
		s.ByStatus[t.Status]++
		if t.IsOverdue(today) {
			s.Overdue++
		}
	}
	return s
}
