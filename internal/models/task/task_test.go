package task_test

import (
	"encoding/json"
	"schoolPlanner/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.October, 20, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// TestNew checks validation on task creation
func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		draft       task.Draft
		policy      task.Policy
		expectField string
		check       func(t *testing.T, created *task.Task)
	}{
		{
			name:  "defaults applied",
			draft: task.Draft{Title: "  Read chapter 4  "},
			check: func(t *testing.T, created *task.Task) {
				assert.Equal(t, "Read chapter 4", created.Title)
				assert.Equal(t, task.PriorityMedium, created.Priority)
				assert.Equal(t, task.StatusTodo, created.Status)
				assert.Equal(t, task.DefaultCategory, created.Category)
				assert.Nil(t, created.DueDate)
				assert.Nil(t, created.UpdatedAt)
				assert.Equal(t, now, created.CreatedAt)
				assert.Empty(t, created.ID)
			},
		},
		{
			name: "all fields",
			draft: task.Draft{
				Title:       "Complete Math Assignment",
				Description: "Exercises 1-10",
				DueDate:     "2025-10-30",
				Priority:    "high",
				Category:    "Math",
			},
			check: func(t *testing.T, created *task.Task) {
				require.NotNil(t, created.DueDate)
				assert.Equal(t, "2025-10-30", created.DueDate.String())
				assert.Equal(t, task.PriorityHigh, created.Priority)
				assert.Equal(t, "Math", created.Category)
				assert.Equal(t, "Exercises 1-10", created.Description)
			},
		},
		{
			name:        "blank title",
			draft:       task.Draft{Title: "   "},
			expectField: "title",
		},
		{
			name:        "malformed due date",
			draft:       task.Draft{Title: "Essay", DueDate: "30/10/2025"},
			expectField: "due_date",
		},
		{
			name:        "impossible calendar date",
			draft:       task.Draft{Title: "Essay", DueDate: "2025-02-30"},
			expectField: "due_date",
		},
		{
			name:        "unknown priority",
			draft:       task.Draft{Title: "Essay", Priority: "urgent"},
			expectField: "priority",
		},
		{
			name:  "past due date allowed by default",
			draft: task.Draft{Title: "Essay", DueDate: "2020-01-01"},
			check: func(t *testing.T, created *task.Task) {
				assert.Equal(t, "2020-01-01", created.DueDate.String())
			},
		},
		{
			name:        "past due date rejected by policy",
			draft:       task.Draft{Title: "Essay", DueDate: "2025-10-19"},
			policy:      task.Policy{RejectPastDueDates: true},
			expectField: "due_date",
		},
		{
			name:   "today is not in the past",
			draft:  task.Draft{Title: "Essay", DueDate: "2025-10-20"},
			policy: task.Policy{RejectPastDueDates: true},
			check: func(t *testing.T, created *task.Task) {
				assert.Equal(t, "2025-10-20", created.DueDate.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := task.New(tt.draft, now, tt.policy)
			if tt.expectField != "" {
				var vErr *task.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.expectField, vErr.Field)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			tt.check(t, created)
		})
	}
}

// TestParseStatus checks canonical names and aliases
func TestParseStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected task.Status
		wantErr  bool
	}{
		{in: "TODO", expected: task.StatusTodo},
		{in: "pending", expected: task.StatusTodo},
		{in: "in-progress", expected: task.StatusInProgress},
		{in: "In Progress", expected: task.StatusInProgress},
		{in: "IN_PROGRESS", expected: task.StatusInProgress},
		{in: "completed", expected: task.StatusCompleted},
		{in: "done", expected: task.StatusCompleted},
		{in: "", wantErr: true},
		{in: "archived", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := task.ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParsePriority(t *testing.T) {
	p, err := task.ParsePriority(" low ")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityLow, p)

	_, err = task.ParsePriority("critical")
	assert.Error(t, err)
}

// TestPatch_Apply checks partial updates
func TestPatch_Apply(t *testing.T) {
	due := task.NewDate(2025, time.November, 1)
	original := &task.Task{
		ID:       "1",
		Title:    "Science Lab",
		DueDate:  &due,
		Priority: task.PriorityLow,
		Status:   task.StatusTodo,
		Category: "Science",
	}

	t.Run("applies only supplied fields", func(t *testing.T) {
		patched, err := task.NewPatch(
			task.WithStatus("in-progress"),
			task.WithPriority("HIGH"),
		).Apply(original)

		require.NoError(t, err)
		assert.Equal(t, task.StatusInProgress, patched.Status)
		assert.Equal(t, task.PriorityHigh, patched.Priority)
		assert.Equal(t, "Science Lab", patched.Title)
		assert.Equal(t, "2025-11-01", patched.DueDate.String())
		assert.Equal(t, task.StatusTodo, original.Status, "original must stay untouched")
	})

	t.Run("empty due date clears it", func(t *testing.T) {
		patched, err := task.NewPatch(task.WithDueDate("")).Apply(original)
		require.NoError(t, err)
		assert.Nil(t, patched.DueDate)
		assert.NotNil(t, original.DueDate)
	})

	t.Run("empty category resets to default", func(t *testing.T) {
		patched, err := task.NewPatch(task.WithCategory(" ")).Apply(original)
		require.NoError(t, err)
		assert.Equal(t, task.DefaultCategory, patched.Category)
	})

	t.Run("one invalid field rejects the whole patch", func(t *testing.T) {
		patched, err := task.Patch{
			Title:  strPtr("New title"),
			Status: strPtr("blocked"),
		}.Apply(original)

		var vErr *task.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "status", vErr.Field)
		assert.Nil(t, patched)
		assert.Equal(t, "Science Lab", original.Title)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		_, err := task.NewPatch(task.WithTitle("")).Apply(original)
		assert.Error(t, err)
	})

	assert.True(t, task.Patch{}.IsEmpty())
	assert.False(t, task.NewPatch(task.WithDescription("")).IsEmpty())
}

func TestClone(t *testing.T) {
	due := task.NewDate(2025, time.December, 24)
	updated := now
	original := &task.Task{ID: "7", Title: "Gifts", DueDate: &due, UpdatedAt: &updated}

	c := original.Clone()
	assert.Equal(t, original, c)

	*c.DueDate = task.NewDate(2026, time.January, 1)
	*c.UpdatedAt = now.Add(time.Hour)
	assert.Equal(t, "2025-12-24", original.DueDate.String())
	assert.Equal(t, now, *original.UpdatedAt)
}

func TestDate_JSON(t *testing.T) {
	due := task.NewDate(2025, time.October, 30)
	data, err := json.Marshal(struct {
		Due *task.Date `json:"due"`
	}{Due: &due})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-10-30"}`, string(data))

	var decoded struct {
		Due *task.Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-10-30"}`), &decoded))
	assert.True(t, due.Equal(*decoded.Due))

	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &decoded))
	assert.Nil(t, decoded.Due)

	assert.Error(t, json.Unmarshal([]byte(`{"due":"tomorrow"}`), &decoded))
}

func TestFilterAndSort(t *testing.T) {
	d1 := task.NewDate(2025, time.October, 25)
	d2 := task.NewDate(2025, time.October, 22)
	tasks := []*task.Task{
		{ID: "1", Title: "b essay", Priority: task.PriorityLow, Status: task.StatusTodo, Category: "English", DueDate: &d1, CreatedAt: now},
		{ID: "2", Title: "A quiz", Priority: task.PriorityHigh, Status: task.StatusCompleted, Category: "Math", CreatedAt: now.Add(time.Minute)},
		{ID: "3", Title: "c lab", Priority: task.PriorityHigh, Status: task.StatusTodo, Category: "math", DueDate: &d2, CreatedAt: now.Add(-time.Minute)},
	}

	ids := func(ts []*task.Task) []string {
		res := []string{}
		for _, t := range ts {
			res = append(res, t.ID)
		}
		return res
	}

	f := task.Filter{Category: "MATH", Status: task.StatusTodo}
	var matched []*task.Task
	for _, tk := range tasks {
		if f.Match(tk) {
			matched = append(matched, tk)
		}
	}
	assert.Equal(t, []string{"3"}, ids(matched))

	sortCases := map[task.SortField][]string{
		task.SortDueDate:   {"3", "1", "2"},
		task.SortPriority:  {"2", "3", "1"},
		task.SortCreatedAt: {"3", "1", "2"},
		task.SortTitle:     {"2", "1", "3"},
		task.SortNone:      {"1", "2", "3"},
	}
	for field, expected := range sortCases {
		view := append([]*task.Task(nil), tasks...)
		task.Sort(view, field)
		assert.Equal(t, expected, ids(view), "sort by %q", field)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(tasks), "sorting a view must not reorder the source")

	_, err := task.ParseSortField("colour")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	past := task.NewDate(2025, time.October, 1)
	tasks := []*task.Task{
		{Status: task.StatusTodo, DueDate: &past},
		{Status: task.StatusCompleted, DueDate: &past},
		{Status: task.StatusInProgress},
	}

	s := task.Summarize(tasks, task.DateOf(now))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 1, s.ByStatus[task.StatusTodo])
	assert.Equal(t, 1, s.ByStatus[task.StatusCompleted])
	assert.Equal(t, 1, s.ByStatus[task.StatusInProgress])
}
