package codec_test

import (
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/repository"
	"schoolPlanner/internal/repository/task/codec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks() []*task.Task {
	created := time.Date(2025, time.October, 20, 8, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	due := task.NewDate(2025, time.October, 30)
	return []*task.Task{
		{
			ID:          "1",
			Title:       "Complete Math Assignment",
			Description: "Chapter 3",
			DueDate:     &due,
			Priority:    task.PriorityHigh,
			Status:      task.StatusInProgress,
			Category:    "Math",
			CreatedAt:   created,
			UpdatedAt:   &updated,
		},
		{
			ID:        "2",
			Title:     "Science Lab",
			Priority:  task.PriorityMedium,
			Status:    task.StatusTodo,
			Category:  task.DefaultCategory,
			CreatedAt: created.Add(time.Minute),
		},
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleTasks()

	data, err := codec.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date": "2025-10-30"`)
	assert.Contains(t, string(data), `"due_date": null`)

	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshal_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n", "[]"} {
		tasks, err := codec.Unmarshal([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, tasks)
	}
}

func TestUnmarshal_DefaultsAndAliases(t *testing.T) {
	data := `[
		{"id": "k3f9", "title": "Read poem", "notes": "pages 10-12", "subject": "English", "status": "pending"},
		{"id": "x1", "title": "Lab", "status": "in-progress", "priority": "low"}
	]`

	tasks, err := codec.Unmarshal([]byte(data))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "pages 10-12", tasks[0].Description)
	assert.Equal(t, "English", tasks[0].Category)
	assert.Equal(t, task.StatusTodo, tasks[0].Status)
	assert.Equal(t, task.PriorityMedium, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)

	assert.Equal(t, task.StatusInProgress, tasks[1].Status)
	assert.Equal(t, task.PriorityLow, tasks[1].Priority)
	assert.Equal(t, task.DefaultCategory, tasks[1].Category)
}

func TestUnmarshal_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{{{`},
		{name: "object instead of list", data: `{"id": "1"}`},
		{name: "missing id", data: `[{"title": "x"}]`},
		{name: "blank title", data: `[{"id": "1", "title": " "}]`},
		{name: "unknown status", data: `[{"id": "1", "title": "x", "status": "archived"}]`},
		{name: "unknown priority", data: `[{"id": "1", "title": "x", "priority": "urgent"}]`},
		{name: "bad due date", data: `[{"id": "1", "title": "x", "due_date": "soon"}]`},
		{name: "duplicate id", data: `[{"id": "1", "title": "x"}, {"id": "1", "title": "y"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := codec.Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, repository.ErrCorrupt)
			assert.Nil(t, tasks)
		})
	}
}
