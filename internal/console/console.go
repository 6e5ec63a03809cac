// Package console is the line-oriented menu front end for the planner.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"schoolPlanner/internal/models/task"
	"schoolPlanner/internal/service"
	"strings"

	"github.com/dustin/go-humanize"
)

type Service interface {
	CreateTask(ctx context.Context, draft task.Draft) (*task.Task, error)
	GetTaskByID(id string) (*task.Task, bool)
	ListTasks() []*task.Task
	UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error)
	UpdateStatus(ctx context.Context, id string, status string) (*task.Task, error)
	CompleteTask(ctx context.Context, id string) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) bool
	FilterByStatus(status string) []*task.Task
	FilterByPriority(priority string) []*task.Task
	Search(query string) []*task.Task
	Summary() task.Summary
	Today() task.Date
	Dirty() (bool, error)
}

var errQuit = errors.New("quit")

type action struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

type Console struct {
	svc     Service
	in      *bufio.Scanner
	out     io.Writer
	actions []action
}

func New(svc Service, in io.Reader, out io.Writer) *Console {
	c := &Console{svc: svc, in: bufio.NewScanner(in), out: out}
	c.actions = []action{
		{"1", "Add task", c.addTask},
		{"2", "List tasks", c.listTasks},
		{"3", "Filter by status", c.filterByStatus},
		{"4", "Filter by priority", c.filterByPriority},
		{"5", "Search tasks", c.search},
		{"6", "Update task", c.updateTask},
		{"7", "Change status", c.changeStatus},
		{"8", "Mark task complete", c.completeTask},
		{"9", "Delete task", c.deleteTask},
		{"10", "Summary", c.summary},
		{"0", "Exit", func(context.Context) error { return errQuit }},
	}
	return c
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		c.printMenu()
		choice, ok := c.prompt("Choose an option")
		if !ok {
			c.println("\nGoodbye!")
			return c.in.Err()
		}

		act := c.lookup(choice)
		if act == nil {
			c.println("Unknown option, try again.")
			continue
		}

		err := act.run(ctx)
		if errors.Is(err, errQuit) {
			c.println("Goodbye!")
			return nil
		}
		if err != nil {
			c.printError(err)
			continue
		}
		c.warnIfUnsaved()
	}
}

func (c *Console) lookup(key string) *action {
	for i := range c.actions {
		if c.actions[i].key == key {
			return &c.actions[i]
		}
	}
	return nil
}

func (c *Console) printMenu() {
	c.println("\n=== School Planner ===")
	for _, a := range c.actions {
		c.printf("%2s. %s\n", a.key, a.label)
	}
}

func (c *Console) addTask(ctx context.Context) error {
	draft := task.Draft{}
	draft.Title, _ = c.prompt("Title")
	draft.Description, _ = c.prompt("Description (optional)")
	draft.DueDate, _ = c.prompt("Due date YYYY-MM-DD (optional)")
	draft.Priority, _ = c.prompt("Priority LOW/MEDIUM/HIGH (default MEDIUM)")
	draft.Category, _ = c.prompt("Category (default general)")

	created, err := c.svc.CreateTask(ctx, draft)
	if err != nil {
		return err
	}
	c.printf("Task added with id %s.\n", created.ID)
	return nil
}

func (c *Console) listTasks(context.Context) error {
	c.printTasks(c.svc.ListTasks())
	return nil
}

func (c *Console) filterByStatus(context.Context) error {
	status, _ := c.prompt("Status TODO/IN_PROGRESS/COMPLETED")
	c.printTasks(c.svc.FilterByStatus(status))
	return nil
}

func (c *Console) filterByPriority(context.Context) error {
	priority, _ := c.prompt("Priority LOW/MEDIUM/HIGH")
	c.printTasks(c.svc.FilterByPriority(priority))
	return nil
}

func (c *Console) search(context.Context) error {
	query, _ := c.prompt("Search for")
	c.printTasks(c.svc.Search(query))
	return nil
}

// updateTask asks for every field; a blank answer keeps the current value.
func (c *Console) updateTask(ctx context.Context) error {
	id, _ := c.prompt("Task id")
	current, ok := c.svc.GetTaskByID(id)
	if !ok {
		return service.NewNotFound("task", id)
	}

	var opts []task.PatchOption
	ask := func(label, value string, with func(string) task.PatchOption) {
		answer, _ := c.prompt(fmt.Sprintf("%s [%s]", label, value))
		if answer != "" {
			opts = append(opts, with(answer))
		}
	}

	due := ""
	if current.DueDate != nil {
		due = current.DueDate.String()
	}
	ask("Title", current.Title, task.WithTitle)
	ask("Description", current.Description, task.WithDescription)
	ask("Due date, '-' to clear", due, func(v string) task.PatchOption {
		if v == "-" {
			v = ""
		}
		return task.WithDueDate(v)
	})
	ask("Priority", string(current.Priority), task.WithPriority)
	ask("Category", current.Category, task.WithCategory)

	if len(opts) == 0 {
		c.println("Nothing to change.")
		return nil
	}
	if _, err := c.svc.UpdateTask(ctx, id, task.NewPatch(opts...)); err != nil {
		return err
	}
	c.println("Task updated.")
	return nil
}

func (c *Console) changeStatus(ctx context.Context) error {
	id, _ := c.prompt("Task id")
	status, _ := c.prompt("New status TODO/IN_PROGRESS/COMPLETED")

	updated, err := c.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	c.printf("Task %s is now %s.\n", updated.ID, statusLabel(updated.Status))
	return nil
}

func (c *Console) completeTask(ctx context.Context) error {
	id, _ := c.prompt("Task id")
	if _, err := c.svc.CompleteTask(ctx, id); err != nil {
		return err
	}
	c.println("Task marked as completed.")
	return nil
}

func (c *Console) deleteTask(ctx context.Context) error {
	id, _ := c.prompt("Task id")
	if !c.svc.DeleteTask(ctx, id) {
		c.printf("No task with id %s.\n", id)
		return nil
	}
	c.println("Task deleted.")
	return nil
}

func (c *Console) summary(context.Context) error {
	s := c.svc.Summary()
	c.printf("Total: %d | To do: %d | In progress: %d | Completed: %d | Overdue: %d\n",
		s.Total, s.ByStatus[task.StatusTodo], s.ByStatus[task.StatusInProgress],
		s.ByStatus[task.StatusCompleted], s.Overdue)
	return nil
}

func (c *Console) printTasks(tasks []*task.Task) {
	if len(tasks) == 0 {
		c.println("No tasks found.")
		return
	}

	today := c.svc.Today()
	for _, t := range tasks {
		c.printf("[%s] %s (%s, %s, %s) due: %s\n",
			t.ID, t.Title, statusLabel(t.Status), strings.ToLower(string(t.Priority)), t.Category, dueLabel(t, today))
		if t.Description != "" {
			c.printf("     %s\n", t.Description)
		}
	}
}

func (c *Console) printError(err error) {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		c.printf("Error: %s\n", busErr.Message)
		if service.IsCode(err, service.CodeNotFound) {
			c.println("Use option 2 to see the task ids.")
		}
		return
	}
	c.printf("Error: %v\n", err)
}

func (c *Console) warnIfUnsaved() {
	if dirty, err := c.svc.Dirty(); dirty {
		c.printf("Warning: changes are kept in memory but could not be saved (%v).\n", err)
	}
}

// prompt reads one trimmed line. ok is false once input is exhausted.
func (c *Console) prompt(label string) (string, bool) {
	c.printf("%s: ", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func statusLabel(s task.Status) string {
	return strings.ReplaceAll(strings.ToLower(string(s)), "_", " ")
}

// dueLabel renders the due date with a relative hint such as "3 days left".
func dueLabel(t *task.Task, today task.Date) string {
	if t.DueDate == nil {
		return "none"
	}
	due := t.DueDate.String()

	switch {
	case t.Status == task.StatusCompleted:
		return due
	case t.DueDate.Equal(today):
		return due + " (today)"
	}
	return fmt.Sprintf("%s (%s)", due, humanize.RelTime(t.DueDate.Time(), today.Time(), "overdue", "left"))
}

var _ Service = (*service.TaskService)(nil)
