package task

import "strings"

// Patch is a partial update. Nil fields are left untouched.
// An empty DueDate clears the due date; an empty Category resets it to DefaultCategory.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Status == nil && p.Category == nil
}

// Apply validates every supplied field and returns a patched copy of t.
// t itself is never modified, so a failed patch leaves no trace.
func (p Patch) Apply(t *Task) (*Task, error) {
	next := t.Clone()

	if p.Title != nil {
		title, err := ValidateTitle(*p.Title)
		if err != nil {
			return nil, err
		}
		next.Title = title
	}

	if p.Priority != nil {
		priority, err := ParsePriority(*p.Priority)
		if err != nil {
			return nil, err
		}
		next.Priority = priority
	}

	if p.Status != nil {
		status, err := ParseStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		next.Status = status
	}

	if p.DueDate != nil {
		if strings.TrimSpace(*p.DueDate) == "" {
			next.DueDate = nil
		} else {
			due, err := ParseDate(*p.DueDate)
			if err != nil {
				return nil, invalid("due_date", err.Error())
			}
			next.DueDate = &due
		}
	}

	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Category != nil {
		next.Category = normalizeCategory(*p.Category)
	}

	return next, nil
}
