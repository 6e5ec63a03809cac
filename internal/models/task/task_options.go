package task

// PatchOption fills one field of a Patch.
type PatchOption func(*Patch)

func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithStatus(status string) PatchOption {
	return func(p *Patch) {
		p.Status = &status
	}
}

func WithPriority(priority string) PatchOption {
	return func(p *Patch) {
		p.Priority = &priority
	}
}

// WithDueDate sets the due date; "" clears it.
func WithDueDate(dueDate string) PatchOption {
	return func(p *Patch) {
		p.DueDate = &dueDate
	}
}

func WithCategory(category string) PatchOption {
	return func(p *Patch) {
		p.Category = &category
	}
}
