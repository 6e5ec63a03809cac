package repository

import "errors"

// ErrCorrupt means stored data exists but cannot be turned back into tasks.
// Callers must not treat it as "no data".
var ErrCorrupt = errors.New("stored tasks are corrupt")
