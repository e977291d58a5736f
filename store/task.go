package store

// Task represents a single todo item owned by one user.
type Task struct {
	ID          string // UUID
	CreatorID   string // subject claim of the owning user
	Title       string
	Description string
	Completed   bool
	RowStatus   RowStatus
	CreatedTs   int64
	UpdatedTs   int64
}

// FindTask filters for ListTasks. Soft-deleted rows are never returned
// regardless of the filter.
type FindTask struct {
	ID        *string
	CreatorID *string
	Completed *bool
	Limit     *int
	Offset    *int
}

// UpdateTask carries fields accepted by UpdateTask. Only rows in the NORMAL
// state match; a nil result means no owned, active row with that ID exists.
type UpdateTask struct {
	ID          string
	CreatorID   string
	Title       *string
	Description *string
	Completed   *bool
	RowStatus   *RowStatus
}
