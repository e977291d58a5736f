package store

// RowStatus is the lifecycle state of a task row. The transition is one-way:
// a NORMAL row may become DELETED, a DELETED row is terminal and excluded
// from every read path.
type RowStatus string

const (
	// Normal is the active state.
	Normal RowStatus = "NORMAL"
	// Deleted is the soft-deleted state.
	Deleted RowStatus = "DELETED"
)

func (s RowStatus) String() string {
	return string(s)
}
