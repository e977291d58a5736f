package agent

// ActionKind classifies a task mutation recorded in the turn ledger.
type ActionKind string

const (
	ActionCreated   ActionKind = "created"
	ActionCompleted ActionKind = "completed"
	ActionUpdated   ActionKind = "updated"
	ActionDeleted   ActionKind = "deleted"
)

// TaskAction is one committed task mutation.
type TaskAction struct {
	Kind      ActionKind `json:"action"`
	TaskID    string     `json:"task_id"`
	TaskTitle string     `json:"title"`
}

// TurnContext is the mutable state threaded through one agent turn. It is
// created fresh per turn, mutated only by tool calls during that turn, and
// discarded when the turn ends. A turn runs as one sequential pipeline, so no
// locking is needed.
type TurnContext struct {
	UserID   string
	ThreadID string

	// Modified is set whenever a tool commits a mutation and cleared by
	// Flush once the pending batch has been drained.
	Modified bool

	pending []TaskAction
	all     []TaskAction
}

// NewTurnContext creates the context for one turn.
func NewTurnContext(userID, threadID string) *TurnContext {
	return &TurnContext{UserID: userID, ThreadID: threadID}
}

// Record appends a committed action to the ledger. Tools call it exactly once
// per affected row, in the order the rows were committed.
func (c *TurnContext) Record(kind ActionKind, taskID, taskTitle string) {
	action := TaskAction{Kind: kind, TaskID: taskID, TaskTitle: taskTitle}
	c.pending = append(c.pending, action)
	c.all = append(c.all, action)
	c.Modified = true
}

// Flush drains the actions recorded since the previous flush and clears the
// Modified flag. Repeated tool rounds within one turn each produce their own
// batch without duplicates.
func (c *TurnContext) Flush() []TaskAction {
	batch := c.pending
	c.pending = nil
	c.Modified = false
	return batch
}

// Actions returns the full-turn ledger. Unlike Flush it is not consumed; the
// output guardrail and the persisted action summary read it after streaming.
func (c *TurnContext) Actions() []TaskAction {
	return c.all
}

// HasKind reports whether any ledger entry has the given kind.
func (c *TurnContext) HasKind(kind ActionKind) bool {
	for _, a := range c.all {
		if a.Kind == kind {
			return true
		}
	}
	return false
}
