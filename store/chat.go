package store

// ChatThread is a single conversation thread scoped to one user.
type ChatThread struct {
	ID        int32
	UID       string
	CreatorID string
	Title     string
	CreatedTs int64
	UpdatedTs int64
}

// ChatMessage is a single message within a thread. Messages are append-only:
// they are never edited or deleted after creation.
type ChatMessage struct {
	ID        int32
	UID       string // UUID announced to the client as message_id
	ThreadID  int32
	Role      string // "user" | "assistant"
	Content   string
	// ActionSummary is a JSON array describing the task actions performed
	// during the turn that produced this message. Empty when none occurred.
	ActionSummary string
	CreatedTs     int64
}

// FindChatThread filters for ListChatThreads.
type FindChatThread struct {
	UID       *string
	CreatorID *string
	Limit     *int
	Offset    *int
}

// UpdateChatThread carries fields accepted by UpdateChatThread. updated_ts is
// always bumped, so an empty update acts as a touch.
type UpdateChatThread struct {
	UID   string
	Title *string
}

// FindChatMessage filters for ListChatMessages. OrderDesc reverses the
// default chronological order; used to fetch the tail of a long thread.
type FindChatMessage struct {
	ThreadID  int32
	Limit     *int
	Offset    *int
	OrderDesc bool
}
