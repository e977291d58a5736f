package store

import (
	"context"
	"database/sql"
)

// Driver is the storage backend interface implemented by each SQL dialect
// under store/db.
type Driver interface {
	GetDB() *sql.DB
	Migrate(ctx context.Context) error
	Close() error

	CreateTask(ctx context.Context, create *Task) (*Task, error)
	ListTasks(ctx context.Context, find *FindTask) ([]*Task, error)
	CountTasks(ctx context.Context, find *FindTask) (int, error)
	UpdateTask(ctx context.Context, update *UpdateTask) (*Task, error)

	CreateChatThread(ctx context.Context, create *ChatThread) (*ChatThread, error)
	ListChatThreads(ctx context.Context, find *FindChatThread) ([]*ChatThread, error)
	CountChatThreads(ctx context.Context, find *FindChatThread) (int, error)
	UpdateChatThread(ctx context.Context, update *UpdateChatThread) (*ChatThread, error)

	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	CountChatMessages(ctx context.Context, find *FindChatMessage) (int, error)
}
