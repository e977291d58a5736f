package store

import "context"

// CreateChatThread creates a new conversation thread.
func (s *Store) CreateChatThread(ctx context.Context, create *ChatThread) (*ChatThread, error) {
	return s.driver.CreateChatThread(ctx, create)
}

// ListChatThreads lists threads matching the given filter, most recently
// updated first.
func (s *Store) ListChatThreads(ctx context.Context, find *FindChatThread) ([]*ChatThread, error) {
	return s.driver.ListChatThreads(ctx, find)
}

// CountChatThreads returns the number of threads matching the given filter.
func (s *Store) CountChatThreads(ctx context.Context, find *FindChatThread) (int, error) {
	return s.driver.CountChatThreads(ctx, find)
}

// GetChatThread returns the first thread matching the given filter.
func (s *Store) GetChatThread(ctx context.Context, find *FindChatThread) (*ChatThread, error) {
	list, err := s.driver.ListChatThreads(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateChatThread updates a thread's title and/or bumps its updated
// timestamp.
func (s *Store) UpdateChatThread(ctx context.Context, update *UpdateChatThread) (*ChatThread, error) {
	return s.driver.UpdateChatThread(ctx, update)
}

// CreateChatMessage appends a new message to a thread.
func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

// ListChatMessages returns messages for a thread in chronological order.
func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

// CountChatMessages returns the number of messages in a thread.
func (s *Store) CountChatMessages(ctx context.Context, find *FindChatMessage) (int, error) {
	return s.driver.CountChatMessages(ctx, find)
}
