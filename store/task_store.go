package store

import "context"

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, create *Task) (*Task, error) {
	return s.driver.CreateTask(ctx, create)
}

// ListTasks returns active tasks matching the given filter, newest first.
func (s *Store) ListTasks(ctx context.Context, find *FindTask) ([]*Task, error) {
	return s.driver.ListTasks(ctx, find)
}

// CountTasks returns the number of active tasks matching the given filter.
func (s *Store) CountTasks(ctx context.Context, find *FindTask) (int, error) {
	return s.driver.CountTasks(ctx, find)
}

// GetTask returns the first active task matching the given filter, or nil
// when none matches.
func (s *Store) GetTask(ctx context.Context, find *FindTask) (*Task, error) {
	list, err := s.driver.ListTasks(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateTask mutates a task's fields and bumps its updated timestamp. It
// returns nil when no owned, active row matched.
func (s *Store) UpdateTask(ctx context.Context, update *UpdateTask) (*Task, error) {
	return s.driver.UpdateTask(ctx, update)
}
