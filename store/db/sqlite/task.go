package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codeWithHak/sorted/store"
)

func (d *DB) CreateTask(ctx context.Context, create *store.Task) (*store.Task, error) {
	stmt := `INSERT INTO task (id, creator_id, title, description, completed)
	         VALUES (?, ?, ?, ?, ?)
	         RETURNING row_status, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ID, create.CreatorID, create.Title, create.Description, create.Completed,
	).Scan(&create.RowStatus, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func taskWhere(find *store.FindTask) ([]string, []any) {
	where, args := []string{"row_status = 'NORMAL'"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = ?"), append(args, *v)
	}
	if v := find.Completed; v != nil {
		where, args = append(where, "completed = ?"), append(args, *v)
	}
	return where, args
}

func (d *DB) ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error) {
	where, args := taskWhere(find)
	query := fmt.Sprintf(
		`SELECT id, creator_id, title, description, completed, row_status, created_ts, updated_ts
		 FROM task WHERE %s ORDER BY created_ts DESC, rowid DESC`,
		strings.Join(where, " AND "),
	)
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Task
	for rows.Next() {
		t := &store.Task{}
		if err := rows.Scan(&t.ID, &t.CreatorID, &t.Title, &t.Description, &t.Completed, &t.RowStatus, &t.CreatedTs, &t.UpdatedTs); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (d *DB) CountTasks(ctx context.Context, find *store.FindTask) (int, error) {
	where, args := taskWhere(find)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM task WHERE %s`, strings.Join(where, " AND "))
	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *DB) UpdateTask(ctx context.Context, update *store.UpdateTask) (*store.Task, error) {
	set, args := []string{}, []any{}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = ?"), append(args, *v)
	}
	if v := update.Completed; v != nil {
		set, args = append(set, "completed = ?"), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = ?"), append(args, string(*v))
	}
	set = append(set, "updated_ts = unixepoch()")
	args = append(args, update.ID, update.CreatorID)
	stmt := fmt.Sprintf(
		`UPDATE task SET %s
		 WHERE id = ? AND creator_id = ? AND row_status = 'NORMAL'
		 RETURNING id, creator_id, title, description, completed, row_status, created_ts, updated_ts`,
		strings.Join(set, ", "),
	)
	t := &store.Task{}
	err := d.db.QueryRowContext(ctx, stmt, args...).
		Scan(&t.ID, &t.CreatorID, &t.Title, &t.Description, &t.Completed, &t.RowStatus, &t.CreatedTs, &t.UpdatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
