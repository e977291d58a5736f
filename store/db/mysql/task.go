package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeWithHak/sorted/store"
)

func (d *DB) CreateTask(ctx context.Context, create *store.Task) (*store.Task, error) {
	now := time.Now().Unix()
	stmt := "INSERT INTO `task` (`id`, `creator_id`, `title`, `description`, `completed`, `created_ts`, `updated_ts`) VALUES (?, ?, ?, ?, ?, ?, ?)"
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.CreatorID, create.Title, create.Description, create.Completed, now, now,
	); err != nil {
		return nil, err
	}
	create.RowStatus = store.Normal
	create.CreatedTs = now
	create.UpdatedTs = now
	return create, nil
}

func taskWhere(find *store.FindTask) ([]string, []any) {
	where, args := []string{"`row_status` = 'NORMAL'"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "`creator_id` = ?"), append(args, *v)
	}
	if v := find.Completed; v != nil {
		where, args = append(where, "`completed` = ?"), append(args, *v)
	}
	return where, args
}

func (d *DB) ListTasks(ctx context.Context, find *store.FindTask) ([]*store.Task, error) {
	where, args := taskWhere(find)
	query := fmt.Sprintf(
		"SELECT `id`, `creator_id`, `title`, `description`, `completed`, `row_status`, `created_ts`, `updated_ts` FROM `task` WHERE %s ORDER BY `created_ts` DESC, `id`",
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
	query := fmt.Sprintf("SELECT COUNT(*) FROM `task` WHERE %s", strings.Join(where, " AND "))
	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *DB) UpdateTask(ctx context.Context, update *store.UpdateTask) (*store.Task, error) {
	set, args := []string{}, []any{}
	if v := update.Title; v != nil {
		set, args = append(set, "`title` = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "`description` = ?"), append(args, *v)
	}
	if v := update.Completed; v != nil {
		set, args = append(set, "`completed` = ?"), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "`row_status` = ?"), append(args, string(*v))
	}
	set, args = append(set, "`updated_ts` = ?"), append(args, time.Now().Unix())
	args = append(args, update.ID, update.CreatorID)
	stmt := fmt.Sprintf(
		"UPDATE `task` SET %s WHERE `id` = ? AND `creator_id` = ? AND `row_status` = 'NORMAL'",
		strings.Join(set, ", "),
	)
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}
	// Fetch back without the status predicate so a just-soft-deleted row is
	// still returned to the caller.
	t := &store.Task{}
	if err := d.db.QueryRowContext(ctx,
		"SELECT `id`, `creator_id`, `title`, `description`, `completed`, `row_status`, `created_ts`, `updated_ts` FROM `task` WHERE `id` = ?",
		update.ID,
	).Scan(&t.ID, &t.CreatorID, &t.Title, &t.Description, &t.Completed, &t.RowStatus, &t.CreatedTs, &t.UpdatedTs); err != nil {
		return nil, err
	}
	return t, nil
}
