package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/codeWithHak/sorted/store"
)

func (d *DB) CreateChatThread(ctx context.Context, create *store.ChatThread) (*store.ChatThread, error) {
	stmt := `INSERT INTO chat_thread (uid, creator_id, title)
	         VALUES (?, ?, ?)
	         RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt, create.UID, create.CreatorID, create.Title).
		Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func threadWhere(find *store.FindChatThread) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = ?"), append(args, *v)
	}
	return where, args
}

func (d *DB) ListChatThreads(ctx context.Context, find *store.FindChatThread) ([]*store.ChatThread, error) {
	where, args := threadWhere(find)
	query := fmt.Sprintf(
		`SELECT id, uid, creator_id, title, created_ts, updated_ts
		 FROM chat_thread WHERE %s ORDER BY updated_ts DESC, id DESC`,
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

	var list []*store.ChatThread
	for rows.Next() {
		t := &store.ChatThread{}
		if err := rows.Scan(&t.ID, &t.UID, &t.CreatorID, &t.Title, &t.CreatedTs, &t.UpdatedTs); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (d *DB) CountChatThreads(ctx context.Context, find *store.FindChatThread) (int, error) {
	where, args := threadWhere(find)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM chat_thread WHERE %s`, strings.Join(where, " AND "))
	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *DB) UpdateChatThread(ctx context.Context, update *store.UpdateChatThread) (*store.ChatThread, error) {
	set, args := []string{"updated_ts = unixepoch()"}, []any{}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	args = append(args, update.UID)
	stmt := fmt.Sprintf(
		`UPDATE chat_thread SET %s WHERE uid = ?
		 RETURNING id, uid, creator_id, title, created_ts, updated_ts`,
		strings.Join(set, ", "),
	)
	t := &store.ChatThread{}
	err := d.db.QueryRowContext(ctx, stmt, args...).
		Scan(&t.ID, &t.UID, &t.CreatorID, &t.Title, &t.CreatedTs, &t.UpdatedTs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	stmt := `INSERT INTO chat_message (uid, thread_id, role, content, action_summary)
	         VALUES (?, ?, ?, ?, ?)
	         RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.ThreadID, create.Role, create.Content, create.ActionSummary,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	order := "ASC"
	if find.OrderDesc {
		order = "DESC"
	}
	query := `SELECT id, uid, thread_id, role, content, action_summary, created_ts
	          FROM chat_message WHERE thread_id = ? ORDER BY id ` + order
	if v := find.Limit; v != nil {
		query += fmt.Sprintf(" LIMIT %d", *v)
		if o := find.Offset; o != nil {
			query += fmt.Sprintf(" OFFSET %d", *o)
		}
	}
	rows, err := d.db.QueryContext(ctx, query, find.ThreadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.ChatMessage
	for rows.Next() {
		m := &store.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.UID, &m.ThreadID, &m.Role, &m.Content, &m.ActionSummary, &m.CreatedTs); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (d *DB) CountChatMessages(ctx context.Context, find *store.FindChatMessage) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_message WHERE thread_id = ?`, find.ThreadID,
	).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
