// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const createMessage = `
INSERT INTO messages (name, email, subject, message, created_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id, name, email, subject, message, created_at
`

type CreateMessageParams struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage,
		arg.Name,
		arg.Email,
		arg.Subject,
		arg.Message,
		arg.CreatedAt,
	)
	var i Message
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Subject, &i.Message, &i.CreatedAt)
	return i, err
}

const listMessages = `
SELECT id, name, email, subject, message, created_at
FROM messages
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListMessages(ctx context.Context, limit int64) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, listMessages, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Message
	for rows.Next() {
		var i Message
		if err := rows.Scan(&i.ID, &i.Name, &i.Email, &i.Subject, &i.Message, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countMessages = `SELECT COUNT(*) FROM messages`

func (q *Queries) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countMessages).Scan(&count)
	return count, err
}

const deleteMessage = `DELETE FROM messages WHERE id = ?`

func (q *Queries) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteMessage, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
