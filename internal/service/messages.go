// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/olegiv/campus-cms/internal/model"
	"github.com/olegiv/campus-cms/internal/store"
)

// MessageInput is a contact form submission.
type MessageInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,max=100,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// MessageService stores contact form submissions for the admin inbox.
type MessageService struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewMessageService creates a MessageService.
func NewMessageService(db store.DBTX, logger *slog.Logger) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{
		queries: store.New(db),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a message.
func (s *MessageService) Create(ctx context.Context, in MessageInput) (model.Message, error) {
	in = MessageInput{
		Name:    trimmed(&in.Name, ""),
		Email:   trimmed(&in.Email, ""),
		Subject: trimmed(&in.Subject, ""),
		Message: trimmed(&in.Message, ""),
	}
	if err := validateStruct(in); err != nil {
		return model.Message{}, err
	}

	row, err := s.queries.CreateMessage(ctx, store.CreateMessageParams{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now(),
	})
	if err != nil {
		return model.Message{}, &PersistenceError{Op: "create message", Err: err}
	}
	s.logger.Info("contact message received", "id", row.ID)
	return model.MessageFromStore(row), nil
}

// List returns the newest messages, up to limit.
func (s *MessageService) List(ctx context.Context, limit int) ([]model.Message, error) {
	rows, err := s.queries.ListMessages(ctx, int64(ListOptions{Limit: limit}.limit()))
	if err != nil {
		return nil, &PersistenceError{Op: "list messages", Err: err}
	}
	out := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.MessageFromStore(r))
	}
	return out, nil
}

// Delete removes a message.
func (s *MessageService) Delete(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteMessage(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete message", Err: err}
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
