// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/campus-cms/internal/storage"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("not found")

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Message()
}

// Message renders all field errors in a stable order, e.g.
// "Title is required; Description must be at most 2000 characters".
func (e *ValidationError) Message() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fieldLabel(k)+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// fieldLabel turns "media.url" into "Media url" and "youtubeUrl" into "Youtube url".
func fieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case r == '.':
			b.WriteByte(' ')
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		case i == 0 && r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StorageError is a blob backend failure. Its message is not shown to users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError is a database failure. Its message is not shown to users.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// uploadError classifies a gateway error: policy violations become field
// validation errors, everything else a StorageError.
func uploadError(field string, err error) error {
	var pe *storage.PolicyError
	if errors.As(err, &pe) {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			return newValidationError(field, "is too large ("+pe.Detail+")")
		case errors.Is(err, storage.ErrTypeNotAllowed):
			return newValidationError(field, "has a file type that is not allowed")
		case errors.Is(err, storage.ErrEmptyFile):
			return newValidationError(field, "is empty")
		}
	}
	return &StorageError{Op: "upload", Err: err}
}
