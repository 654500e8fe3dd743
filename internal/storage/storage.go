// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage is the blob storage gateway. Uploaded files are checked
// against a per-category policy and written to one of several
// interchangeable backends: local disk, S3-compatible object storage or
// Cloudinary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Category selects the upload policy.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
)

const (
	MiB = 1 << 20

	MaxImageSize = 5 * MiB
	MaxVideoSize = 50 * MiB
)

// Policy is the size ceiling and MIME allow-list for one category.
type Policy struct {
	MaxSize      int64
	AllowedTypes []string
	// Extensions lists accepted original file extensions, lowercase with dot.
	Extensions []string
}

// DefaultPolicies returns the image and video upload policies.
func DefaultPolicies() map[Category]Policy {
	return map[Category]Policy{
		CategoryImage: {
			MaxSize:      MaxImageSize,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/gif"},
			Extensions:   []string{".jpg", ".jpeg", ".png", ".gif"},
		},
		CategoryVideo: {
			MaxSize:      MaxVideoSize,
			AllowedTypes: []string{"video/mp4", "video/webm", "video/ogg", "application/ogg"},
			Extensions:   []string{".mp4", ".webm", ".ogg", ".ogv"},
		},
	}
}

var (
	// ErrFileTooLarge is returned when an upload exceeds the category ceiling.
	ErrFileTooLarge = errors.New("file is too large")
	// ErrTypeNotAllowed is returned when the declared or detected type is
	// not in the category allow-list.
	ErrTypeNotAllowed = errors.New("file type is not allowed")
	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("file is empty")
)

// PolicyError wraps one of the policy sentinels with the limit that was hit.
type PolicyError struct {
	Err    error
	Detail string
}

func (e *PolicyError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *PolicyError) Unwrap() error { return e.Err }

// BackendError is a failure of the underlying storage backend.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Upload is a file received from a client. Reader must support seeking so
// the gateway can sniff and measure it before writing.
type Upload struct {
	Reader   io.ReadSeeker
	Size     int64
	MimeType string
	Filename string
}

// Ref identifies a stored blob. ExpiresAt is zero when URL does not expire.
type Ref struct {
	Key       string
	URL       string
	ExpiresAt time.Time
	Size      int64
	MimeType  string
}

// Backend is a blob store. Delete of a missing key must succeed.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, size int64, mimeType string) error
	URL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}
