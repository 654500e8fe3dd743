// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/olegiv/campus-cms/internal/storage"
)

// Minimal file headers that content sniffing recognises.
var (
	JPEGHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	MP4Header  = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0, 0, 2, 0, 'i', 's', 'o', 'm', 'm', 'p', '4', '1'}
)

// JPEGUpload returns a small valid JPEG upload.
func JPEGUpload(name string) *storage.Upload {
	data := append(append([]byte{}, JPEGHeader...), bytes.Repeat([]byte{0}, 64)...)
	return &storage.Upload{
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
		MimeType: "image/jpeg",
		Filename: name,
	}
}

// MP4Upload returns a small valid MP4 upload.
func MP4Upload(name string) *storage.Upload {
	data := append(append([]byte{}, MP4Header...), bytes.Repeat([]byte{0}, 64)...)
	return &storage.Upload{
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
		MimeType: "video/mp4",
		Filename: name,
	}
}

// TextUpload returns a plain text file declared as mimeType.
func TextUpload(name, mimeType string) *storage.Upload {
	data := []byte("just some text, not media\n")
	return &storage.Upload{
		Reader:   bytes.NewReader(data),
		Size:     int64(len(data)),
		MimeType: mimeType,
		Filename: name,
	}
}

// MemoryBackend is a storage.Backend that keeps blobs in memory.
type MemoryBackend struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	signs   int
	Puts    int
	Deletes int

	// URLTTL, when set, makes URLs expire URLTTL after Now().
	URLTTL time.Duration
	Now    func() time.Time

	PutErr    error
	URLErr    error
	DeleteErr error
}

// NewMemoryBackend creates an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte), Now: time.Now}
}

// NewMemoryGateway wraps a new MemoryBackend in a gateway with the default
// upload policies.
func NewMemoryGateway() (*storage.Gateway, *MemoryBackend) {
	b := NewMemoryBackend()
	return storage.NewGateway(b, TestLoggerSilent()), b
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Puts++
	if b.PutErr != nil {
		return b.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.blobs[key] = data
	return nil
}

// URL returns "https://blobs.test/<key>?sig=<n>", n increasing per call.
func (b *MemoryBackend) URL(_ context.Context, key string) (string, time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.URLErr != nil {
		return "", time.Time{}, b.URLErr
	}
	if _, ok := b.blobs[key]; !ok {
		return "", time.Time{}, errors.New("no such blob: " + key)
	}
	b.signs++
	var exp time.Time
	if b.URLTTL > 0 {
		exp = b.Now().Add(b.URLTTL).UTC()
	}
	return fmt.Sprintf("https://blobs.test/%s?sig=%d", key, b.signs), exp, nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deletes++
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.blobs, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (b *MemoryBackend) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.blobs))
	for k := range b.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is stored.
func (b *MemoryBackend) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}
