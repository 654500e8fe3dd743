// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds the account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type cloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryBackend stores blobs as Cloudinary assets. Keys map to public IDs
// by dropping the extension; keys under "videos/" are video resources.
type CloudinaryBackend struct {
	cld      *cloudinary.Cloudinary
	uploader cloudinaryUploader
}

// NewCloudinaryBackend creates a backend for the given account.
func NewCloudinaryBackend(cfg CloudinaryConfig) (*CloudinaryBackend, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryBackend{cld: cld, uploader: &cld.Upload}, nil
}

func (b *CloudinaryBackend) Name() string { return "cloudinary" }

func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}

func resourceType(key string) string {
	if strings.HasPrefix(key, "videos/") {
		return "video"
	}
	return "image"
}

func (b *CloudinaryBackend) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	res, err := b.uploader.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID(key),
		ResourceType: resourceType(key),
		Overwrite:    api.Bool(false),
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return errors.New("cloudinary returned no url")
	}
	return nil
}

// URL builds the delivery URL locally; Cloudinary URLs do not expire.
func (b *CloudinaryBackend) URL(_ context.Context, key string) (string, time.Time, error) {
	id := publicID(key)
	if resourceType(key) == "video" {
		a, err := b.cld.Video(id)
		if err != nil {
			return "", time.Time{}, err
		}
		u, err := a.String()
		return u, time.Time{}, err
	}
	a, err := b.cld.Image(id)
	if err != nil {
		return "", time.Time{}, err
	}
	u, err := a.String()
	return u, time.Time{}, err
}

// Delete destroys the asset. "not found" counts as success.
func (b *CloudinaryBackend) Delete(ctx context.Context, key string) error {
	res, err := b.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(key),
		ResourceType: resourceType(key),
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return fmt.Errorf("cloudinary destroy: %s", res.Result)
	}
}
