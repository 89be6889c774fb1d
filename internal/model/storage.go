package model

import (
	"context"
	"io"
)

// Storage is the object-store abstraction used for user avatars.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
