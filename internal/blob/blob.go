// Package blob defines the object storage used for backups.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a Store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverMemory     Driver = "memory"
	DriverS3         Driver = "s3"
)

var (
	ErrExists   = errors.New("blob already exists")
	ErrNotFound = errors.New("blob not found")
)

// Info describes a stored object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a create-only object store. List returns objects sorted by key.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, key string) error
}
