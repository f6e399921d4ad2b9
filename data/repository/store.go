package repository

import "context"

// Store is an opaque key-value store holding one JSON snapshot per collection.
type Store interface {
	// Load returns ErrNotFound when the key was never saved.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Transactor is implemented by stores that can run a read-modify-write atomically.
type Transactor interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
}
