package kv

import (
	"context"
	"errors"

	"github.com/raphaelgruber/flirtassist/internal/db"
)

// Surreal is a Store backed by the SurrealDB kv table.
type Surreal struct {
	client *db.Client
}

// NewSurreal wraps a connected client whose schema is initialized.
func NewSurreal(client *db.Client) *Surreal {
	return &Surreal{client: client}
}

func (s *Surreal) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.GetValue(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *Surreal) Set(ctx context.Context, key string, value []byte) error {
	return s.client.SetValue(ctx, key, string(value))
}

func (s *Surreal) Delete(ctx context.Context, key string) error {
	return s.client.DeleteValue(ctx, key)
}

func (s *Surreal) Close() error {
	return s.client.Close(context.Background())
}
