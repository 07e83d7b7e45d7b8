package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

type kvRecord struct {
	Value string `json:"value"`
}

// GetValue returns the value stored under key, or ErrNotFound.
func (c *Client) GetValue(ctx context.Context, key string) (string, error) {
	results, err := surrealdb.Query[[]kvRecord](ctx, c.db, `
		SELECT value FROM type::record("kv", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", ErrNotFound
	}
	return (*results)[0].Result[0].Value, nil
}

// SetValue creates or replaces the record for key.
func (c *Client) SetValue(ctx context.Context, key, value string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("kv", $key) CONTENT {
			value: $value,
			updated: time::now()
		}
	`, map[string]any{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, wrapQueryError(err))
	}
	return nil
}

// DeleteValue removes the record for key. Missing keys are not an error.
func (c *Client) DeleteValue(ctx context.Context, key string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("kv", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, wrapQueryError(err))
	}
	return nil
}
