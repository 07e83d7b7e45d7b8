package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/surrealdb/surrealdb.go"
)

func TestWrapQueryError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, wrapQueryError(nil))
	})

	t.Run("transaction conflict", func(t *testing.T) {
		err := fmt.Errorf("query: %w", &surrealdb.QueryError{Message: "Transaction conflict: resource busy"})
		wrapped := wrapQueryError(err)
		assert.ErrorIs(t, wrapped, ErrTransactionConflict)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		err := errors.New("connection reset")
		assert.Same(t, err, wrapQueryError(err))
	})
}
