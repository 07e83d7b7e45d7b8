package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go"
)

func TestRPCBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ws://localhost:8000/rpc", "ws://localhost:8000"},
		{"ws://localhost:8000/rpc/", "ws://localhost:8000"},
		{"wss://db.example.com", "wss://db.example.com"},
		{" ws://localhost:8000/ ", "ws://localhost:8000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, rpcBaseURL(tt.in))
		})
	}
}

func TestAuthFor(t *testing.T) {
	cfg := Config{Namespace: "ns", Database: "db", Username: "u", Password: "p"}

	t.Run("root by default", func(t *testing.T) {
		auth, err := authFor(cfg)
		require.NoError(t, err)
		assert.Equal(t, surrealdb.Auth{Username: "u", Password: "p"}, auth)
	})

	t.Run("database scoped", func(t *testing.T) {
		c := cfg
		c.AuthLevel = AuthDatabase
		auth, err := authFor(c)
		require.NoError(t, err)
		assert.Equal(t, surrealdb.Auth{Namespace: "ns", Database: "db", Username: "u", Password: "p"}, auth)
	})

	t.Run("unknown level", func(t *testing.T) {
		c := cfg
		c.AuthLevel = "namespace"
		_, err := authFor(c)
		assert.ErrorContains(t, err, `"namespace"`)
	})
}
