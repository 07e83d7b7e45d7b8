// Package models defines the conversation records shared by the store,
// the webhook client and the CLI.
package models

import (
	"github.com/google/uuid"
)

// NewID returns a time-ordered identifier (UUIDv7).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
