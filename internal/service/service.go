// Package service provides the business logic for suggestions and threads.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/client"
	"github.com/raphaelgruber/flirtassist/internal/models"
)

var (
	// ErrThreadNotFound is returned when a thread id does not exist.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrEmptyMessage is returned when a context message has no text.
	ErrEmptyMessage = errors.New("message text is empty")
)

// ThreadStore persists threads. *store.ThreadStore implements it.
type ThreadStore interface {
	Load(ctx context.Context) ([]models.Thread, error)
	Get(ctx context.Context, id string) (*models.Thread, error)
	Upsert(ctx context.Context, t models.Thread) error
	Delete(ctx context.Context, id string) error
}

// SuggestionClient requests suggestions from the webhook. *client.Client
// implements it.
type SuggestionClient interface {
	RequestSuggestions(ctx context.Context, req client.Request) (*client.Response, error)
}

type options struct {
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	observers []func(Phase)
}

// Option configures a Suggester or ThreadService.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFunc replaces models.NewID.
func WithIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithPhaseObserver registers fn to be called on every phase change of a
// Suggester. fn runs synchronously on the calling goroutine.
func WithPhaseObserver(fn func(Phase)) Option {
	return func(o *options) { o.observers = append(o.observers, fn) }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
		newID:  models.NewID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
