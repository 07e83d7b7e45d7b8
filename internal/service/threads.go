package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/raphaelgruber/flirtassist/internal/parser"
)

// RecentLimit is the number of threads Recent returns.
const RecentLimit = 5

// ThreadService handles history browsing and manual context entry.
type ThreadService struct {
	store ThreadStore
	opts  options
}

// NewThreadService creates a ThreadService.
func NewThreadService(store ThreadStore, opts ...Option) *ThreadService {
	return &ThreadService{store: store, opts: buildOptions(opts)}
}

// List returns threads most recent first. limit <= 0 returns all.
func (s *ThreadService) List(ctx context.Context, limit int) ([]models.Thread, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Recent returns the most recent threads for the dashboard.
func (s *ThreadService) Recent(ctx context.Context) ([]models.Thread, error) {
	return s.List(ctx, RecentLimit)
}

// Get returns one thread.
func (s *ThreadService) Get(ctx context.Context, id string) (*models.Thread, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}
	return t, nil
}

// Delete removes a thread.
func (s *ThreadService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.opts.logger.Info("thread deleted", "thread", id)
	return nil
}

// AddMessage appends a context message to a thread.
func (s *ThreadService) AddMessage(ctx context.Context, id string, role models.Role, text string) (*models.Thread, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	updated := t.WithMessage(models.Message{
		ID:   s.opts.newID(),
		Role: role,
		Text: text,
		TS:   models.NewTimestamp(now),
	}, now)

	if err := s.store.Upsert(ctx, updated); err != nil {
		return nil, fmt.Errorf("save thread: %w", err)
	}
	return &updated, nil
}

// ImportTranscript appends every message of a transcript to a thread.
// With an empty id a new thread is created, taking title and mood from the
// transcript's frontmatter when present.
func (s *ThreadService) ImportTranscript(ctx context.Context, id string, r io.Reader) (*models.Thread, error) {
	tr, err := parser.ReadTranscript(r)
	if err != nil {
		return nil, err
	}
	if len(tr.Lines) == 0 {
		return nil, fmt.Errorf("transcript: %w", ErrEmptyMessage)
	}

	now := s.opts.now()
	ts := models.NewTimestamp(now)

	var t models.Thread
	if id != "" {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		t = existing.Clone()
	} else {
		t = models.Thread{
			ID:        s.opts.newID(),
			Title:     tr.Title,
			Mood:      tr.Mood,
			Context:   []models.Message{},
			CreatedAt: ts,
		}
		if t.Title == "" {
			t.Title = models.DefaultTitle
		}
		if t.Mood == "" {
			t.Mood = models.DefaultMood
		}
	}

	for _, line := range tr.Lines {
		t.Context = append(t.Context, models.Message{
			ID:   s.opts.newID(),
			Role: line.Role,
			Text: line.Text,
			TS:   ts,
		})
	}
	t.UpdatedAt = ts

	if err := s.store.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("save thread: %w", err)
	}
	s.opts.logger.Info("transcript imported",
		"thread", t.ID, "messages", len(tr.Lines), "skipped", tr.Skipped)
	return &t, nil
}
