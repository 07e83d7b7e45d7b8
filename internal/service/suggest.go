package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/raphaelgruber/flirtassist/internal/client"
	"github.com/raphaelgruber/flirtassist/internal/models"
)

// Phase is the progress state of a suggestion run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseRequesting Phase = "requesting"
	PhaseSaving     Phase = "saving"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// SuggestInput describes one suggestion request.
type SuggestInput struct {
	Mood         models.Mood
	ThreadID     string // empty starts a new thread
	ImageBase64  string
	TextOverride string // already extracted text, skips OCR on the webhook
}

// SuggestResult is the outcome of a successful run.
type SuggestResult struct {
	Thread  models.Thread
	OCRText string
}

// Suggester requests suggestions and records them on a thread.
type Suggester struct {
	store  ThreadStore
	client SuggestionClient
	opts   options

	busy  atomic.Bool
	phase atomic.Value // Phase

	mu      sync.RWMutex
	lastErr error
}

// NewSuggester creates a Suggester.
func NewSuggester(store ThreadStore, c SuggestionClient, opts ...Option) *Suggester {
	s := &Suggester{
		store:  store,
		client: c,
		opts:   buildOptions(opts),
	}
	s.phase.Store(PhaseIdle)
	return s
}

// Busy reports whether a run is in progress.
func (s *Suggester) Busy() bool {
	return s.busy.Load()
}

// Err returns the error of the last run, nil after a success.
func (s *Suggester) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Phase returns the current phase.
func (s *Suggester) Phase() Phase {
	return s.phase.Load().(Phase)
}

func (s *Suggester) setPhase(p Phase) {
	s.phase.Store(p)
	for _, fn := range s.opts.observers {
		fn(p)
	}
}

func (s *Suggester) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Suggest requests suggestions for in. Without a ThreadID, or when the id
// is unknown, a new thread is created. An existing thread keeps its context
// and mood; only its suggestions and updatedAt change.
//
// On failure nothing is persisted, the error is kept for Err and nil is
// returned with it.
func (s *Suggester) Suggest(ctx context.Context, in SuggestInput) (*SuggestResult, error) {
	return s.run(ctx, in, false)
}

// Regenerate requests fresh suggestions for an existing thread using the
// thread's own mood. An unknown id fails with ErrThreadNotFound, recorded
// like any other failure.
func (s *Suggester) Regenerate(ctx context.Context, threadID string) (*SuggestResult, error) {
	return s.run(ctx, SuggestInput{ThreadID: threadID}, true)
}

// run performs one suggestion run. With regenerate the thread must exist
// and its mood replaces in.Mood.
func (s *Suggester) run(ctx context.Context, in SuggestInput, regenerate bool) (res *SuggestResult, err error) {
	s.busy.Store(true)
	s.setErr(nil)
	s.setPhase(PhaseLoading)

	defer func() {
		if err != nil {
			res = nil
			s.setErr(err)
			s.setPhase(PhaseError)
			s.opts.logger.Warn("suggestion failed", "thread", in.ThreadID, "mood", in.Mood, "error", err)
		} else {
			s.setPhase(PhaseSuccess)
		}
		s.busy.Store(false)
		s.setPhase(PhaseIdle)
	}()

	if !regenerate && in.Mood != "" && !in.Mood.Valid() {
		return nil, fmt.Errorf("invalid mood %q", in.Mood)
	}

	var prior *models.Thread
	if in.ThreadID != "" {
		prior, err = s.store.Get(ctx, in.ThreadID)
		if err != nil {
			return nil, fmt.Errorf("load thread: %w", err)
		}
	}
	if prior == nil {
		if regenerate {
			return nil, fmt.Errorf("%w: %s", ErrThreadNotFound, in.ThreadID)
		}
		if in.ThreadID != "" {
			s.opts.logger.Debug("thread not found, starting a new one", "thread", in.ThreadID)
		}
	}

	mood := in.Mood
	if regenerate {
		mood = prior.Mood
	}
	if mood == "" {
		mood = models.DefaultMood
	}
	if !mood.Valid() {
		return nil, fmt.Errorf("invalid mood %q", mood)
	}

	s.setPhase(PhaseRequesting)
	resp, err := s.client.RequestSuggestions(ctx, client.Request{
		ImageBase64: in.ImageBase64,
		Text:        in.TextOverride,
		Mood:        mood,
		Thread:      prior,
	})
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	ts := models.NewTimestamp(now)
	suggestions := make([]models.Suggestion, 0, len(resp.Suggestions))
	for _, text := range resp.Suggestions {
		suggestions = append(suggestions, models.Suggestion{
			ID:        s.opts.newID(),
			Text:      text,
			Mood:      mood,
			CreatedAt: ts,
		})
	}

	var thread models.Thread
	if prior != nil {
		thread = prior.WithSuggestions(suggestions, now)
	} else {
		title := resp.Title
		if title == "" {
			title = models.DefaultTitle
		}
		thread = models.Thread{
			ID:          s.opts.newID(),
			Title:       title,
			Mood:        mood,
			Context:     []models.Message{},
			Suggestions: suggestions,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}.Normalize()
	}

	s.setPhase(PhaseSaving)
	if err := s.store.Upsert(ctx, thread); err != nil {
		return nil, fmt.Errorf("save thread: %w", err)
	}

	s.opts.logger.Info("suggestions saved",
		"thread", thread.ID, "mood", mood, "count", len(suggestions), "new", prior == nil)

	return &SuggestResult{Thread: thread.Clone(), OCRText: resp.OCRText}, nil
}
