package models

import (
	"encoding/json"
	"slices"
	"time"
)

// DefaultTitle is used when the suggestion service does not return a title.
const DefaultTitle = "New Conversation"

// Message is one line of conversation context. Immutable once created.
type Message struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	TS   Timestamp `json:"ts"`
}

// Suggestion is one generated reply candidate.
type Suggestion struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Mood      Mood      `json:"mood"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Thread is a conversation record with its context and latest suggestions.
type Thread struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Mood         Mood         `json:"mood"`
	Context      []Message    `json:"context"`
	Suggestions  []Suggestion `json:"suggestions,omitempty"`
	CreatedAt    Timestamp    `json:"createdAt"`
	UpdatedAt    Timestamp    `json:"updatedAt"`
	RemoteSynced *bool        `json:"remoteSynced,omitempty"`
}

// Normalize returns t in its persisted shape: context is never nil and an
// empty suggestion list is nil. A normalized thread equals itself after a
// JSON round trip.
func (t Thread) Normalize() Thread {
	if t.Context == nil {
		t.Context = []Message{}
	}
	if len(t.Suggestions) == 0 {
		t.Suggestions = nil
	}
	return t
}

// MarshalJSON keeps context encoded as an array even when empty.
func (t Thread) MarshalJSON() ([]byte, error) {
	type alias Thread
	return json.Marshal(alias(t.Normalize()))
}

// UnmarshalJSON decodes a thread into its normalized shape.
func (t *Thread) UnmarshalJSON(data []byte) error {
	type alias Thread
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Thread(a).Normalize()
	return nil
}

// Clone returns a normalized deep copy so callers never share slices with
// stored state.
func (t Thread) Clone() Thread {
	c := t.Normalize()
	c.Context = slices.Clone(c.Context)
	c.Suggestions = slices.Clone(c.Suggestions)
	if t.RemoteSynced != nil {
		v := *t.RemoteSynced
		c.RemoteSynced = &v
	}
	return c
}

// WithMessage returns a copy with msg appended to the context.
func (t Thread) WithMessage(msg Message, now time.Time) Thread {
	c := t.Clone()
	c.Context = append(c.Context, msg)
	c.UpdatedAt = NewTimestamp(now)
	return c
}

// WithSuggestions returns a copy whose suggestion list is replaced.
// Context is left untouched.
func (t Thread) WithSuggestions(list []Suggestion, now time.Time) Thread {
	c := t.Clone()
	c.Suggestions = slices.Clone(list)
	c.UpdatedAt = NewTimestamp(now)
	return c.Normalize()
}
