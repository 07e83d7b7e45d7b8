package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a point in time as Unix epoch milliseconds.
// Persisted threads and the webhook payload both use this encoding, and
// every value survives a JSON round trip unchanged. 0 means unset.
type Timestamp int64

// NewTimestamp converts t, dropping anything below a millisecond.
// The zero time maps to 0.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return 0
	}
	return Timestamp(t.UnixMilli())
}

// Millis returns the epoch milliseconds.
func (t Timestamp) Millis() int64 {
	return int64(t)
}

// IsZero reports whether the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t == 0
}

// Time returns the timestamp in local time, the zero time when unset.
func (t Timestamp) Time() time.Time {
	if t == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(t))
}

// UnmarshalJSON implements json.Unmarshaler.
// null is read as unset; fractional millisecond values are truncated.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = 0
		return nil
	}
	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = Timestamp(int64(ms))
	return nil
}
