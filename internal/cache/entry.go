package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a single cached value with its absolute expiration time.
type Entry struct {
	// Value is the cached payload (JSON-serializable).
	Value json.RawMessage `json:"value"`

	// ExpiresAt is the instant after which the entry is stale.
	ExpiresAt time.Time `json:"expiry"`
}

// NewEntry creates an entry for value that expires ttl after now.
func NewEntry(value json.RawMessage, now time.Time, ttl time.Duration) Entry {
	return Entry{
		Value:     value,
		ExpiresAt: now.Add(ttl),
	}
}

// IsValidAt reports whether the entry is readable at the given time.
// An entry is valid strictly before its expiry.
func (e Entry) IsValidAt(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// TimeUntilExpiration returns the remaining lifetime at now, or 0 when expired.
func (e Entry) TimeUntilExpiration(now time.Time) time.Duration {
	remaining := e.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarshalJSON writes the expiry as Unix epoch milliseconds so cache files stay
// compatible with earlier releases of the CLI.
func (e Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		Alias

		ExpiresAt int64 `json:"expiry"`
	}{
		Alias:     Alias(e),
		ExpiresAt: e.ExpiresAt.UnixMilli(),
	})
}

// UnmarshalJSON parses an entry whose expiry is Unix epoch milliseconds.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		ExpiresAt *int64 `json:"expiry"`
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ExpiresAt == nil {
		return errors.New("cache entry has no expiry")
	}

	e.ExpiresAt = time.UnixMilli(*aux.ExpiresAt)
	return nil
}
