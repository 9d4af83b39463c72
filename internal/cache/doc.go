// Package cache provides a single-file JSON cache with TTL expiration for
// Sensibo API responses.
//
// The whole cache lives in one file (by default ~/.config/sensibo/customCache.json)
// holding a JSON object that maps each key to {"value": ..., "expiry": <epoch ms>}.
// Key properties:
//   - Every Get and Put loads the file from disk; nothing is kept in memory between calls
//   - Put rewrites the full snapshot through a temp file and rename
//   - Expired entries read as absent and stay on disk until overwritten
//   - A missing file is an empty cache, an unreadable or malformed one is an error
//
// The file is shared by every CLI invocation. There is no cross-process locking,
// so concurrent runs are last-writer-wins.
package cache
