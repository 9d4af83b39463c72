package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TTL defaults for Sensibo data. Device identity changes rarely, so details
// live longer than the aggregated list, which is rebuilt more often to pick up
// added or removed pods.
const (
	// DeviceDetailTTL is how long a single pod's detail record is trusted.
	DeviceDetailTTL = 24 * time.Hour

	// DeviceListTTL is how long the assembled device list is trusted.
	DeviceListTTL = 5 * time.Hour

	// MaxTTL is the longest TTL accepted from configuration (30 days).
	MaxTTL = 30 * 24 * time.Hour

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24
)

// ErrInvalidTTL is returned for non-positive or oversized TTLs.
var ErrInvalidTTL = errors.New("TTL must be positive and at most 30 days")

// FormatDuration formats a duration in a human-readable way.
// Examples: "1h", "30m", "5h30m", "1d".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL parses a TTL string in various formats:
// - Integer seconds: "3600".
// - Duration string: "1h", "30m", "5h30m".
func ParseTTL(s string) (time.Duration, error) {
	var ttl time.Duration
	if seconds, err := strconv.Atoi(s); err == nil {
		ttl = time.Duration(seconds) * time.Second
	} else {
		parsed, parseErr := time.ParseDuration(s)
		if parseErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", parseErr)
		}
		ttl = parsed
	}

	if ttl <= 0 || ttl > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, s)
	}
	return ttl, nil
}
