package devices

import (
	"context"
	"errors"
	"time"

	"github.com/rshade/sensibo/internal/sensibo"
)

// Cache keys. They match the keys written by earlier releases so an existing
// cache file keeps working.
const (
	// DeviceListKey holds the assembled []Device.
	DeviceListKey = "allDevices"

	// detailKeyPrefix prefixes the per-device detail key.
	detailKeyPrefix = "deviceDetails_"
)

// Sentinel errors.
var (
	// ErrNoDevices is returned by SelectDevice when there is nothing to choose from.
	ErrNoDevices = errors.New("no devices found")

	// ErrSelectionCancelled is returned when the user aborts the device picker.
	ErrSelectionCancelled = errors.New("device selection cancelled")

	// ErrDetailUnavailable marks a detail that could not be fetched from the API.
	ErrDetailUnavailable = errors.New("device detail unavailable")

	// ErrStateChangeFailed wraps every failed state change.
	ErrStateChangeFailed = errors.New("state change failed")

	// ErrMissingDeviceID is returned for a state change without a target.
	ErrMissingDeviceID = errors.New("device id is required")

	// ErrInvalidTemperatureUnit is returned for units other than C and F.
	ErrInvalidTemperatureUnit = errors.New("temperature unit must be C or F")

	// ErrInvalidTemperature is returned when a target temperature cannot be parsed.
	ErrInvalidTemperature = errors.New("invalid target temperature")
)

// Device is a pod identified by id and named after its room.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// String renders the device the way the picker shows it.
func (d Device) String() string {
	return d.Name + " (" + d.ID + ")"
}

// API is the part of the Sensibo API the orchestrator needs.
type API interface {
	ListDeviceSummaries(ctx context.Context) ([]sensibo.DeviceSummary, error)
	GetDevice(ctx context.Context, deviceID, fields string) (*sensibo.DeviceDetail, error)
	SetDeviceState(ctx context.Context, deviceID string, state sensibo.ACState) error
}

// Cache is a TTL key/value store. Get reports false for absent or expired keys.
type Cache interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any, ttl time.Duration) error
}

// Chooser asks the user to pick one of devices and returns its index.
// It returns ErrSelectionCancelled when the user backs out.
type Chooser interface {
	Choose(ctx context.Context, devices []Device) (int, error)
}

// DetailKey returns the cache key of a device's detail record.
func DetailKey(deviceID string) string {
	return detailKeyPrefix + deviceID
}
