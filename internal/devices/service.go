package devices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/sensibo/internal/cache"
	"github.com/rshade/sensibo/internal/logging"
	"github.com/rshade/sensibo/internal/sensibo"
)

// DefaultConcurrency is how many detail fetches run at once while building the list.
const DefaultConcurrency = 4

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	// ListTTL is how long the assembled device list is cached.
	ListTTL time.Duration
	// DetailTTL is how long each device's detail record is cached.
	DetailTTL time.Duration
	// Concurrency bounds parallel detail fetches. 1 fetches sequentially.
	Concurrency int
}

// Service lists devices and changes their state.
type Service struct {
	api         API
	cache       Cache
	listTTL     time.Duration
	detailTTL   time.Duration
	concurrency int
}

// NewService creates a Service on top of api and cache.
func NewService(api API, store Cache, opts Options) *Service {
	s := &Service{
		api:         api,
		cache:       store,
		listTTL:     opts.ListTTL,
		detailTTL:   opts.DetailTTL,
		concurrency: opts.Concurrency,
	}
	if s.listTTL <= 0 {
		s.listTTL = cache.DeviceListTTL
	}
	if s.detailTTL <= 0 {
		s.detailTTL = cache.DeviceDetailTTL
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	return s
}

// ListDevices returns the user's devices in API order.
//
// A cached list is returned as-is. Otherwise the summaries are fetched, each
// one is resolved through DeviceDetail, and the devices whose detail could not
// be fetched are left out. The result is cached for the list TTL. A failed
// summary call yields an empty, uncached list. Cache read and write failures
// are returned as errors.
func (s *Service) ListDevices(ctx context.Context) ([]Device, error) {
	log := logging.FromContext(ctx)

	var cached []Device
	found, err := s.cache.Get(DeviceListKey, &cached)
	if err != nil {
		return nil, fmt.Errorf("reading device list from cache: %w", err)
	}
	if found {
		log.Debug().Ctx(ctx).Str("component", "devices").Int("count", len(cached)).Msg("device list cache hit")
		return cached, nil
	}

	summaries, err := s.api.ListDeviceSummaries(ctx)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "devices").
			Err(err).
			Msg("error fetching devices")
		return []Device{}, nil
	}

	results, err := s.resolve(ctx, summaries)
	if err != nil {
		return nil, err
	}

	devices := Successful(results)
	if len(devices) < len(results) {
		log.Warn().
			Ctx(ctx).
			Str("component", "devices").
			Int("requested", len(results)).
			Int("resolved", len(devices)).
			Msg("some devices were skipped")
	}

	if err := s.cache.Put(DeviceListKey, devices, s.listTTL); err != nil {
		return nil, fmt.Errorf("caching device list: %w", err)
	}
	return devices, nil
}

// resolve fetches the detail of every summary with bounded parallelism.
// results[i] always corresponds to summaries[i]; only cache failures abort.
func (s *Service) resolve(ctx context.Context, summaries []sensibo.DeviceSummary) ([]Result, error) {
	results := make([]Result, len(summaries))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, summary := range summaries {
		g.Go(func() error {
			detail, err := s.DeviceDetail(gCtx, summary.ID)
			switch {
			case errors.Is(err, ErrDetailUnavailable):
				results[i] = Result{Device: Device{ID: summary.ID}, Err: err}
				return nil
			case err != nil:
				return err
			}
			results[i] = Result{Device: Device{ID: summary.ID, Name: detail.Room.Name}}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// DeviceDetail returns a device's full record, cached for the detail TTL.
// When the API call fails the error is logged and ErrDetailUnavailable is
// returned so callers can carry on without this device. Cache failures are
// returned unwrapped by that sentinel.
func (s *Service) DeviceDetail(ctx context.Context, deviceID string) (*sensibo.DeviceDetail, error) {
	log := logging.FromContext(ctx)
	key := DetailKey(deviceID)

	var detail sensibo.DeviceDetail
	found, err := s.cache.Get(key, &detail)
	if err != nil {
		return nil, fmt.Errorf("reading device %s from cache: %w", deviceID, err)
	}
	if found {
		return &detail, nil
	}

	fetched, err := s.api.GetDevice(ctx, deviceID, sensibo.AllFields)
	if err == nil && (fetched == nil || fetched.Room.Name == "") {
		err = sensibo.ErrIncompleteDevice
	}
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "devices").
			Str("device_id", deviceID).
			Err(err).
			Msg("error fetching device details")
		return nil, fmt.Errorf("%w: %s: %w", ErrDetailUnavailable, deviceID, err)
	}

	if err := s.cache.Put(key, fetched, s.detailTTL); err != nil {
		return nil, fmt.Errorf("caching device %s: %w", deviceID, err)
	}
	return fetched, nil
}

// ChangeDeviceState sends change to the API. The cache is never consulted or
// updated, and the call is made exactly once.
func (s *Service) ChangeDeviceState(ctx context.Context, change StateChange) error {
	log := logging.FromContext(ctx)

	if change.DeviceID == "" {
		return ErrMissingDeviceID
	}

	state, err := change.Payload()
	if err != nil {
		return err
	}

	log.Info().
		Ctx(ctx).
		Str("component", "devices").
		Str("device_id", change.DeviceID).
		Interface("ac_state", state).
		Msg("changing device state")

	if err := s.api.SetDeviceState(ctx, change.DeviceID, state); err != nil {
		return fmt.Errorf("%w: %w", ErrStateChangeFailed, err)
	}
	return nil
}

// SelectDevice lists the devices and lets chooser pick one, returning its id.
// It returns ErrNoDevices when the list is empty.
func (s *Service) SelectDevice(ctx context.Context, chooser Chooser) (string, error) {
	devices, err := s.ListDevices(ctx)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", ErrNoDevices
	}

	idx, err := chooser.Choose(ctx, devices)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(devices) {
		return "", fmt.Errorf("selection %d out of range", idx)
	}
	return devices[idx].ID, nil
}
