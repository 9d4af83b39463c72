package devices_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sensibo/internal/cache"
	"github.com/rshade/sensibo/internal/devices"
	"github.com/rshade/sensibo/internal/sensibo"
)

// fakeAPI is an in-memory Sensibo API that counts calls.
type fakeAPI struct {
	mu sync.Mutex

	summaries   []sensibo.DeviceSummary
	listErr     error
	rooms       map[string]string
	detailErrs  map[string]error
	setStateErr error

	listCalls   int
	detailCalls map[string]int
	setCalls    []setCall
}

type setCall struct {
	deviceID string
	state    sensibo.ACState
}

func newFakeAPI(rooms map[string]string, order ...string) *fakeAPI {
	api := &fakeAPI{
		rooms:       rooms,
		detailErrs:  map[string]error{},
		detailCalls: map[string]int{},
	}
	for _, id := range order {
		api.summaries = append(api.summaries, sensibo.DeviceSummary{ID: id})
	}
	return api
}

func (f *fakeAPI) ListDeviceSummaries(context.Context) ([]sensibo.DeviceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

func (f *fakeAPI) GetDevice(_ context.Context, deviceID, fields string) (*sensibo.DeviceDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[deviceID]++
	if fields != sensibo.AllFields {
		return nil, errors.New("unexpected fields " + fields)
	}
	if err := f.detailErrs[deviceID]; err != nil {
		return nil, err
	}
	return &sensibo.DeviceDetail{ID: deviceID, Room: sensibo.Room{Name: f.rooms[deviceID]}}, nil
}

func (f *fakeAPI) SetDeviceState(_ context.Context, deviceID string, state sensibo.ACState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls = append(f.setCalls, setCall{deviceID: deviceID, state: state})
	return f.setStateErr
}

func (f *fakeAPI) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.detailCalls {
		total += n
	}
	return total
}

// failingCache fails every operation.
type failingCache struct {
	getErr error
	putErr error
}

func (c failingCache) Get(string, any) (bool, error) { return false, c.getErr }
func (c failingCache) Put(string, any, time.Duration) error { return c.putErr }

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newStore(t *testing.T) (*cache.FileStore, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	store, err := cache.NewFileStore(filepath.Join(t.TempDir(), "customCache.json"), cache.WithClock(clock.Now))
	require.NoError(t, err)
	return store, clock
}

var threeRooms = map[string]string{"a": "Office", "b": "Bedroom", "c": "Kitchen"}

func TestListDevices_ColdCacheThenWarm(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			api := newFakeAPI(threeRooms, "a", "b", "c")
			store, _ := newStore(t)
			svc := devices.NewService(api, store, devices.Options{Concurrency: concurrency})

			got, err := svc.ListDevices(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []devices.Device{
				{ID: "a", Name: "Office"},
				{ID: "b", Name: "Bedroom"},
				{ID: "c", Name: "Kitchen"},
			}, got, "order must follow the summary list")
			assert.Equal(t, 1, api.listCalls)
			assert.Equal(t, 3, api.totalDetailCalls())

			again, err := svc.ListDevices(context.Background())
			require.NoError(t, err)
			assert.Equal(t, got, again)
			assert.Equal(t, 1, api.listCalls, "a warm cache must not call the API")
			assert.Equal(t, 3, api.totalDetailCalls())
		})
	}
}

func TestListDevices_DegradedListing(t *testing.T) {
	api := newFakeAPI(threeRooms, "a", "b", "c")
	api.detailErrs["b"] = errors.New("boom")
	store, _ := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	got, err := svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []devices.Device{{ID: "a", Name: "Office"}, {ID: "c", Name: "Kitchen"}}, got)
}

func TestListDevices_AllDetailsFail(t *testing.T) {
	api := newFakeAPI(threeRooms, "a", "b")
	api.detailErrs["a"] = errors.New("boom")
	api.detailErrs["b"] = errors.New("boom")
	store, _ := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	got, err := svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListDevices_SummaryFailureIsNotCached(t *testing.T) {
	api := newFakeAPI(threeRooms, "a")
	api.listErr = errors.New("network down")
	store, _ := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	got, err := svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	api.listErr = nil
	got, err = svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []devices.Device{{ID: "a", Name: "Office"}}, got)
	assert.Equal(t, 2, api.listCalls)
}

func TestListDevices_TTLAsymmetry(t *testing.T) {
	api := newFakeAPI(threeRooms, "a", "b")
	store, clock := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	_, err := svc.ListDevices(context.Background())
	require.NoError(t, err)

	// The list expires after 5h while details stay valid for 24h.
	clock.now = clock.now.Add(cache.DeviceListTTL)
	_, err = svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls, "list must be refetched after its TTL")
	assert.Equal(t, 2, api.totalDetailCalls(), "details must still come from cache")

	clock.now = clock.now.Add(cache.DeviceDetailTTL)
	_, err = svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, api.listCalls)
	assert.Equal(t, 4, api.totalDetailCalls())
}

func TestListDevices_CustomTTLs(t *testing.T) {
	api := newFakeAPI(threeRooms, "a")
	store, clock := newStore(t)
	svc := devices.NewService(api, store, devices.Options{ListTTL: time.Minute, DetailTTL: time.Hour})

	_, err := svc.ListDevices(context.Background())
	require.NoError(t, err)

	clock.now = clock.now.Add(time.Minute)
	_, err = svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
	assert.Equal(t, 1, api.totalDetailCalls())
}

func TestListDevices_CacheErrors(t *testing.T) {
	api := newFakeAPI(threeRooms, "a")

	t.Run("read failure", func(t *testing.T) {
		svc := devices.NewService(api, failingCache{getErr: errors.New("disk gone")}, devices.Options{})
		_, err := svc.ListDevices(context.Background())
		assert.ErrorContains(t, err, "disk gone")
	})

	t.Run("write failure", func(t *testing.T) {
		svc := devices.NewService(api, failingCache{putErr: errors.New("read-only")}, devices.Options{})
		_, err := svc.ListDevices(context.Background())
		assert.ErrorContains(t, err, "read-only")
	})

	t.Run("corrupt file", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))
		svc := devices.NewService(api, store, devices.Options{})
		_, err := svc.ListDevices(context.Background())
		assert.ErrorIs(t, err, cache.ErrCorruptStore)
	})
}

func TestDeviceDetail(t *testing.T) {
	api := newFakeAPI(threeRooms, "a")
	store, _ := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	detail, err := svc.DeviceDetail(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Office", detail.Room.Name)

	_, err = svc.DeviceDetail(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, api.detailCalls["a"], "detail must be served from cache")

	var cached sensibo.DeviceDetail
	found, err := store.Get(devices.DetailKey("a"), &cached)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Office", cached.Room.Name)

	t.Run("remote failure is absent", func(t *testing.T) {
		api.detailErrs["x"] = errors.New("404")
		detail, err := svc.DeviceDetail(context.Background(), "x")
		assert.Nil(t, detail)
		assert.ErrorIs(t, err, devices.ErrDetailUnavailable)

		found, getErr := store.Get(devices.DetailKey("x"), nil)
		require.NoError(t, getErr)
		assert.False(t, found, "failures must not be cached")
	})
}

func TestListDevices_DeviceWithoutRoomIsExcluded(t *testing.T) {
	api := newFakeAPI(threeRooms, "a", "nameless", "c")
	store, _ := newStore(t)
	svc := devices.NewService(api, store, devices.Options{})

	got, err := svc.ListDevices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []devices.Device{{ID: "a", Name: "Office"}, {ID: "c", Name: "Kitchen"}}, got)

	_, err = svc.DeviceDetail(context.Background(), "nameless")
	require.ErrorIs(t, err, devices.ErrDetailUnavailable)
	assert.ErrorIs(t, err, sensibo.ErrIncompleteDevice)

	found, err := store.Get(devices.DetailKey("nameless"), nil)
	require.NoError(t, err)
	assert.False(t, found, "an incomplete record must not be cached")
	assert.Equal(t, 2, api.detailCalls["nameless"], "each attempt reaches the API")
}

func TestChangeDeviceState(t *testing.T) {
	off := false
	on := true
	temp := 21

	tests := []struct {
		name   string
		change devices.StateChange
		want   string
	}{
		{
			name:   "on defaults to true",
			change: devices.StateChange{DeviceID: "d1"},
			want:   `{"on":true}`,
		},
		{
			name:   "off sends only on",
			change: devices.StateChange{DeviceID: "d1", On: &off},
			want:   `{"on":false}`,
		},
		{
			name:   "TurnOff helper",
			change: devices.TurnOff("d1"),
			want:   `{"on":false}`,
		},
		{
			name: "every field",
			change: devices.StateChange{
				DeviceID:          "d1",
				On:                &on,
				Mode:              "COOL",
				FanLevel:          " Auto ",
				TargetTemperature: &temp,
				TemperatureUnit:   "c",
				Swing:             "rangeFull",
			},
			want: `{"on":true,"mode":"cool","fanLevel":"auto","targetTemperature":21,"temperatureUnit":"C","swing":"rangeFull"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(threeRooms)
			store, _ := newStore(t)
			svc := devices.NewService(api, store, devices.Options{})

			require.NoError(t, svc.ChangeDeviceState(context.Background(), tt.change))
			require.Len(t, api.setCalls, 1, "a state change is sent exactly once")
			assert.Equal(t, "d1", api.setCalls[0].deviceID)
			assertJSON(t, tt.want, api.setCalls[0].state)

			_, err := os.Stat(store.Path())
			assert.True(t, os.IsNotExist(err), "state changes must not touch the cache")
		})
	}
}

func TestChangeDeviceState_Failures(t *testing.T) {
	t.Run("api failure is surfaced without retry", func(t *testing.T) {
		api := newFakeAPI(threeRooms)
		api.setStateErr = &sensibo.APIError{StatusCode: 500, Reason: "oops"}
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})

		err := svc.ChangeDeviceState(context.Background(), devices.TurnOn("d1"))
		require.ErrorIs(t, err, devices.ErrStateChangeFailed)
		var apiErr *sensibo.APIError
		assert.ErrorAs(t, err, &apiErr)
		assert.Len(t, api.setCalls, 1)
	})

	t.Run("missing device id", func(t *testing.T) {
		api := newFakeAPI(threeRooms)
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})
		err := svc.ChangeDeviceState(context.Background(), devices.StateChange{})
		assert.ErrorIs(t, err, devices.ErrMissingDeviceID)
		assert.Empty(t, api.setCalls)
	})

	t.Run("invalid unit is rejected before sending", func(t *testing.T) {
		api := newFakeAPI(threeRooms)
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})
		err := svc.ChangeDeviceState(context.Background(), devices.StateChange{DeviceID: "d1", TemperatureUnit: "K"})
		assert.ErrorIs(t, err, devices.ErrInvalidTemperatureUnit)
		assert.Empty(t, api.setCalls)
	})
}

// chooserFunc adapts a function to devices.Chooser.
type chooserFunc func(ctx context.Context, list []devices.Device) (int, error)

func (f chooserFunc) Choose(ctx context.Context, list []devices.Device) (int, error) {
	return f(ctx, list)
}

func TestSelectDevice(t *testing.T) {
	t.Run("returns chosen id", func(t *testing.T) {
		api := newFakeAPI(threeRooms, "a", "b", "c")
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})

		var offered []devices.Device
		id, err := svc.SelectDevice(context.Background(), chooserFunc(func(_ context.Context, list []devices.Device) (int, error) {
			offered = list
			return 1, nil
		}))
		require.NoError(t, err)
		assert.Equal(t, "b", id)
		assert.Len(t, offered, 3)
	})

	t.Run("no devices", func(t *testing.T) {
		api := newFakeAPI(threeRooms)
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})

		_, err := svc.SelectDevice(context.Background(), chooserFunc(func(context.Context, []devices.Device) (int, error) {
			t.Fatal("chooser must not be called without devices")
			return 0, nil
		}))
		assert.ErrorIs(t, err, devices.ErrNoDevices)
	})

	t.Run("cancelled", func(t *testing.T) {
		api := newFakeAPI(threeRooms, "a")
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})

		_, err := svc.SelectDevice(context.Background(), chooserFunc(func(context.Context, []devices.Device) (int, error) {
			return -1, devices.ErrSelectionCancelled
		}))
		assert.ErrorIs(t, err, devices.ErrSelectionCancelled)
	})

	t.Run("out of range", func(t *testing.T) {
		api := newFakeAPI(threeRooms, "a")
		svc := devices.NewService(api, cache.Disabled{}, devices.Options{})

		_, err := svc.SelectDevice(context.Background(), chooserFunc(func(context.Context, []devices.Device) (int, error) {
			return 5, nil
		}))
		assert.Error(t, err)
	})
}
