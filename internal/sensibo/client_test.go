package sensibo_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/sensibo/internal/sensibo"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...sensibo.Option) *sensibo.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := sensibo.NewClient("secret-key", append([]sensibo.Option{sensibo.WithBaseURL(srv.URL + "/")}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := sensibo.NewClient("  ")
	assert.ErrorIs(t, err, sensibo.ErrMissingAPIKey)
}

func TestListDeviceSummaries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/me/pods", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("apiKey"))
		_, _ = io.WriteString(w, `{"status":"success","result":[{"id":"abc"},{"id":"def"}]}`)
	})

	summaries, err := client.ListDeviceSummaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []sensibo.DeviceSummary{{ID: "abc"}, {ID: "def"}}, summaries)
}

func TestGetDevice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pods/abc", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("fields"))
		_, _ = io.WriteString(w, `{"status":"success","result":{
			"id":"abc",
			"room":{"name":"Bedroom","icon":"bedroom"},
			"acState":{"on":true,"mode":"cool","targetTemperature":22,"temperatureUnit":"C"},
			"connectionStatus":{"isAlive":true},
			"remoteCapabilities":{"modes":{"cool":{}}}
		}}`)
	})

	detail, err := client.GetDevice(context.Background(), "abc", sensibo.AllFields)
	require.NoError(t, err)
	assert.Equal(t, "abc", detail.ID)
	assert.Equal(t, "Bedroom", detail.Room.Name)
	require.NotNil(t, detail.ACState)
	require.NotNil(t, detail.ACState.On)
	assert.True(t, *detail.ACState.On)
	require.NotNil(t, detail.ACState.TargetTemperature)
	assert.Equal(t, 22, *detail.ACState.TargetTemperature)
	assert.True(t, detail.ConnectionStatus.IsAlive)
	assert.JSONEq(t, `{"modes":{"cool":{}}}`, string(detail.RemoteCapabilities))
}

func TestGetDevice_EmptyID(t *testing.T) {
	client, err := sensibo.NewClient("k")
	require.NoError(t, err)
	_, err = client.GetDevice(context.Background(), "", sensibo.AllFields)
	assert.ErrorIs(t, err, sensibo.ErrMissingDeviceID)
}

func TestGetDevice_IncompleteRecord(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "null result", body: `{"status":"success","result":null}`},
		{name: "missing result", body: `{"status":"success"}`},
		{name: "no room", body: `{"status":"success","result":{"id":"abc"}}`},
		{name: "blank room name", body: `{"status":"success","result":{"id":"abc","room":{"name":" "}}}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})

			detail, err := client.GetDevice(context.Background(), "abc", sensibo.AllFields)
			require.Error(t, err)
			assert.Nil(t, detail)
		})
	}

	t.Run("null result is reported as incomplete", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"status":"success","result":null}`)
		})
		_, err := client.GetDevice(context.Background(), "abc", sensibo.AllFields)
		assert.ErrorIs(t, err, sensibo.ErrIncompleteDevice)
	})
}

func TestSetDeviceState_EmptySuccessBody(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(status)
			})

			require.NoError(t, client.SetDeviceState(context.Background(), "abc", sensibo.ACState{On: boolPtr(false)}))
			assert.Equal(t, int32(1), calls.Load())
		})
	}

	t.Run("empty error body still fails", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := client.SetDeviceState(context.Background(), "abc", sensibo.ACState{On: boolPtr(false)})
		var apiErr *sensibo.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	})
}

func TestSetDeviceState(t *testing.T) {
	tests := []struct {
		name     string
		state    sensibo.ACState
		wantBody string
	}{
		{
			name:     "off only",
			state:    sensibo.ACState{On: boolPtr(false)},
			wantBody: `{"acState":{"on":false}}`,
		},
		{
			name: "full state",
			state: sensibo.ACState{
				On:                boolPtr(true),
				Mode:              "heat",
				FanLevel:          "high",
				TargetTemperature: intPtr(24),
				TemperatureUnit:   "C",
				Swing:             "rangeFull",
			},
			wantBody: `{"acState":{"on":true,"mode":"heat","fanLevel":"high","targetTemperature":24,"temperatureUnit":"C","swing":"rangeFull"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/pods/abc/acStates", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.JSONEq(t, tt.wantBody, string(body))
				_, _ = io.WriteString(w, `{"status":"success","result":{"status":"Success"}}`)
			})

			require.NoError(t, client.SetDeviceState(context.Background(), "abc", tt.state))
		})
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "http error with reason",
			status:     http.StatusForbidden,
			body:       `{"status":"failure","reason":"bad api key"}`,
			wantStatus: http.StatusForbidden,
			wantReason: "bad api key",
		},
		{
			name:       "http error with plain body",
			status:     http.StatusBadGateway,
			body:       "upstream down",
			wantStatus: http.StatusBadGateway,
			wantReason: "upstream down",
		},
		{
			name:       "success status code but failed envelope",
			status:     http.StatusOK,
			body:       `{"status":"failure","reason":"invalid mode"}`,
			wantStatus: http.StatusOK,
			wantReason: "invalid mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := client.SetDeviceState(context.Background(), "abc", sensibo.ACState{On: boolPtr(true)})
			require.Error(t, err)

			var apiErr *sensibo.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantReason, apiErr.Reason)
		})
	}
}

func TestTimeoutIsReportedWithoutAPIKey(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}, sensibo.WithTimeout(50*time.Millisecond))
	defer close(release)

	err := client.SetDeviceState(context.Background(), "abc", sensibo.ACState{On: boolPtr(true)})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.ListDeviceSummaries(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decoding response"))
}

func TestACStateOmitsUnsetFields(t *testing.T) {
	encoded, err := json.Marshal(sensibo.ACState{On: boolPtr(false)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":false}`, string(encoded))
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
