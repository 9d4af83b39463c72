package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sensibo/internal/cache"
	"github.com/rshade/sensibo/internal/config"
	"github.com/rshade/sensibo/internal/credentials"
	"github.com/rshade/sensibo/internal/devices"
	"github.com/rshade/sensibo/internal/logging"
	"github.com/rshade/sensibo/internal/sensibo"
	"github.com/rshade/sensibo/internal/tui"
)

// session holds what one invocation of the root command has resolved so far.
type session struct {
	interactive func() bool
	cfg         *config.Config
}

// loadConfig reads the configuration and applies the --no-cache flag.
func (s *session) loadConfig(cmd *cobra.Command) error {
	if cmd.Annotations[annotationDefaultConfig] != "" {
		s.cfg = config.New()
		return nil
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	s.cfg = cfg
	return nil
}

// store opens the configured cache, or a disabled one when caching is off.
func (s *session) store() (devices.Cache, error) {
	if !s.cfg.Cache.Enabled {
		return cache.Disabled{}, nil
	}
	return cache.NewFileStore(s.cfg.CacheFile())
}

// service resolves the API key and builds the device service.
func (s *session) service(cmd *cobra.Command) (*devices.Service, error) {
	ctx := cmd.Context()

	creds := credentials.NewStore(
		s.cfg.AuthFile(),
		credentials.WithPrompt(cmd.ErrOrStderr(), s.interactive, nil),
	)
	apiKey, err := creds.APIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("handling API key: %w", err)
	}

	timeout, err := s.cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	client, err := sensibo.NewClient(
		apiKey,
		sensibo.WithBaseURL(s.cfg.API.BaseURL),
		sensibo.WithTimeout(timeout),
	)
	if err != nil {
		return nil, err
	}

	store, err := s.store()
	if err != nil {
		return nil, err
	}

	listTTL, err := s.cfg.DeviceListTTL()
	if err != nil {
		return nil, err
	}
	detailTTL, err := s.cfg.DeviceDetailTTL()
	if err != nil {
		return nil, err
	}

	return devices.NewService(client, store, devices.Options{
		ListTTL:     listTTL,
		DetailTTL:   detailTTL,
		Concurrency: s.cfg.Devices.Concurrency,
	}), nil
}

// resolveDeviceID returns the device id from args, or asks the user to pick one.
// ok is false when the flow ended without a device, which is not an error.
func (s *session) resolveDeviceID(
	cmd *cobra.Command,
	svc *devices.Service,
	args []string,
) (string, bool, error) {
	if len(args) > 0 {
		return args[0], true, nil
	}

	ctx := cmd.Context()
	chooser := tui.NewPicker(cmd.InOrStdin(), cmd.OutOrStdout(), s.interactive)
	id, err := svc.SelectDevice(ctx, chooser)
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, devices.ErrNoDevices):
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No devices found.")
		return "", false, nil
	case errors.Is(err, devices.ErrSelectionCancelled):
		logging.FromContext(ctx).Debug().Ctx(ctx).Str("component", "cli").Msg("device selection cancelled")
		return "", false, nil
	default:
		return "", false, err
	}
}
