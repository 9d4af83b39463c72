package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sensibo/internal/cache"
	"github.com/rshade/sensibo/internal/logging"
)

func newCacheClearCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached device list and detail record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The file is cleared even when caching is disabled for this run.
			store, err := cache.NewFileStore(s.cfg.CacheFile())
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			ctx := cmd.Context()
			logging.FromContext(ctx).Info().Ctx(ctx).Str("component", "cli").Str("path", store.Path()).Msg("cache cleared")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", store.Path())
			return nil
		},
	}
}

func newCacheStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cached entries and when they expire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cache.NewFileStore(s.cfg.CacheFile())
			if err != nil {
				return err
			}
			infos, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Cache file: %s\n", store.Path())
			if len(infos) == 0 {
				_, _ = fmt.Fprintln(out, "No cached entries.")
				return nil
			}
			for _, info := range infos {
				state := "expired"
				if info.Valid {
					state = "expires in " + cache.FormatDuration(info.ExpiresIn)
				}
				_, _ = fmt.Fprintf(out, "  %s: %s\n", info.Key, state)
			}
			return nil
		},
	}
}

func newCachePathCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.cfg.CacheFile())
			return nil
		},
	}
}
