// Package cli implements the sensibo command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/sensibo/internal/logging"
	"github.com/rshade/sensibo/internal/tui"
)

// NewRootCmd creates the root Cobra command for the sensibo CLI.
// It wires up configuration, logging and tracing, and the on, off, list,
// cache and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithTerminal(ver, tui.IsTTY)
}

// NewRootCmdWithTerminal creates the root command with an explicit terminal check.
// interactive decides whether the device picker and the API key prompt may use
// the terminal; tests pass a function returning false.
func NewRootCmdWithTerminal(ver string, interactive func() bool) *cobra.Command {
	s := &session{interactive: interactive}
	var logResult *logging.Result

	cmd := &cobra.Command{
		Use:           "sensibo",
		Short:         "Control Sensibo air conditioners",
		Long:          "sensibo: turn Sensibo-connected air conditioners on and off from the command line",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd, s.cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().Bool("no-cache", false, "bypass the response cache for this run")
	cmd.PersistentFlags().String("config", "", "path to the config file (default <config dir>/config.yaml)")

	cmd.AddCommand(
		newOnCmd(s),
		newOffCmd(s),
		newListCmd(s),
		newCacheCmd(s),
		newConfigCmd(),
	)

	return cmd
}

// annotationDefaultConfig marks commands that run on the default configuration
// instead of loading the config file.
const annotationDefaultConfig = "sensibo/default-config"

const rootCmdExample = `  # Pick a device and turn it on
  sensibo on

  # Turn a device on in cooling mode at 22 degrees
  sensibo on abc123 --mode cool --temperature 22 --temperatureUnit C

  # Turn a device off
  sensibo off abc123

  # List devices as JSON
  sensibo list --output json

  # Forget cached device data
  sensibo cache clear`

// newCacheCmd creates the cache command group.
func newCacheCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Response cache commands"}
	cmd.AddCommand(newCacheClearCmd(s), newCacheStatusCmd(s), newCachePathCmd(s))
	return cmd
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), newConfigPathCmd())
	// A broken config file must not stop "config init --force" from replacing it.
	for _, sub := range cmd.Commands() {
		sub.Annotations = map[string]string{annotationDefaultConfig: "true"}
	}
	return cmd
}
