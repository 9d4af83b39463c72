package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sensibo/internal/tui"
)

// Output formats of the list command.
const (
	outputTable = "table"
	outputJSON  = "json"
)

func newListCmd(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Long:  "Lists the devices on the account, served from the cache while it is fresh.",
		Example: `  # Show devices as a table
  sensibo list

  # Machine-readable output
  sensibo list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != outputTable && output != outputJSON {
				return fmt.Errorf("unsupported output format %q (use %s or %s)", output, outputTable, outputJSON)
			}

			svc, err := s.service(cmd)
			if err != nil {
				return err
			}

			list, err := svc.ListDevices(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list) == 0 {
				_, _ = fmt.Fprintln(out, "No devices found.")
				return nil
			}
			_, _ = fmt.Fprintln(out, tui.RenderDeviceTable(list))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}
