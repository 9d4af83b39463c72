package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/sensibo/internal/devices"
)

// stateFlags holds the optional acState settings of the on command.
type stateFlags struct {
	temperature     string
	mode            string
	fanLevel        string
	temperatureUnit string
	swing           string
}

// change builds the state change for deviceID from the flags.
func (f stateFlags) change(deviceID string, target *int) devices.StateChange {
	c := devices.TurnOn(deviceID)
	c.Mode = f.mode
	c.FanLevel = f.fanLevel
	c.TargetTemperature = target
	c.TemperatureUnit = f.temperatureUnit
	c.Swing = f.swing
	return c
}

func newOnCmd(s *session) *cobra.Command {
	var flags stateFlags

	cmd := &cobra.Command{
		Use:   "on [deviceId]",
		Short: "Turn a device on",
		Long: `Turns a device on. Settings that are not given are left as the device has them.
Without a device id the devices are listed for selection.`,
		Example: `  # Choose a device and turn it on
  sensibo on

  # Heat to 70 degrees Fahrenheit with a low fan
  sensibo on abc123 -m heat -t 70 -u F -f low`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject a bad temperature before any network call or prompt.
			target, err := devices.ParseTemperature(flags.temperature)
			if err != nil {
				return err
			}
			if _, err := flags.change("", target).Payload(); err != nil {
				return err
			}
			return s.changeState(cmd, args, func(id string) devices.StateChange {
				return flags.change(id, target)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.temperature, "temperature", "t", "", "target temperature")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "operating mode (cool, heat, fan, dry, auto)")
	cmd.Flags().StringVarP(&flags.fanLevel, "fanLevel", "f", "", "fan level (low, medium, high, auto)")
	cmd.Flags().StringVarP(&flags.temperatureUnit, "temperatureUnit", "u", "", "temperature unit (C or F)")
	cmd.Flags().StringVarP(&flags.swing, "swing", "s", "", "swing mode (e.g. stopped, rangeFull)")

	return cmd
}

func newOffCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "off [deviceId]",
		Short: "Turn a device off",
		Long: `Turns a device off without changing any other setting.
Without a device id the devices are listed for selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.changeState(cmd, args, devices.TurnOff)
		},
	}
}

// changeState resolves the target device and sends one state change to it.
func (s *session) changeState(
	cmd *cobra.Command,
	args []string,
	build func(deviceID string) devices.StateChange,
) error {
	svc, err := s.service(cmd)
	if err != nil {
		return err
	}

	id, ok, err := s.resolveDeviceID(cmd, svc, args)
	if err != nil || !ok {
		return err
	}

	if err := svc.ChangeDeviceState(cmd.Context(), build(id)); err != nil {
		return fmt.Errorf("changing device state: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Changed state of device %s.\n", id)
	return nil
}
