package devices

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rshade/sensibo/internal/sensibo"
)

// StateChange is a request to move a device to a new operating state.
// Nil and empty fields are left to the API's own defaults; On defaults to true.
type StateChange struct {
	DeviceID          string
	On                *bool
	Mode              string
	FanLevel          string
	TargetTemperature *int
	TemperatureUnit   string
	Swing             string
}

// TurnOn returns a change that powers the device on and leaves every other setting alone.
func TurnOn(deviceID string) StateChange {
	return StateChange{DeviceID: deviceID}
}

// TurnOff returns a change that only powers the device off.
func TurnOff(deviceID string) StateChange {
	off := false
	return StateChange{DeviceID: deviceID, On: &off}
}

// Payload builds the partial acState for the API. Only fields with a concrete
// value are set. Mode and fan level are lower-cased and the temperature unit
// upper-cased; swing values are camelCase on the API side and pass through.
func (c StateChange) Payload() (sensibo.ACState, error) {
	on := true
	if c.On != nil {
		on = *c.On
	}

	state := sensibo.ACState{
		On:       &on,
		Mode:     lower(c.Mode),
		FanLevel: lower(c.FanLevel),
		Swing:    strings.TrimSpace(c.Swing),
	}

	if c.TargetTemperature != nil {
		temp := *c.TargetTemperature
		if temp < MinTemperature || temp > MaxTemperature {
			return sensibo.ACState{}, fmt.Errorf("%w: %d is outside %d..%d",
				ErrInvalidTemperature, temp, MinTemperature, MaxTemperature)
		}
		state.TargetTemperature = &temp
	}

	if unit := strings.TrimSpace(c.TemperatureUnit); unit != "" {
		unit = cases.Upper(language.Und).String(unit)
		if unit != "C" && unit != "F" {
			return sensibo.ACState{}, fmt.Errorf("%w: got %q", ErrInvalidTemperatureUnit, c.TemperatureUnit)
		}
		state.TemperatureUnit = unit
	}

	return state, nil
}

// Accepted target temperature range, wide enough for both Celsius and Fahrenheit.
const (
	MinTemperature = -100
	MaxTemperature = 200
)

// ParseTemperature parses a target temperature given on the command line.
// Fractional values are truncated toward zero ("22.7" is 22). An empty string yields nil.
// Values outside MinTemperature..MaxTemperature are rejected.
func ParseTemperature(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil //nolint:nilnil // absent temperature is not an error
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTemperature, s)
	}
	f = math.Trunc(f)
	if f < MinTemperature || f > MaxTemperature {
		return nil, fmt.Errorf("%w: %q is outside %d..%d", ErrInvalidTemperature, s, MinTemperature, MaxTemperature)
	}
	n := int(f)
	return &n, nil
}

func lower(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
