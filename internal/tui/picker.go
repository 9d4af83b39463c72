package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/sensibo/internal/devices"
)

// pickerTitle is the prompt shown above the device list.
const pickerTitle = "Choose a device"

// Picker lets the user choose a device. It runs the Bubble Tea picker on a
// terminal and falls back to LinePrompt otherwise.
type Picker struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

// NewPicker creates a Picker reading from in and drawing to out.
// interactive decides between the full-screen picker and the numbered prompt; nil means IsTTY.
func NewPicker(in io.Reader, out io.Writer, interactive func() bool) *Picker {
	if interactive == nil {
		interactive = IsTTY
	}
	return &Picker{in: in, out: out, interactive: interactive}
}

// Choose implements devices.Chooser.
func (p *Picker) Choose(ctx context.Context, list []devices.Device) (int, error) {
	if !p.interactive() {
		return NewLinePrompt(p.in, p.out).Choose(ctx, list)
	}

	prog := tea.NewProgram(
		NewPickerModel(pickerTitle, labels(list)),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return -1, devices.ErrSelectionCancelled
		}
		return -1, fmt.Errorf("running device picker: %w", err)
	}

	m, ok := final.(PickerModel)
	if !ok || !m.Chosen() {
		return -1, devices.ErrSelectionCancelled
	}
	return m.Selected(), nil
}

// LinePrompt is a numbered, line-based chooser for pipes and dumb terminals.
type LinePrompt struct {
	in  io.Reader
	out io.Writer
}

// NewLinePrompt creates a LinePrompt.
func NewLinePrompt(in io.Reader, out io.Writer) *LinePrompt {
	return &LinePrompt{in: in, out: out}
}

// Choose prints the devices as a numbered list and reads a number.
// 0, "q" and end of input cancel; anything else out of range asks again.
func (lp *LinePrompt) Choose(ctx context.Context, list []devices.Device) (int, error) {
	for i, label := range labels(list) {
		_, _ = fmt.Fprintf(lp.out, "[%d] %s\n", i+1, label)
	}
	_, _ = fmt.Fprintln(lp.out, "[0] CANCEL")

	scanner := bufio.NewScanner(lp.in)
	for {
		if err := ctx.Err(); err != nil {
			return -1, devices.ErrSelectionCancelled
		}

		_, _ = fmt.Fprintf(lp.out, "\n%s [1-%d, 0]: ", pickerTitle, len(list))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return -1, fmt.Errorf("reading selection: %w", err)
			}
			return -1, devices.ErrSelectionCancelled
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "q") {
			return -1, devices.ErrSelectionCancelled
		}

		n, err := strconv.Atoi(input)
		switch {
		case err != nil || n < 0 || n > len(list):
			_, _ = fmt.Fprintf(lp.out, "Please enter a number between 0 and %d.\n", len(list))
		case n == 0:
			return -1, devices.ErrSelectionCancelled
		default:
			return n - 1, nil
		}
	}
}

func labels(list []devices.Device) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.String()
	}
	return out
}
