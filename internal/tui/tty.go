// Package tui renders the interactive pieces of the sensibo CLI: the device
// picker shown when a command is run without a device id, its line-based
// fallback for non-interactive terminals, and the device table.
package tui

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether both stdin and stdout are terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
