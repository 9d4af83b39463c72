// Command sensibo controls Sensibo air conditioners from the command line.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/sensibo/internal/cli"
	"github.com/rshade/sensibo/pkg/version"
)

const cancelledMessage = "Operation cancelled by user."

func main() {
	// Registered before anything else runs so an early Ctrl-C still gets the message.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go handleInterrupt(sigCh, os.Stdout, os.Exit)

	os.Exit(exitCode(run(), os.Stderr))
}

// handleInterrupt waits for the first signal, reports the cancellation and exits 0.
// In-flight cache writes are abandoned; the temp+rename write keeps the previous file intact.
func handleInterrupt(sigCh <-chan os.Signal, w io.Writer, exit func(int)) {
	<-sigCh
	_, _ = fmt.Fprintln(w, "\n"+cancelledMessage)
	exit(0)
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.Execute()
}

// exitCode reports err on w and returns the process exit code for it.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
