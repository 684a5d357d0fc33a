package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/inputviz/internal/ipc"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	label := fs.String("label", "", "Subscribe under this target label (e.g. main to also receive show-ui/hide-ui)")
	asJSON := fs.Bool("json", false, "Print raw envelopes as JSON lines (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inputviz watch [--label LABEL] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Stream the events the daemon broadcasts to its overlays. Ctrl+C stops.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw := *asJSON || !isTTY(os.Stdout)
	enc := json.NewEncoder(os.Stdout)

	err := ipc.NewClient().Subscribe(ctx, *label, func(env ipc.Envelope) error {
		if raw {
			return enc.Encode(env)
		}
		line, err := renderEnvelope(env, true)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
