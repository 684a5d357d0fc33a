package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/inputviz/internal/ipc"
)

func printOverlayUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: inputviz overlay <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create <label>    Create an overlay window for label (idempotent)")
}

func runOverlay(args []string) int {
	if len(args) == 0 {
		printOverlayUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "create":
		return runOverlayCreate(args[1:])
	case "help", "-h", "--help":
		printOverlayUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown overlay command: %s\n\n", args[0])
		printOverlayUsage(os.Stderr)
		return 2
	}
}

func runOverlayCreate(args []string) int {
	fs := flag.NewFlagSet("overlay create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inputviz overlay create [--json] <label>")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "overlay create requires exactly one <label>")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().CreateWindow(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}
	verb := "exists"
	if data.Created {
		verb = "created"
	}
	fmt.Printf("%s: %s (handle %d, route %s)\n", verb, data.Window.Label, data.Window.Handle, data.Window.Route)
	return 0
}

func runAction(action string, args []string) int {
	fs := flag.NewFlagSet(action, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: inputviz %s\n", action)
		fmt.Fprintln(os.Stderr, "")
		switch action {
		case "quit":
			fmt.Fprintln(os.Stderr, "Stop the daemon, the same as the tray's Quit entry.")
		default:
			fmt.Fprintf(os.Stderr, "%s every overlay, the same as the tray's menu entry.\n", strings.ToUpper(action[:1])+action[1:])
		}
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", action)
		fs.Usage()
		return 2
	}

	if err := ipc.NewClient().SetVisibility(action); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print overlays as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inputviz list [--json]")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		if windows == nil {
			windows = []ipc.WindowInfo{}
		}
		return printJSON(windows)
	}
	if len(windows) == 0 {
		fmt.Println("no overlays")
		return 0
	}
	fmt.Print(renderWindows(windows, isTTY(os.Stdout)))
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inputviz status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	fmt.Printf("capture_running:  %v\n", status.CaptureRunning)
	fmt.Printf("events_forwarded: %d\n", status.EventsForwarded)
	fmt.Printf("events_dropped:   %d\n", status.EventsDropped)
	fmt.Printf("window_count:     %d\n", status.WindowCount)
	fmt.Printf("targets:          %s\n", strings.Join(status.Targets, ", "))
	fmt.Printf("channel:          %s\n", status.Channel)
	fmt.Printf("tray_mode:        %s\n", status.TrayMode)
	fmt.Printf("transparent:      %v\n", status.Transparent)
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
