package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "overlay":
		os.Exit(runOverlay(os.Args[2:]))
	case "show", "hide", "quit":
		os.Exit(runAction(os.Args[1], os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: inputviz <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon                  Start the inputviz daemon (foreground)")
	fmt.Fprintln(w, "  status                  Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  overlay create <label>  Create an overlay window (idempotent)")
	fmt.Fprintln(w, "  list                    List overlay windows")
	fmt.Fprintln(w, "  show                    Show all overlays")
	fmt.Fprintln(w, "  hide                    Hide all overlays")
	fmt.Fprintln(w, "  quit                    Stop the daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  watch                   Stream captured input events")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate         Validate configuration")
	fmt.Fprintln(w, "  config print            Print configuration")
	fmt.Fprintln(w, "  config explain          Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve               Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'inputviz <command> --help' for command-specific options.")
}

// parseFlags parses args and maps the outcome to an exit code. ok is false
// when the caller should return code immediately.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}
