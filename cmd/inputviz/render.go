package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/inputviz/internal/input"
	"github.com/1broseidon/inputviz/internal/ipc"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	visibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	hiddenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	upStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	scrollStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	uiStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Italic(true)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func renderWindows(windows []ipc.WindowInfo, styled bool) string {
	var b strings.Builder
	header := fmt.Sprintf("%-16s %-8s %-8s %s", "LABEL", "HANDLE", "STATE", "ROUTE")
	if styled {
		header = headerStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for _, w := range windows {
		label := fmt.Sprintf("%-16s", w.Label)
		state := fmt.Sprintf("%-8s", w.Visibility)
		if styled {
			label = labelStyle.Render(label)
			if w.Visibility == "visible" {
				state = visibleStyle.Render(state)
			} else {
				state = hiddenStyle.Render(state)
			}
		}
		fmt.Fprintf(&b, "%s %-8d %s %s\n", label, w.Handle, state, w.Route)
	}
	return b.String()
}

// renderEnvelope formats one streamed envelope as a single line.
func renderEnvelope(env ipc.Envelope, styled bool) (string, error) {
	if env.Channel == "show-ui" || env.Channel == "hide-ui" {
		line := "<" + env.Channel + ">"
		if styled {
			line = uiStyle.Render(line)
		}
		return line, nil
	}

	var ev input.Event
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return "", fmt.Errorf("decode %s payload: %w", env.Channel, err)
	}

	stamp := ev.Time.Local().Format("15:04:05.000")
	body := ev.String()
	if styled {
		stamp = timeStyle.Render(stamp)
		switch ev.Kind {
		case input.KindKeyDown, input.KindButtonDown:
			body = downStyle.Render(body)
		case input.KindScroll:
			body = scrollStyle.Render(body)
		default:
			body = upStyle.Render(body)
		}
		if w := terminalWidth(); w > 0 {
			body = lipgloss.NewStyle().MaxWidth(w - lipgloss.Width(stamp) - 1).Render(body)
		}
	}
	return stamp + " " + body, nil
}
