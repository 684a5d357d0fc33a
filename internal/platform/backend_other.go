//go:build !linux

package platform

import (
	"fmt"
	"log/slog"
	"runtime"
)

// New reports that no window-system backend exists for this OS.
func New(opts Options, logger *slog.Logger) (Backend, error) {
	return nil, fmt.Errorf("inputviz: no window-system backend for %s", runtime.GOOS)
}
