package logging

import (
	"fmt"
	"io"
	"strings"
)

// New returns a Logger for the named backend ("slog" or "zap").
func New(backend string, w io.Writer, level, format string) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", "slog":
		return NewSlogWriter(w, level, format), nil
	case "zap":
		return NewZapWriter(w, level, format), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
