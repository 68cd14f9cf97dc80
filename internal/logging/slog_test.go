package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// records decodes one JSON object per logged line.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestSlogWriter_CollectionLoggerCarriesItsName(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogWriter(&buf, "debug", "json").With("collection", "posts")

	log.Warn(context.Background(), "toggle failed, rolled back", "id", 42, "field", "like")

	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "toggle failed, rolled back", recs[0]["msg"])
	assert.Equal(t, "posts", recs[0]["collection"])
	assert.Equal(t, float64(42), recs[0]["id"])
	assert.Equal(t, "like", recs[0]["field"])
}

func TestSlogWriter_WithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	root := NewSlogWriter(&buf, "info", "json")
	_ = root.With("collection", "items")

	root.Info(context.Background(), "connectivity changed", "mode", "online")

	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.NotContains(t, recs[0], "collection")
	assert.Equal(t, "online", recs[0]["mode"])
}

func TestSlogWriter_LevelHidesStaleDiscards(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogWriter(&buf, "info", "text")
	ctx := context.Background()

	log.Debug(ctx, "discarding stale results", "query", "inter")
	log.Info(ctx, "created", "id", 7)

	out := buf.String()
	assert.NotContains(t, out, "stale")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "id=7")
}

func TestParseSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" Warn ":  slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseSlogLevel(in), "level %q", in)
	}
}

func TestNop_DiscardsAndChains(t *testing.T) {
	log := Nop().With("collection", "posts")
	assert.NotPanics(t, func() {
		log.Error(context.Background(), "ignored", "error", "boom")
	})
	assert.Equal(t, Nop(), log)
}
