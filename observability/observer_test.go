package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/varbind/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 2, want: "TRACE"},
		{name: "verbose", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info", level: observability.LevelInfo, want: "INFO"},
		{name: "warning", level: observability.LevelWarning, want: "WARN"},
		{name: "error", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 24, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level observability.Level
		want  slog.Level
	}{
		{level: observability.LevelVerbose, want: slog.LevelDebug},
		{level: observability.LevelInfo, want: slog.LevelInfo},
		{level: observability.LevelWarning, want: slog.LevelWarn},
		{level: observability.LevelError, want: slog.LevelError},
	}

	for _, tt := range tests {
		if got := tt.level.SlogLevel(); got != tt.want {
			t.Errorf("Level(%d).SlogLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEmit_StampsTimestamp(t *testing.T) {
	var got observability.Event
	obs := observability.ObserverFunc(func(_ context.Context, e observability.Event) {
		got = e
	})

	observability.Emit(obs, observability.Event{Type: "variable.create"})

	if got.Type != "variable.create" {
		t.Errorf("event type = %q, want %q", got.Type, "variable.create")
	}
	if got.Timestamp.IsZero() {
		t.Error("Emit did not stamp a timestamp")
	}
}

func TestEmit_KeepsTimestamp(t *testing.T) {
	stamp := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	var got observability.Event
	obs := observability.ObserverFunc(func(_ context.Context, e observability.Event) {
		got = e
	})

	observability.Emit(obs, observability.Event{Type: "x", Timestamp: stamp})

	if !got.Timestamp.Equal(stamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, stamp)
	}
}

func TestEmit_NilObserver(t *testing.T) {
	observability.Emit(nil, observability.Event{Type: "x"})
}

func TestMultiObserver(t *testing.T) {
	var count1, count2 int
	obs1 := observability.ObserverFunc(func(context.Context, observability.Event) { count1++ })
	obs2 := observability.ObserverFunc(func(context.Context, observability.Event) { count2++ })

	multi := observability.NewMultiObserver(nil, obs1)
	multi.Add(nil)
	multi.Add(obs2)

	if multi.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", multi.Len())
	}

	multi.OnEvent(context.Background(), observability.Event{Type: "block.create"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("deliveries = (%d, %d), want (1, 1)", count1, count2)
	}
}

func TestSlogObserver_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:   "variable.rename",
		Level:  observability.LevelInfo,
		Source: "workspace",
		Data:   map[string]any{"id": "id1", "name": "total"},
	})

	out := buf.String()
	for _, want := range []string{"variable.rename", "source=workspace", "id=id1", "name=total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogObserver_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	obs := observability.NewSlogObserver(logger)
	obs.OnEvent(context.Background(), observability.Event{
		Type:  "field.bind",
		Level: observability.LevelVerbose,
	})

	if buf.Len() != 0 {
		t.Errorf("verbose event logged at info level: %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"noop", "slog"} {
		if _, err := observability.GetObserver(name); err != nil {
			t.Errorf("GetObserver(%q) error = %v", name, err)
		}
	}

	_, err := observability.GetObserver("missing")
	if !errors.Is(err, observability.ErrUnknownObserver) {
		t.Errorf("GetObserver(missing) error = %v, want %v", err, observability.ErrUnknownObserver)
	}

	observability.RegisterObserver("test-custom", observability.NoOpObserver{})
	found := false
	for _, name := range observability.ObserverNames() {
		if name == "test-custom" {
			found = true
		}
	}
	if !found {
		t.Error("ObserverNames() missing test-custom")
	}
}
