package logging

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"jordanella.com/hshj-locator/internal/events"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" WARN ":  LogLevelWarn,
		"Error":   LogLevelError,
		"fatal":   LogLevelFatal,
		"info":    LogLevelInfo,
		"verbose": LogLevelInfo,
		"":        LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNamedLoggersShareOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	root := Discard().Named("app")
	root.AddOutput(&buf)
	root.SetMinLevel(LogLevelWarn)

	child := root.Named("ocr")
	child.Info("hidden")
	child.Warn("model fallback")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO line passed a WARN threshold: %q", out)
	}
	if !strings.Contains(out, "WARN [ocr] model fallback") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestContextIsSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := Discard().Named("coordinator")
	logger.AddOutput(&buf)

	logger.InfoWithContext("cycle", map[string]interface{}{"slot": "fast", "epoch": 2})

	if !strings.HasSuffix(buf.String(), "cycle | epoch=2 slot=fast\n") {
		t.Errorf("unexpected line: %q", buf.String())
	}
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func TestSinkWriterSplitsLines(t *testing.T) {
	pub := &capturePublisher{}
	w := NewSinkWriter(pub)

	n, err := w.Write([]byte("first\n\nsecond\n"))
	if err != nil || n != len("first\n\nsecond\n") {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 line events, got %d", len(pub.events))
	}
	if events.LineFrom(pub.events[0]) != "first" || events.LineFrom(pub.events[1]) != "second" {
		t.Errorf("unexpected lines: %q, %q", events.LineFrom(pub.events[0]), events.LineFrom(pub.events[1]))
	}
}

func TestEventLoggerJournalsCycles(t *testing.T) {
	bus := events.NewEventBus(16)
	journal, err := NewEventLogger(bus, t.TempDir(), "test")
	if err != nil {
		t.Fatalf("NewEventLogger: %v", err)
	}

	bus.Publish(events.NewCycleStartedEvent(1, "abc", 640, 360, "p:0"))
	bus.Publish(events.NewLogLineEvent("not journaled"))
	bus.Stop()
	path := journal.Path()
	if err := journal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	data := string(raw)
	if !strings.Contains(data, "cycle.started") || !strings.Contains(data, "cycle_id=abc") {
		t.Errorf("journal missing cycle start: %q", data)
	}
	if strings.Contains(data, "not journaled") {
		t.Errorf("log lines leaked into the journal: %q", data)
	}
}
