package logging

import (
	"strings"

	"jordanella.com/hshj-locator/internal/events"
)

// SinkWriter forwards each formatted log line to the bus as a log line event,
// so the presentation log pane shows exactly what stdout shows.
type SinkWriter struct {
	publisher events.Publisher
}

// NewSinkWriter creates a writer publishing to p
func NewSinkWriter(p events.Publisher) *SinkWriter {
	return &SinkWriter{publisher: p}
}

func (w *SinkWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.publisher.Publish(events.NewLogLineEvent(line))
	}
	return len(p), nil
}
