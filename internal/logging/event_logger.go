package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jordanella.com/hshj-locator/internal/events"
)

// EventLogger subscribes to cycle events and journals them to a session file
type EventLogger struct {
	logger          *Logger
	eventBus        events.EventBus
	subscriptionIDs []events.SubscriptionID
	logFile         *os.File
}

// NewEventLogger creates a journal under logDir named after the session
func NewEventLogger(eventBus events.EventBus, logDir, sessionID string) (*EventLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("cycles_%s_%s.log", timestamp, sessionID))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := Discard().Named("journal")
	logger.AddOutput(logFile)

	el := &EventLogger{
		logger:   logger,
		eventBus: eventBus,
		logFile:  logFile,
	}

	for _, eventType := range []events.EventType{
		events.EventTypeTargetPicked,
		events.EventTypeCycleStarted,
		events.EventTypeCycleUpdated,
		events.EventTypeCycleSettled,
		events.EventTypeCycleFailed,
	} {
		el.subscriptionIDs = append(el.subscriptionIDs, eventBus.Subscribe(eventType, el.handleEvent))
	}

	return el, nil
}

// Path returns the journal file path
func (el *EventLogger) Path() string {
	return el.logFile.Name()
}

func (el *EventLogger) handleEvent(event events.Event) {
	context := map[string]interface{}{
		"source": event.Source,
	}

	for k, v := range event.Data {
		if k == "update" {
			continue
		}
		context[k] = v
	}

	if update, ok := events.UpdateFrom(event); ok {
		context["summary"] = update.Summary
		context["point"] = formatPoint(update)
	}

	el.logger.InfoWithContext(string(event.Type), context)
}

func formatPoint(update events.DisplayUpdate) string {
	if update.Point == nil {
		return "none"
	}
	return fmt.Sprintf("(%d,%d)", update.Point.X, update.Point.Y)
}

// Close unsubscribes and closes the journal file
func (el *EventLogger) Close() error {
	for _, id := range el.subscriptionIDs {
		el.eventBus.Unsubscribe(id)
	}
	if el.logFile != nil {
		return el.logFile.Close()
	}
	return nil
}
