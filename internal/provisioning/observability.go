package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Logger is the minimal logging surface the saga needs.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer receives structured events emitted during provisioning and
// deprovisioning.
type Observer interface {
	Logger

	// Event emits a structured event.
	Event(event Event)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType
	Stage     string
	Resource  string
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStageStarted indicates a pipeline stage has started.
	EventStageStarted EventType = "stage.started"
	// EventStageCompleted indicates a pipeline stage completed successfully.
	EventStageCompleted EventType = "stage.completed"
	// EventStageFailed indicates a pipeline stage failed.
	EventStageFailed EventType = "stage.failed"

	// EventResourceDeleted indicates an external resource was deleted.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceDeleteFailed indicates a best-effort delete failed.
	EventResourceDeleteFailed EventType = "resource.delete_failed"

	// EventVisualizeFailed indicates the best-effort visualization step
	// failed. Never affects the provisioning outcome.
	EventVisualizeFailed EventType = "visualize.failed"
)

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct{}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	log.Print(formatEvent(event))
}

func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Stage != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Stage))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}
