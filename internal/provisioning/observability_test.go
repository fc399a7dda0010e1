package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatEvent(t *testing.T) {
	t.Parallel()

	got := formatEvent(Event{
		Type:     EventResourceDeleted,
		Stage:    "form",
		Resource: "md_table1",
		Message:  "compensating table delete succeeded",
	})
	assert.Equal(t, "resource.deleted [form] resource=md_table1 compensating table delete succeeded", got)
}

func TestFormatEvent_MinimalFields(t *testing.T) {
	t.Parallel()

	got := formatEvent(Event{Type: EventStageCompleted, Message: "done"})
	assert.Equal(t, "stage.completed done", got)
}

func TestFormatEvent_WithFields(t *testing.T) {
	t.Parallel()

	got := formatEvent(Event{
		Type:    EventStageFailed,
		Stage:   "table",
		Message: "create failed",
		Fields:  map[string]string{"attempts": "10"},
	})
	assert.Contains(t, got, "stage.failed [table] create failed")
	assert.Contains(t, got, "(attempts=10)")
}
