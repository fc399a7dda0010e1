// Package dataset defines the dataset definition types shared by the
// provisioning saga, the resource clients, and the HTTP API.
package dataset

// FieldType enumerates the supported field types of a dataset definition.
type FieldType string

const (
	// FieldNumber is a numeric measurement field. Numeric fields drive
	// chart generation: each one becomes a time-series panel.
	FieldNumber FieldType = "number"
	// FieldText is a free-text field.
	FieldText FieldType = "text"
	// FieldDate is a date field.
	FieldDate FieldType = "date"
	// FieldSelect is a single-choice field.
	FieldSelect FieldType = "select"
)

// TimestampField is the reserved field name used as the time axis of
// generated panels when present. Rows without it fall back to their
// creation timestamp.
const TimestampField = "measured_at"

// Field describes a single column of a dataset.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"field_type"`
	Unit string    `json:"unit,omitempty"`
}

// Definition is the caller-supplied description of a dataset to provision.
// It is input only and never persisted as-is; the provisioned template
// carries a serialized copy of the field list.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// NumericFields returns the numeric fields of the definition in order.
func (d Definition) NumericFields() []Field {
	var numeric []Field
	for _, f := range d.Fields {
		if f.Type == FieldNumber {
			numeric = append(numeric, f)
		}
	}
	return numeric
}

// HasTimestampField reports whether the definition contains the reserved
// measurement-timestamp field.
func (d Definition) HasTimestampField() bool {
	for _, f := range d.Fields {
		if f.Name == TimestampField {
			return true
		}
	}
	return false
}
