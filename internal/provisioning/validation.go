package provisioning

import (
	"fmt"
	"strings"

	"github.com/mosaic-portal/mosaic/internal/dataset"
)

// ValidateDefinition checks a dataset definition before the saga runs. The
// pipeline itself never sees an invalid definition: callers reject bad input
// here, before any remote call is made.
func ValidateDefinition(def dataset.Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if len(def.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	for _, f := range def.Fields {
		if !validFieldName(f.Name) {
			return fmt.Errorf("field name %q must be lowercase alphanumeric and underscore, starting with a letter", f.Name)
		}
		switch f.Type {
		case dataset.FieldNumber, dataset.FieldText, dataset.FieldDate, dataset.FieldSelect:
		default:
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}
	}

	return nil
}

// validFieldName reports whether a field name is a valid column identifier:
// lowercase alphanumeric plus underscore, not starting with a digit.
func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
