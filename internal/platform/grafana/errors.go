package grafana

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the Grafana API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("grafana API error (status %d): %s", e.Status, e.Body)
}

// IsNotFound checks whether an error is a 404 from the Grafana API.
func IsNotFound(err error) bool {
	var aerr *APIError
	return errors.As(err, &aerr) && aerr.Status == http.StatusNotFound
}
