package nocodb

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the NocoDB API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nocodb API error (status %d): %s", e.Status, e.Body)
}

// ConsistencyError indicates a table was created remotely but did not become
// queryable within the bounded wait window. The table exists; callers still
// holding the id could retry or clean up independently.
type ConsistencyError struct {
	TableID  string
	Attempts int
	Err      error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("table %s not queryable after %d attempt(s), the meta catalog may not have registered it yet: %v",
		e.TableID, e.Attempts, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// IsConsistencyTimeout checks whether an error is a consistency-wait timeout.
func IsConsistencyTimeout(err error) bool {
	var cerr *ConsistencyError
	return errors.As(err, &cerr)
}

// IsNotFound checks whether an error is a 404 from the NocoDB API.
func IsNotFound(err error) bool {
	var aerr *APIError
	return errors.As(err, &aerr) && aerr.Status == http.StatusNotFound
}
