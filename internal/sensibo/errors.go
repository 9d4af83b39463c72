package sensibo

import (
	"errors"
	"fmt"
)

// Sentinel errors for the Sensibo API client.
var (
	// ErrMissingAPIKey indicates the client was constructed without credentials.
	ErrMissingAPIKey = errors.New("sensibo API key is required")

	// ErrMissingDeviceID indicates a call that addresses a pod got an empty id.
	ErrMissingDeviceID = errors.New("device id is required")

	// ErrIncompleteDevice indicates a pod record without the room name every pod has.
	ErrIncompleteDevice = errors.New("device record is missing its room name")
)

// APIError is a non-success answer from the Sensibo API.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Reason is the API's failure reason or the raw response body.
	Reason string
}

func (e *APIError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("sensibo API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("sensibo API returned status %d: %s", e.StatusCode, e.Reason)
}
