package portalsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSessionExpired is returned when the refresh token has been rejected and
// the credential store has been cleared. The user has to log in again.
var ErrSessionExpired = errors.New("portalsdk: session expired")

// ErrNoCredentials is returned by authenticated calls when the store holds
// no token pair.
var ErrNoCredentials = errors.New("portalsdk: no stored credentials")

// APIError is the portal's error envelope, shared by every endpoint.
type APIError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Code      string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("portalsdk: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// parseErrorResponse turns a non-2xx response body into an *APIError. Bodies
// that aren't the standard envelope still produce a usable error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Status != 0 {
		return &apiErr
	}
	return &APIError{
		Timestamp: time.Now().UTC(),
		Status:    resp.StatusCode,
		Code:      http.StatusText(resp.StatusCode),
		Message:   string(body),
		Path:      resp.Request.URL.Path,
	}
}
