package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	commonhttp "github.com/Soodgit/ai-code-documenter/internal/common/http"
)

const maxErrorBodySize = 64 * 1024

var (
	// ErrNoStructuredError marks a failure response whose body did not
	// parse as the server's error envelope.
	ErrNoStructuredError = errors.New("response carried no structured error")

	// ErrSessionExpired is returned once a refresh attempt has failed and
	// the local session state has been cleared.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is the typed form of a non-2xx server response.
type APIError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// decodeAPIError reads a bounded amount of the response body and turns it
// into an *APIError. A body that is not the server's envelope still yields
// an APIError carrying the status code, wrapping ErrNoStructuredError.
func decodeAPIError(resp *http.Response) *APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return &APIError{Status: resp.StatusCode, cause: ErrNoStructuredError}
	}

	var env commonhttp.ErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Code == "" {
		return &APIError{Status: resp.StatusCode, cause: ErrNoStructuredError}
	}

	return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
}
