package recordstore

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// ErrAuthentication means the record store refused the session credentials.
var ErrAuthentication = errors.New("record store authentication failed")

// APIError carries the record store's own status and message, surfaced verbatim.
type APIError struct {
	Op      string
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("%s failed: %d - Code %s: %s", e.Op, e.Status, e.Code, msg)
}

func (e *APIError) Unwrap() error { return common.ErrSubmission }
