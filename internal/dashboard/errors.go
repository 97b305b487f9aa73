package dashboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bobmcallan/carfeed/internal/clients/feedbackapi"
)

var (
	// ErrAuth is returned when the admin password is rejected.
	ErrAuth = errors.New("incorrect password")

	// ErrAdminRequired guards moderation and deletion.
	ErrAdminRequired = errors.New("admin mode required")

	// ErrNotEditable is returned for items outside the moderation states.
	ErrNotEditable = errors.New("feedback item is not editable")

	// ErrBusy rejects a workflow that is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrNotEditing is returned by draft operations outside edit mode.
	ErrNotEditing = errors.New("no feedback item is being edited")
)

// ValidationError is raised locally, before any request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRemote reports whether err came from the feedback API or the network
// rather than from a local check.
func IsRemote(err error) bool {
	if err == nil {
		return false
	}
	return !IsValidation(err) &&
		!errors.Is(err, ErrAuth) &&
		!errors.Is(err, ErrAdminRequired) &&
		!errors.Is(err, ErrNotEditable) &&
		!errors.Is(err, ErrBusy) &&
		!errors.Is(err, ErrNotEditing)
}

// isUnauthorized reports whether the server rejected the session token.
func isUnauthorized(err error) bool {
	var apiErr *feedbackapi.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
