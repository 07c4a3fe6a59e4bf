package gcp

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for the provider failure modes callers branch on.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)

// wrapAPIError maps a googleapi error onto the sentinel taxonomy so callers
// can use errors.Is instead of inspecting HTTP status codes.
func wrapAPIError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return fmt.Errorf("%s: %w: %s", op, ErrPermissionDenied, apiErr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %s", op, ErrNotFound, apiErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
