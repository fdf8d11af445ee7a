package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrBlankParameter is returned when a required string parameter is empty or
// whitespace-only. Checked before any network call is issued.
var ErrBlankParameter = errors.New("parameter is blank")

// ErrUpstreamStatus is returned when an upstream endpoint answers with a
// non-200 status code.
var ErrUpstreamStatus = errors.New("unexpected upstream status")

// RequireNonBlank fails with ErrBlankParameter unless value contains at least
// one non-whitespace character. The name identifies the parameter in the error.
func RequireNonBlank(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrBlankParameter, name)
	}
	return nil
}

// RequireSuccessStatus fails with ErrUpstreamStatus unless the response
// carries HTTP 200.
func RequireSuccessStatus(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamStatus, resp.StatusCode)
	}
	return nil
}
