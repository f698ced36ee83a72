package calendar

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
)

func apiStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// isTransient reports whether a failed call is worth retrying in-call
func isTransient(err error) bool {
	if errors.Is(err, model.ErrCredentialsNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	code := apiStatus(err)
	switch {
	case code == 0:
		// Transport level failure
		return true
	case code == http.StatusTooManyRequests, code >= 500:
		return true
	default:
		return false
	}
}

// mapError translates a calendar API failure into a domain error. goneErr is used for 404 and
// 410 responses and may be nil when those codes carry no special meaning for the operation.
func mapError(err error, msg string, goneErr error, values ...goerr.Option) error {
	return translate(err, msg, goneErr, []int{http.StatusNotFound, http.StatusGone}, values...)
}

// mapStopError is mapError for channel stops, where only 404 means the channel is gone.
func mapStopError(err error, msg string, values ...goerr.Option) error {
	return translate(err, msg, model.ErrChannelNotFound, []int{http.StatusNotFound}, values...)
}

func translate(err error, msg string, goneErr error, goneCodes []int, values ...goerr.Option) error {
	if errors.Is(err, model.ErrCredentialsNotFound) {
		return goerr.Wrap(err, msg, values...)
	}

	code := apiStatus(err)
	values = append(values, goerr.V("status", code))

	if goneErr != nil && slices.Contains(goneCodes, code) {
		return goerr.Wrap(goneErr, msg, append(values, goerr.V("error", err.Error()))...)
	}
	if isTransient(err) {
		return goerr.Wrap(model.ErrBackendUnavailable, msg, append(values, goerr.V("error", err.Error()))...)
	}
	return goerr.Wrap(err, msg, values...)
}
