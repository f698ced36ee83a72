package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// Handle logs the error with its goerr values and stack, and reports it to Sentry
// when a Sentry client is configured.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("message", msg)
			if ge != nil {
				scope.SetContext("values", ge.Values())
			}
			hub.CaptureException(err)
		})
	}
}

// HandleHTTP logs the error and writes an HTTP error response.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		Handle(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	http.Error(w, http.StatusText(statusCode), statusCode)
}
