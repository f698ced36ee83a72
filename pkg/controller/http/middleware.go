package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
)

const (
	// HeaderToken carries the shared token on ticketing webhooks
	HeaderToken = "X-Ticketcal-Token"

	// Headers set by the calendar on push notifications
	HeaderChannelToken  = "X-Goog-Channel-Token"
	HeaderChannelID     = "X-Goog-Channel-ID"
	HeaderResourceID    = "X-Goog-Resource-ID"
	HeaderResourceState = "X-Goog-Resource-State"
)

// ticketToken reads the token of ticketing webhooks from the form or the header
func ticketToken(r *http.Request) string {
	if v := r.FormValue("token"); v != "" {
		return v
	}
	return r.Header.Get(HeaderToken)
}

func channelToken(r *http.Request) string {
	return r.Header.Get(HeaderChannelToken)
}

// VerifyToken compares a presented token with the expected one in constant time
func VerifyToken(expected, presented string) error {
	if expected == "" {
		return goerr.New("API token is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) != 1 {
		return goerr.Wrap(model.ErrUnauthorized, "token mismatch")
	}
	return nil
}

// tokenMiddleware rejects requests not presenting the shared token
func tokenMiddleware(expected string, extract func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := VerifyToken(expected, extract(r)); err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
