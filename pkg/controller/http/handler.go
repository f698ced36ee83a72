package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/domain/types"
	"github.com/secmon-lab/ticketcal/pkg/usecase"
	"github.com/secmon-lab/ticketcal/pkg/utils/errutil"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
)

// ticketHandler accepts a ticket webhook. overwrite selects updating the existing event
// instead of creating another one.
func ticketHandler(uc UseCase, overwrite bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, err := model.ParseTicketID(chi.URLParam(r, "id"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		if err := uc.OnTicketCreatedOrUpdated(r.Context(), ticketID, overwrite); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func calendarHookHandler(uc UseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := model.ParseProfileID(chi.URLParam(r, "profile"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		n := &usecase.Notification{
			ProfileID:  profileID,
			State:      types.ResourceState(r.Header.Get(HeaderResourceState)),
			ChannelID:  r.Header.Get(HeaderChannelID),
			ResourceID: r.Header.Get(HeaderResourceID),
		}
		if err := uc.OnCalendarNotification(r.Context(), n); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func loginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := model.ParseProfileID(chi.URLParam(r, "profile"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		loginURL, err := authUC.LoginURL(profileID)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, loginURL, http.StatusFound)
	}
}

func callbackHandler(uc UseCase, authUC AuthUseCase, redirectURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if e := query.Get("error"); e != "" {
			logging.From(r.Context()).Warn("login declined", "error", e)
			http.Error(w, "login was not completed", http.StatusForbidden)
			return
		}

		profileID, err := authUC.ParseState(query.Get("state"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		code := query.Get("code")
		if code == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("authorization code is missing"), http.StatusBadRequest)
			return
		}

		if err := uc.OnOAuthCallback(r.Context(), profileID, code); err != nil {
			status := http.StatusInternalServerError
			// A rejected code is the browser's problem, not ours
			var re *oauth2.RetrieveError
			if errors.As(err, &re) {
				status = http.StatusBadRequest
			}
			errutil.HandleHTTP(r.Context(), w, err, status)
			return
		}

		logging.From(r.Context()).Info("profile logged in", "profile_id", profileID)
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

func revokeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, err := model.ParseProfileID(chi.URLParam(r, "profile"))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
			return
		}

		if err := authUC.Revoke(r.Context(), profileID); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
