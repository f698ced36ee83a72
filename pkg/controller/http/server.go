package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/secmon-lab/ticketcal/pkg/domain/model"
	"github.com/secmon-lab/ticketcal/pkg/usecase"
	"github.com/secmon-lab/ticketcal/pkg/utils/logging"
	"github.com/secmon-lab/ticketcal/pkg/utils/metrics"
	"github.com/secmon-lab/ticketcal/pkg/utils/safe"
)

// UseCase is the application entry points reached from HTTP
type UseCase interface {
	OnTicketCreatedOrUpdated(ctx context.Context, ticketID model.TicketID, overwrite bool) error
	OnCalendarNotification(ctx context.Context, n *usecase.Notification) error
	OnOAuthCallback(ctx context.Context, profileID model.ProfileID, code string) error
}

// AuthUseCase covers login and revocation of profiles
type AuthUseCase interface {
	LoginURL(profileID model.ProfileID) (string, error)
	ParseState(state string) (model.ProfileID, error)
	Revoke(ctx context.Context, profileID model.ProfileID) error
}

type Server struct {
	router      *chi.Mux
	uc          UseCase
	authUC      AuthUseCase
	apiToken    string
	redirectURL string
}

type Options func(*Server)

// WithAuth enables the OAuth login, callback and revoke endpoints
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithAPIToken sets the shared token required from webhook callers
func WithAPIToken(token string) Options {
	return func(s *Server) {
		s.apiToken = token
	}
}

// WithRedirectURL sets where the browser lands after a completed login
func WithRedirectURL(u string) Options {
	return func(s *Server) {
		s.redirectURL = u
	}
}

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		redirectURL: "/",
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	// Ticketing triggers address /ticket/<id>/
	r.Use(middleware.StripSlashes)
	r.Use(metrics.Middleware())

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(tokenMiddleware(s.apiToken, ticketToken))
		r.Post("/ticket/{id}", ticketHandler(s.uc, false))
		r.Put("/ticket/{id}", ticketHandler(s.uc, true))
	})

	r.Group(func(r chi.Router) {
		r.Use(tokenMiddleware(s.apiToken, channelToken))
		r.Post("/hooks/calendar/{profile}", calendarHookHandler(s.uc))
	})

	if s.authUC != nil {
		r.Route("/oauth", func(r chi.Router) {
			r.Get("/login/{profile}", loginHandler(s.authUC))
			r.Get("/callback", callbackHandler(s.uc, s.authUC, s.redirectURL))
			r.With(tokenMiddleware(s.apiToken, ticketToken)).Delete("/{profile}", revokeHandler(s.authUC))
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.With(r.Context(), logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context())))

		defer func() {
			logging.From(ctx).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	safe.Write(r.Context(), w, []byte("ok"))
}
