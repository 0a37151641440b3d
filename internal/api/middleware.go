// internal/api/middleware.go
package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/courtbook/courtbook/internal/authz"
	"github.com/courtbook/courtbook/internal/domain"
	"github.com/courtbook/courtbook/internal/store"
)

type Middleware func(http.Handler) http.Handler

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", requestIDFromContext(r.Context())).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type requestIDContextKey struct{}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Request-scoped logger carrying the ID
		logger := log.With().Str("request_id", requestID).Logger()

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// WithActor resolves the calling user from the X-Actor-ID header into an
// authz.Actor capability on the request context. Blocked users are rejected
// here; the engine below never re-checks blocking. Requests without the
// header pass through unauthenticated, and each handler decides whether an
// actor is required.
func WithActor(s *store.Store) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("X-Actor-ID"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			logger := log.Ctx(r.Context())

			actorID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || actorID <= 0 {
				logger.Warn().Str("actor_id", raw).Msg("Malformed actor header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			queryCtx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()

			user, err := s.GetUser(queryCtx, actorID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Warn().Int64("actor_id", actorID).Msg("Unknown actor")
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				logger.Error().Err(err).Int64("actor_id", actorID).Msg("Failed to resolve actor")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user.IsBlocked {
				logger.Warn().Int64("actor_id", actorID).Msg("Blocked actor rejected")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := authz.ContextWithActor(r.Context(), authz.Actor{ID: user.ID, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
