package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/auth"
	apperrors "hackverse-mindmap/internal/errors"
	"hackverse-mindmap/internal/infrastructure/breaker"
)

// Logger logs one line per request.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())))
		})
	}
}

// Authenticate validates the bearer token and requires its subject to be
// the {userId} path parameter. A nil validator lets every request through.
func Authenticate(validator *auth.Validator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := validator.ValidateToken(r.Header.Get("Authorization"))
			if err != nil {
				msg := "Invalid authentication token"
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					msg = "Authentication required"
				case errors.Is(err, auth.ErrExpiredToken):
					msg = "Authentication token has expired"
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteJSON(w, http.StatusUnauthorized, errorBody{Detail: msg})
				return
			}
			if claims.UserID != chi.URLParam(r, "userId") {
				WriteError(w, r, zap.NewNop(), apperrors.NewForbiddenError("Not allowed to access another user's resources"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

var errServerStatus = errors.New("handler answered with a server error")

// Breaker runs the handler through b. Server error responses count as
// failures; while the breaker is open requests get 503 without reaching
// the handler.
func Breaker(b *breaker.Breaker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if b == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := b.Execute(func() (interface{}, error) {
				ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
				next.ServeHTTP(ww, r)
				if ww.Status() >= http.StatusInternalServerError {
					return nil, errServerStatus
				}
				return nil, nil
			})
			if errors.Is(err, breaker.ErrUnavailable) {
				w.Header().Set("Retry-After", "30")
				WriteJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "Mind map generation is temporarily unavailable"})
			}
		})
	}
}
