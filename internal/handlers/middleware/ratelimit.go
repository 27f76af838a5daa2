package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/cloudlockr/cloudlockr/internal/apperrors"
	"github.com/cloudlockr/cloudlockr/internal/handlers/render"
)

type loginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// LoginRateLimiter throttles repeated failed logins per email and client
// address pair. A rejected request never reaches the login handler; after
// the handler runs, a 2xx response clears the counter and anything else
// counts as a failed attempt. Limiter backend failures never block logins.
func LoginRateLimiter(limiter loginLimiter, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)

			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				l.Info("login limiter unavailable, allowing request", "error", err.Error())
				ok = true
			}
			if !ok {
				render.JSONWithStatus(w, render.ErrorResponse{
					Errors: []apperrors.FieldError{{Field: "message", Message: "Too many login requests"}},
				}, http.StatusTooManyRequests)
				return
			}

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK},
			}
			next.ServeHTTP(lw, r)

			if lw.data.responseStatus < 300 {
				err = limiter.Reset(r.Context(), key)
			} else {
				err = limiter.Fail(r.Context(), key)
			}
			if err != nil {
				l.Info("login limiter update failed", "error", err.Error())
			}
		})
	}
}

func limiterKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return r.Header.Get("email") + "_" + host
}
