package middleware

import (
	"context"
	"net/http"

	"github.com/cloudlockr/cloudlockr/internal/handlers/authctx"
	"github.com/cloudlockr/cloudlockr/internal/handlers/render"
	"github.com/cloudlockr/cloudlockr/internal/models"
)

type authenticator interface {
	// Verify the Authorization header value and return the token claims
	Authenticate(ctx context.Context, authHeader string) (models.Claims, error)
}

// AuthMiddleware gates protected handlers behind access token verification.
// Verified claims are stored in the request context.
func AuthMiddleware(a authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				render.Error(w, err)
				return
			}

			ctx := authctx.New(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
