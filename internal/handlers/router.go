package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cloudlockr/cloudlockr/internal/handlers/middleware"
	"github.com/cloudlockr/cloudlockr/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type AuthService interface {
	// Check registration inputs, accumulating every violation in the fixed
	// field order email, password, password1
	ValidateRegistration(email string, password string, password1 string) error

	// Register user and issue a session
	// Has to return a validation error if the email is taken already
	Register(ctx context.Context, email string, password string) (models.Session, error)

	// Login user; unknown email and wrong password must fail identically
	Login(ctx context.Context, email string, password string) (models.Session, error)

	// Verify the Authorization header value as an access token
	Authenticate(ctx context.Context, authHeader string) (models.Claims, error)

	// Mint a new access token for a whitelisted refresh token and its owner
	Refresh(ctx context.Context, userID string, refreshToken string) (models.IssuedToken, error)

	// Revoke the refresh token
	Logout(ctx context.Context, refreshToken string) error

	// Revoke the refresh token and delete the account
	Delete(ctx context.Context, userID uuid.UUID, refreshToken string) error

	// Access token lifetime, reported to clients in token bundles
	AccessTTL() time.Duration
}

type FileService interface {
	CreateMetadata(ctx context.Context, ownerID uuid.UUID, name string, fileType string) (models.File, error)
	StoreBlob(ctx context.Context, fileID string, blobNumber int, data string) error
	RetrieveMetadata(ctx context.Context, fileID string) (int, error)
	RetrieveBlob(ctx context.Context, fileID string, blobNumber int) (string, error)
	Delete(ctx context.Context, fileID string) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.FileMetadata, error)
}

type logger interface {
	Info(msg string, args ...any)
}

// NewRouter wires all API endpoints. The auth middleware gate is applied to
// every protected route; blob store/retrieve endpoints stay open because the
// hardware client that streams blobs holds no account credentials.
func NewRouter(
	authService AuthService,
	fileService FileService,
	loginLimiter func(http.Handler) http.Handler,
	l logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService)

	authHandler := NewAuth(authService, fileService)
	fileHandler := NewFile(fileService)

	mux := http.NewServeMux()

	mux.Handle("POST /user/register", http.HandlerFunc(authHandler.register))
	mux.Handle("POST /user/login", loginLimiter(http.HandlerFunc(authHandler.login)))
	mux.Handle("POST /user/refresh", http.HandlerFunc(authHandler.refresh))
	mux.Handle("POST /user/logout", withAuth(http.HandlerFunc(authHandler.logout)))
	mux.Handle("DELETE /user", withAuth(http.HandlerFunc(authHandler.delete)))
	mux.Handle("GET /user/files", withAuth(http.HandlerFunc(authHandler.files)))

	mux.Handle("POST /file", withAuth(http.HandlerFunc(fileHandler.create)))
	mux.Handle("POST /file/{fileId}/{blobNumber}", http.HandlerFunc(fileHandler.storeBlob))
	mux.Handle("GET /file/{fileId}/{blobNumber}", http.HandlerFunc(fileHandler.retrieveBlob))
	mux.Handle("GET /file/{fileId}", http.HandlerFunc(fileHandler.metadata))
	mux.Handle("DELETE /file/{fileId}", withAuth(http.HandlerFunc(fileHandler.delete)))

	return chain(mux,
		middleware.LoggerMiddleware(l),
	)
}
