package handlers

import (
	"net/http"

	"github.com/cloudlockr/cloudlockr/internal/handlers/authctx"
	"github.com/cloudlockr/cloudlockr/internal/handlers/render"
	"github.com/cloudlockr/cloudlockr/internal/models"
)

// Credentials and tokens travel in request headers, which keeps them out of
// URLs and request bodies that may be logged along the way. Header names are
// lowercase single words to survive proxy canonicalization untouched.
const (
	headerEmail        = "email"
	headerPassword     = "password"
	headerPassword1    = "password1"
	headerUserID       = "userid"
	headerRefreshToken = "refreshtoken"
)

type AuthHandler struct {
	authService AuthService
	fileService FileService
}

func NewAuth(authService AuthService, fileService FileService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		fileService: fileService,
	}
}

// Token bundle returned on register and login
type sessionResponse struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires"`
	Message      string `json:"message"`
}

func (h *AuthHandler) sessionResponse(session models.Session, message string) sessionResponse {
	return sessionResponse{
		UserID:       session.UserID.String(),
		RefreshToken: session.Refresh.Value,
		AccessToken:  session.Access.Value,
		TokenType:    "bearer",
		ExpiresIn:    int(h.authService.AccessTTL().Seconds()),
		Message:      message,
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(headerEmail)
	password := r.Header.Get(headerPassword)
	password1 := r.Header.Get(headerPassword1)

	if err := h.authService.ValidateRegistration(email, password, password1); err != nil {
		render.Error(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), email, password)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSONWithStatus(w, h.sessionResponse(session, "New account registered"), http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(headerEmail)
	password := r.Header.Get(headerPassword)

	session, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, h.sessionResponse(session, "Logged in"))
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type refreshResponse struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires"`
		Message     string `json:"message"`
	}

	userID := r.Header.Get(headerUserID)
	refreshToken := r.Header.Get(headerRefreshToken)

	access, err := h.authService.Refresh(r.Context(), userID, refreshToken)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, refreshResponse{
		AccessToken: access.Value,
		TokenType:   "bearer",
		ExpiresIn:   int(h.authService.AccessTTL().Seconds()),
		Message:     "Refreshed",
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type logoutResponse struct {
		Message string `json:"message"`
	}

	err := h.authService.Logout(r.Context(), r.Header.Get(headerRefreshToken))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, logoutResponse{Message: "Logged out"})
}

func (h *AuthHandler) delete(w http.ResponseWriter, r *http.Request) {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	claims, ok := authctx.FromContext(r.Context())
	if !ok {
		render.Error(w, errMissingClaims)
		return
	}

	err := h.authService.Delete(r.Context(), claims.UserID, r.Header.Get(headerRefreshToken))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, deleteResponse{Message: "Account deleted"})
}

func (h *AuthHandler) files(w http.ResponseWriter, r *http.Request) {
	type filesResponse struct {
		FilesMetadata []models.FileMetadata `json:"filesMetadata"`
		Message       string                `json:"message"`
	}

	claims, ok := authctx.FromContext(r.Context())
	if !ok {
		render.Error(w, errMissingClaims)
		return
	}

	metadata, err := h.fileService.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, filesResponse{FilesMetadata: metadata, Message: "Files found"})
}
