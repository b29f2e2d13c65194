package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/getaway-genius/apiserver/internal/token"
	"github.com/getaway-genius/apiserver/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshCookieName = "refreshtoken"
	refreshCookiePath = "/api/user/refresh_token"
	minPasswordLen    = 6
)

// AuthHandler provides registration, login, and token lifecycle endpoints.
type AuthHandler struct {
	userService *services.UserService
	issuer      *token.Issuer
	production  bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, issuer *token.Issuer, production bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		issuer:      issuer,
		production:  production,
	}
}

// UserRouter registers user and auth routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, issuer *token.Issuer, production bool) {
	handler := NewAuthHandler(userService, issuer, production)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/refresh_token", handler.RefreshToken)
	r.Get("/logout", handler.Logout)
	r.With(handler.RequireAuth).Get("/info", handler.Info)
	r.With(handler.RequireAuth).Patch("/update", handler.UpdateProfile)
}

// RequireAuth enforces access-token authentication and injects the user
// id into the request context. Gating is all or nothing: no identity is
// attached on failure.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return RequireAuth(h.issuer)(next)
}

// RequireAuth constructs auth middleware for other routers.
func RequireAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := accessToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := issuer.ParseAccess(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken extracts the access token from the Authorization header.
// Both a raw token and a "Bearer <token>" scheme are accepted; historical
// clients sent either form.
func accessToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
		auth = strings.TrimSpace(rest)
	}
	if auth == "" {
		return "", errors.New("invalid authorization")
	}
	return auth, nil
}

// Register creates a new user account, sets the refresh cookie, and
// returns an access token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	v.require("fname", req.FirstName)
	v.require("lname", req.LastName)
	v.require("email", req.Email)
	v.email("email", req.Email)
	v.require("password", req.Password)
	v.minLen("password", req.Password, minPasswordLen)
	v.require("birthday", req.Birthday)
	v.require("city", req.City)
	v.require("state", req.State)
	v.require("zip", req.Zip)
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.userService.GetByEmail(r.Context(), email); err == nil {
		writeError(w, http.StatusBadRequest, "email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hashed),
		Birthday:     req.Birthday,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.issueTokenPair(w, r, user.ID)
}

// Login verifies credentials, sets the refresh cookie, and returns an
// access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	v := &validator{}
	v.require("email", req.Email)
	v.require("password", req.Password)
	if !v.valid() {
		writeValidationErrors(w, v.errors)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.userService.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "user does not exist")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusBadRequest, "incorrect password")
		return
	}

	h.issueTokenPair(w, r, user.ID)
}

// RefreshToken exchanges the refresh cookie for a new access token. The
// refresh token itself is not rotated.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "please login or register")
		return
	}

	userID, err := h.issuer.ParseRefresh(cookie.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "please login or register")
		return
	}

	accessToken, err := h.issuer.NewAccessToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{AccessToken: accessToken})
}

// Logout clears the refresh cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "logged out"})
}

// Info returns the authenticated user's profile.
func (h *AuthHandler) Info(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile mutates the authenticated user's profile fields.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Birthday != nil {
		user.Birthday = *req.Birthday
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.State != nil {
		user.State = *req.State
	}
	if req.Zip != nil {
		user.Zip = *req.Zip
	}

	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AuthHandler) currentUser(r *http.Request) (types.User, error) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		return types.User{}, err
	}
	return h.userService.GetByID(r.Context(), userID)
}

func (h *AuthHandler) issueTokenPair(w http.ResponseWriter, r *http.Request, userID int) {
	accessToken, err := h.issuer.NewAccessToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	refreshToken, err := h.issuer.NewRefreshToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	sameSite := http.SameSiteLaxMode
	if h.production {
		sameSite = http.SameSiteStrictMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    refreshToken,
		Path:     refreshCookiePath,
		MaxAge:   int(token.RefreshTokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	})

	writeJSON(w, http.StatusOK, AuthResponse{AccessToken: accessToken})
}

type RegisterRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthday  string `json:"birthday"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	FirstName *string `json:"fname"`
	LastName  *string `json:"lname"`
	Birthday  *string `json:"birthday"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Zip       *string `json:"zip"`
}

// AuthResponse carries the access token; the refresh token travels only
// in the httpOnly cookie.
type AuthResponse struct {
	AccessToken string `json:"accesstoken"`
}
