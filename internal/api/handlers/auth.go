package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/video-stream/shelf/internal/api/middleware"
	"github.com/video-stream/shelf/internal/auth"
)

// sessionMaxAge is the cookie lifetime in seconds.
var sessionMaxAge = int(auth.SessionLifetime.Seconds())

type AuthHandler struct {
	svc          *auth.Service
	cookieSecure bool
}

func NewAuthHandler(svc *auth.Service, cookieSecure bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieSecure: cookieSecure}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User *auth.Identity `json:"user"`
}

// Login accepts a JSON body or a urlencoded form and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			h.clearCookie(w)
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if err := decodeJSON(r, &req); err != nil {
		h.clearCookie(w)
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, id, err := h.svc.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.clearCookie(w)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Ctx(r.Context()).Info().Str("username", req.Username).Msg("login rejected")
		}
		writeError(w, r, err)
		return
	}

	h.setCookie(w, token)
	jsonResponse(w, loginResponse{User: id}, http.StatusOK)
}

// Logout revokes the presented session if it validates and always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	if err := h.svc.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetIdentity(r)
	if id == nil {
		jsonError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	jsonResponse(w, id, http.StatusOK)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie emits Max-Age=0.
func (h *AuthHandler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
