package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/video-stream/shelf/internal/api/middleware"
	"github.com/video-stream/shelf/internal/auth"
)

type AdminHandler struct {
	svc *auth.Service
}

func NewAdminHandler(svc *auth.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type createAccountRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Privileged bool   `json:"is_privileged"`
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, accts, http.StatusOK)
}

func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	acct, err := h.svc.CreateAccount(r.Context(), strings.TrimSpace(req.Username), req.Password, req.Privileged)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Ctx(r.Context()).Info().
		Str("username", acct.Username).
		Str("by", middleware.GetIdentity(r).Username).
		Msg("account created")
	jsonResponse(w, acct, http.StatusCreated)
}
