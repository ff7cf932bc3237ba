package handlers

import (
	"net/http"
	"strings"
	"time"

	"hrpipeline/internal/common"
	"hrpipeline/internal/http/response"
	"hrpipeline/internal/security"
)

const (
	internalAuthHeader    = "Authorization"
	internalAuthAltHeader = "X-Internal-Key"
)

// AuthHandler exchanges an internal API key for a user-scoped access token.
// Identity itself is managed by the upstream identity provider; this endpoint
// lets trusted services mint tokens for the pipeline API.
type AuthHandler struct {
	jwt         *security.JWTProvider
	internalKey string
	tokenTTL    time.Duration
}

func NewAuthHandler(jwt *security.JWTProvider, internalKey string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{jwt: jwt, internalKey: internalKey, tokenTTL: tokenTTL}
}

type tokenRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type tokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !requireInternalAuth(w, r, h.internalKey) {
		return
	}
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	userID, err := common.ParseUUID(req.UserID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid user id", err))
		return
	}
	token, expiresAt, err := h.jwt.Generate(userID, req.Name, req.Email, h.tokenTTL)
	if err != nil {
		response.Error(w, common.NewError(common.CodeInternal, "failed to issue token", err))
		return
	}
	response.JSON(w, http.StatusOK, tokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}

func requireInternalAuth(w http.ResponseWriter, r *http.Request, internalKey string) bool {
	key := strings.TrimSpace(internalKey)
	if key == "" {
		response.Error(w, errUnauthorized())
		return false
	}
	altValue := strings.TrimSpace(r.Header.Get(internalAuthAltHeader))
	value := strings.TrimSpace(r.Header.Get(internalAuthHeader))
	if altValue == key || value == "Bearer "+key {
		return true
	}
	response.Error(w, errUnauthorized())
	return false
}
