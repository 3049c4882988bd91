package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"example.com/hangman/internal/session"
	"example.com/hangman/internal/words"
)

// SessionCreator is the part of the session service the handlers need.
type SessionCreator interface {
	Create(ctx context.Context, sessionID string) (*session.Session, error)
}

type TokenSigner interface {
	Sign(sessionID string, ttl time.Duration) (string, error)
}

// TierCounter reports how many words each difficulty has.
type TierCounter interface {
	Len(t words.Tier) int
}

type SessionHandler struct {
	Sessions SessionCreator
	Tokens   TokenSigner
	Catalog  TierCounter
	TokenTTL time.Duration
	Log      *slog.Logger
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

type DifficultyInfo struct {
	Name  string `json:"name"`
	Words int    `json:"words"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	sessionID := uuid.NewString()
	if _, err := h.Sessions.Create(r.Context(), sessionID); err != nil {
		h.logger().Error("create session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}

	token, err := h.Tokens.Sign(sessionID, h.TokenTTL)
	if err != nil {
		h.logger().Error("sign session token", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: sessionID, Token: token})
}

func (h *SessionHandler) Difficulties(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	out := make([]DifficultyInfo, 0, len(words.Tiers))
	for _, t := range words.Tiers {
		out = append(out, DifficultyInfo{Name: t.String(), Words: h.Catalog.Len(t)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SessionHandler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}
