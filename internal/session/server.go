package session

import (
	"log/slog"
	"net/http"

	"example.com/hangman/internal/auth"
)

// TokenVerifier checks that a resume token was issued for the session.
type TokenVerifier interface {
	VerifyFor(token, sessionID string) (*auth.Claims, error)
}

type Server struct {
	sessions *Service
	tokens   TokenVerifier
	log      *slog.Logger
}

func NewServer(sessions *Service, tokens TokenVerifier, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		tokens:   tokens,
		log:      log,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(wsPrefix, s.handleWS)
}
