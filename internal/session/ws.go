package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsPrefix = "/ws/"

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:     ws,
		send:   make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

// Send queues a message; a client that is not reading gets messages dropped
// rather than stalling the session.
func (c *ClientConn) Send(b []byte) {
	select {
	case <-c.closed:
	case c.send <- b:
	default:
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// sessionIDFromWSPath extracts the id from /ws/{id}; the id must be a UUID.
func sessionIDFromWSPath(path string) (string, bool) {
	if !strings.HasPrefix(path, wsPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(path, wsPrefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return "", false
	}
	return id, true
}

// tokenFromRequest takes the resume token from the Authorization header or
// the token query parameter (browsers cannot set headers on a websocket).
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// handleWS is the websocket entry for a session: /ws/{sessionId}
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromWSPath(r.URL.Path)
	if !ok {
		http.Error(w, "bad session id", http.StatusBadRequest)
		return
	}

	token := tokenFromRequest(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	if _, err := s.tokens.VerifyFor(token, sessionID); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sess, ok, err := s.sessions.GetOrLoad(r.Context(), sessionID)
	if err != nil {
		s.log.Error("load session", "session", sessionID, "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sessions.release(sess)
		return
	}
	cc := newClientConn(ws)

	// writer loop
	go func() {
		ticker := time.NewTicker(25 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-cc.closed:
				return
			case msg := <-cc.send:
				if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
					cc.Close()
					return
				}
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	sess, err = s.sessions.Attach(r.Context(), sess, cc)
	if err != nil {
		s.log.Error("attach session", "session", sessionID, "err", err)
		cc.Close()
		return
	}

	// reader loop
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.SendErrorTo("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case TypeChooseDifficulty:
			var p ChooseDifficultyPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendErrorTo("bad_input", "invalid payload")
				continue
			}
			if err := sess.ChooseDifficulty(p.Difficulty); err != nil {
				sess.SendErrorTo("bad_input", err.Error())
			}

		case TypeGuess:
			var p GuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendErrorTo("bad_input", "invalid payload")
				continue
			}
			sess.Guess(p.Input)

		default:
			sess.SendErrorTo("unknown_type", "unknown message type")
		}
	}

	// disconnect
	sess.Detach(cc)
	cc.Close()
}
