package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/hangman/internal/auth"
	"example.com/hangman/internal/hangman"
	"example.com/hangman/internal/words"
)

func TestSessionIDFromWSPath(t *testing.T) {
	id := uuid.NewString()
	cases := []struct {
		path string
		want string
		ok   bool
	}{
		{"/ws/" + id, id, true},
		{"/ws/", "", false},
		{"/ws/not-a-uuid", "", false},
		{"/ws/" + id + "/extra", "", false},
		{"/ws/" + strings.ToUpper(id), "", false},
		{"/api/" + id, "", false},
	}
	for _, c := range cases {
		got, ok := sessionIDFromWSPath(c.path)
		assert.Equal(t, c.ok, ok, c.path)
		assert.Equal(t, c.want, got, c.path)
	}
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws/x?token=from-query", nil)
	assert.Equal(t, "from-query", tokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", tokenFromRequest(r))
}

type wsFixture struct {
	srv    *httptest.Server
	tokens *auth.Service
	svc    *Service
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	tokens := auth.NewService([]byte("test-secret"))
	svc := NewService(Config{}, NewMemoryStore(0), fixedPicker{words.Easy: "dog"}, discardLogger())

	mux := http.NewServeMux()
	NewServer(svc, tokens, discardLogger()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &wsFixture{srv: srv, tokens: tokens, svc: svc}
}

func (f *wsFixture) newSession(t *testing.T) (string, string) {
	t.Helper()
	id := uuid.NewString()
	_, err := f.svc.Create(context.Background(), id)
	require.NoError(t, err)
	tok, err := f.tokens.Sign(id, time.Hour)
	require.NoError(t, err)
	return id, tok
}

func (f *wsFixture) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + path
}

func readUntil(t *testing.T, ws *websocket.Conn, typ string) Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env Envelope
		require.NoError(t, ws.ReadJSON(&env))
		if env.Type == typ {
			return env
		}
	}
}

func readStateUntil(t *testing.T, ws *websocket.Conn, done func(StatePayload) bool) StatePayload {
	t.Helper()
	for {
		env := readUntil(t, ws, TypeState)
		var st StatePayload
		require.NoError(t, json.Unmarshal(env.Payload, &st))
		if done(st) {
			return st
		}
	}
}

func TestWS_Handshake(t *testing.T) {
	f := newWSFixture(t)
	id, tok := f.newSession(t)
	_, otherTok := f.newSession(t)

	cases := []struct {
		name   string
		path   string
		header http.Header
		status int
	}{
		{"query token", "/ws/" + id + "?token=" + tok, nil, http.StatusSwitchingProtocols},
		{"bearer token", "/ws/" + id, http.Header{"Authorization": {"Bearer " + tok}}, http.StatusSwitchingProtocols},
		{"bad id", "/ws/nope?token=" + tok, nil, http.StatusBadRequest},
		{"missing token", "/ws/" + id, nil, http.StatusUnauthorized},
		{"token for another session", "/ws/" + id + "?token=" + otherTok, nil, http.StatusUnauthorized},
		{"garbage token", "/ws/" + id + "?token=abc", nil, http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ws, resp, err := websocket.DefaultDialer.Dial(f.wsURL(c.path), c.header)
			require.NotNil(t, resp)
			assert.Equal(t, c.status, resp.StatusCode)
			if c.status != http.StatusSwitchingProtocols {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer ws.Close()
			readUntil(t, ws, TypeState)
		})
	}
}

func TestWS_UnknownSession(t *testing.T) {
	f := newWSFixture(t)
	id := uuid.NewString()
	tok, err := f.tokens.Sign(id, time.Hour)
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/"+id+"?token="+tok), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWS_PlayRound(t *testing.T) {
	f := newWSFixture(t)
	id, tok := f.newSession(t)

	ws, _, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/"+id+"?token="+tok), nil)
	require.NoError(t, err)
	defer ws.Close()

	st := readStateUntil(t, ws, func(StatePayload) bool { return true })
	assert.Equal(t, hangman.PhaseSelecting, st.Phase)
	assert.Equal(t, id, st.SessionID)

	require.NoError(t, ws.WriteJSON(Envelope{Type: TypeChooseDifficulty, Payload: mustJSON(ChooseDifficultyPayload{Difficulty: "Easy"})}))
	st = readStateUntil(t, ws, func(s StatePayload) bool { return s.Phase == hangman.PhasePlaying })
	assert.Equal(t, "_ _ _", st.Mask)

	for _, g := range []string{"d", "o", "g"} {
		require.NoError(t, ws.WriteJSON(Envelope{Type: TypeGuess, Payload: mustJSON(GuessPayload{Input: g})}))
	}
	st = readStateUntil(t, ws, func(s StatePayload) bool { return s.Phase != hangman.PhasePlaying })
	assert.Equal(t, hangman.PhaseWon, st.Phase)
	assert.Equal(t, "D O G", st.Mask)
	assert.Equal(t, "DOG", st.Word)
}

func TestWS_DisconnectReleasesSession(t *testing.T) {
	f := newWSFixture(t)
	id, tok := f.newSession(t)

	ws, _, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/"+id+"?token="+tok), nil)
	require.NoError(t, err)
	readUntil(t, ws, TypeState)
	require.NoError(t, ws.WriteJSON(Envelope{Type: TypeChooseDifficulty, Payload: mustJSON(ChooseDifficultyPayload{Difficulty: "easy"})}))
	readStateUntil(t, ws, func(s StatePayload) bool { return s.Phase == hangman.PhasePlaying })
	assert.Equal(t, 1, cachedSessions(f.svc))

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return cachedSessions(f.svc) == 0 }, 2*time.Second, 10*time.Millisecond)

	// reconnecting restores the round from the store
	ws, _, err = websocket.DefaultDialer.Dial(f.wsURL("/ws/"+id+"?token="+tok), nil)
	require.NoError(t, err)
	defer ws.Close()
	st := readStateUntil(t, ws, func(StatePayload) bool { return true })
	assert.Equal(t, hangman.PhasePlaying, st.Phase)
	assert.Equal(t, "_ _ _", st.Mask)
}

func TestWS_ProtocolErrors(t *testing.T) {
	f := newWSFixture(t)
	id, tok := f.newSession(t)

	ws, _, err := websocket.DefaultDialer.Dial(f.wsURL("/ws/"+id+"?token="+tok), nil)
	require.NoError(t, err)
	defer ws.Close()
	readUntil(t, ws, TypeState)

	cases := []struct {
		msg  string
		code string
	}{
		{`{not json`, "bad_json"},
		{`{"type":"dance","payload":{}}`, "unknown_type"},
		{`{"type":"choose_difficulty","payload":{"difficulty":"nightmare"}}`, "bad_input"},
		{`{"type":"guess","payload":"x"}`, "bad_input"},
	}
	for _, c := range cases {
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(c.msg)))
		env := readUntil(t, ws, TypeError)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, c.code, p.Code, c.msg)
	}
}
