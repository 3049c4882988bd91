package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/hangman/internal/config"
	"example.com/hangman/internal/httpapi"
	"example.com/hangman/internal/session"
)

func testConfig(t *testing.T, wordList string) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(wordList), 0o600))

	var c config.Config
	c.Env = "dev"
	c.Log.Format = "text"
	c.Log.Level = "info"
	c.HTTP.Addr = "127.0.0.1:0"
	c.HTTP.ShutdownTimeout = time.Second
	c.Words.Source = config.WordsFromFile
	c.Words.File = path
	c.Session.Store = config.StoreMemory
	c.Auth.Secret = "test"
	c.Auth.TokenTTL = time.Hour
	require.NoError(t, c.Validate())
	return c
}

func newTestApp(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), testConfig(t, "cat\nhorse\n"), log, Options{})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_MissingWordFile(t *testing.T) {
	c := testConfig(t, "")
	c.Words.File = filepath.Join(t.TempDir(), "missing.txt")

	a, err := New(context.Background(), c, nil, Options{})
	require.Error(t, err)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNew_UnreachableRedis(t *testing.T) {
	c := testConfig(t, "cat\n")
	c.Session.Store = config.StoreRedis
	c.Redis.Addr = "127.0.0.1:1"

	a, err := New(context.Background(), c, nil, Options{})
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "redis ping")
}

type recordingInserter struct {
	got []string
	err error
}

func (r *recordingInserter) Insert(ctx context.Context, list []string) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.got = append(r.got, list...)
	return len(list), nil
}

func TestImportWordFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\n\n  horse \nelephant\n"), 0o600))

	ins := &recordingInserter{}
	n, err := importWordFile(context.Background(), ins, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"cat", "horse", "elephant"}, ins.got)

	_, err = importWordFile(context.Background(), ins, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = importWordFile(context.Background(), &recordingInserter{err: errors.New("db down")}, path)
	assert.ErrorContains(t, err, "db down")
}

func TestApp_Routes(t *testing.T) {
	srv := newTestApp(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(srv.URL + "/api/difficulties")
	require.NoError(t, err)
	var tiers []httpapi.DifficultyInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tiers))
	resp.Body.Close()
	assert.Equal(t, []httpapi.DifficultyInfo{
		{Name: "Easy", Words: 1},
		{Name: "Medium", Words: 1},
		{Name: "Hard", Words: 0},
	}, tiers)
}

func TestApp_CreateSessionAndConnect(t *testing.T) {
	srv := newTestApp(t)

	resp, err := http.Post(srv.URL+"/api/session", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created httpapi.CreateSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + created.SessionID + "?token=" + created.Token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env session.Envelope
		require.NoError(t, ws.ReadJSON(&env))
		if env.Type != session.TypeState {
			continue
		}
		var st session.StatePayload
		require.NoError(t, json.Unmarshal(env.Payload, &st))
		assert.Equal(t, created.SessionID, st.SessionID)
		return
	}
}
