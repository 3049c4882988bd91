package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"example.com/hangman/internal/hangman"
	"example.com/hangman/internal/words"
)

// ErrSessionClosed is returned by Attach once the session has been evicted
// from the service cache; the caller should load it again.
var ErrSessionClosed = errors.New("session closed")

// Session is one browser's game. Every event takes mu for its whole run,
// so the controller sees events strictly one after another.
type Session struct {
	id  string
	mu  sync.Mutex
	log *slog.Logger

	ctl     *hangman.Controller
	display *wsDisplay
	conn    *ClientConn

	updatedAt time.Time
	onPersist func(Snapshot)
	onIdle    func() // called after the last connection detaches
	closed    bool
}

func NewSession(id string, picker hangman.WordPicker, renderer *hangman.Renderer, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		id:        id,
		log:       log.With("session", id),
		updatedAt: time.Now(),
	}
	s.display = &wsDisplay{s: s}
	s.ctl = hangman.NewController(picker, renderer, s.display, &wsCanvas{s: s}, s.log)
	return s
}

func (s *Session) ID() string { return s.id }

// Attach makes cc the session's connection and repaints it from scratch.
// A previous connection is dropped.
func (s *Session) Attach(cc *ClientConn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.conn != nil && s.conn != cc {
		s.conn.Close()
	}
	s.conn = cc

	if err := s.ctl.Sync(); err != nil {
		s.conn = nil
		return err
	}
	s.sendStateLocked()
	return nil
}

func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	idle := s.conn == cc
	if idle {
		s.conn = nil
	}
	onIdle := s.onIdle
	s.mu.Unlock()

	if idle && onIdle != nil {
		onIdle()
	}
}

func (s *Session) ChooseDifficulty(raw string) error {
	tier, err := words.ParseTier(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ctl.OnDifficultyChosen(tier)
	if err != nil && !errors.Is(err, words.ErrEmptyTier) {
		return err
	}
	s.sendStateLocked()
	s.persistLocked()
	return nil
}

// Guess behaves like typing input into the box and pressing Enter.
func (s *Session) Guess(input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.display.input = input
	out, handled := s.ctl.OnEnter()
	if !handled {
		s.log.Debug("guess ignored", "phase", string(s.ctl.Phase()))
		return
	}
	s.log.Debug("guess", "outcome", out.String())

	s.sendStateLocked()
	if out == hangman.Hit || out == hangman.Miss {
		s.persistLocked()
	}
}

func (s *Session) Phase() hangman.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Phase()
}

func (s *Session) SendErrorTo(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(Envelope{
		Type:    TypeError,
		Payload: mustJSON(ErrorPayload{Code: code, Message: message}),
	})
}

func (s *Session) buildStateLocked() StatePayload {
	st := StatePayload{
		SessionID:         s.id,
		Phase:             s.ctl.Phase(),
		AttemptsRemaining: hangman.MaxAttempts,
		Guessed:           []string{},
	}
	round := s.ctl.State()
	if round == nil {
		return st
	}
	st.Difficulty = round.Tier().String()
	st.AttemptsRemaining = round.Attempts()
	st.Mask = round.DisplayMask()
	st.Guessed = round.Guessed()
	if round.IsOver() {
		st.Word = round.Word()
	}
	return st
}

func (s *Session) sendStateLocked() {
	s.sendLocked(Envelope{Type: TypeState, Payload: mustJSON(s.buildStateLocked())})
}

func (s *Session) sendLocked(env Envelope) {
	if s.conn == nil {
		return
	}
	b, _ := json.Marshal(env)
	s.conn.Send(b)
}

func (s *Session) persistLocked() {
	s.updatedAt = time.Now()
	if s.onPersist == nil {
		return
	}
	s.onPersist(s.snapshotLocked())
}

// wsDisplay forwards display calls to the attached client. Its methods run
// inside a session event, with mu held.
type wsDisplay struct {
	s     *Session
	input string
}

func (d *wsDisplay) SetWordDisplay(text string) {
	d.s.sendLocked(Envelope{Type: TypeWord, Payload: mustJSON(TextPayload{Text: text})})
}

func (d *wsDisplay) SetGuessedLettersDisplay(text string) {
	d.s.sendLocked(Envelope{Type: TypeGuessed, Payload: mustJSON(TextPayload{Text: text})})
}

func (d *wsDisplay) SetNotification(text string) {
	d.s.sendLocked(Envelope{Type: TypeNotification, Payload: mustJSON(TextPayload{Text: text})})
}

func (d *wsDisplay) SetInputEnabled(enabled bool) {
	d.s.sendLocked(Envelope{Type: TypeInput, Payload: mustJSON(InputPayload{Enabled: enabled})})
}

func (d *wsDisplay) InputText() string { return d.input }

func (d *wsDisplay) ClearInputText() {
	d.input = ""
	d.s.sendLocked(Envelope{Type: TypeClearInput, Payload: mustJSON(struct{}{})})
}

// wsCanvas ships turtle ops to the browser, which replays them on a <canvas>.
type wsCanvas struct {
	s *Session
}

func (c *wsCanvas) Clear() {
	c.s.sendLocked(Envelope{Type: TypeCanvasClear, Payload: mustJSON(struct{}{})})
}

func (c *wsCanvas) SetBackground(asset string) {
	c.s.sendLocked(Envelope{Type: TypeCanvasBackground, Payload: mustJSON(BackgroundPayload{Asset: asset})})
}

func (c *wsCanvas) SetPenSize(size float64) {
	c.s.sendLocked(Envelope{Type: TypeCanvasPen, Payload: mustJSON(PenPayload{Size: size})})
}

func (c *wsCanvas) Draw(ops []hangman.Op) {
	c.s.sendLocked(Envelope{Type: TypeDraw, Payload: mustJSON(DrawPayload{Ops: ops})})
}
