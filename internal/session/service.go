package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"example.com/hangman/internal/hangman"
)

// Config holds the session layer settings.
type Config struct {
	PersistTimeout time.Duration // per-save deadline; 0 => 2s
}

// Service is the in-memory session cache in front of persistent storage.
// Only sessions with a live connection stay cached; everything else lives
// in the store and expires with its TTL.
type Service struct {
	mu sync.Mutex
	in map[string]*Session

	cfg      Config
	persist  Persistence
	picker   hangman.WordPicker
	renderer *hangman.Renderer
	log      *slog.Logger
}

func NewService(cfg Config, persist Persistence, picker hangman.WordPicker, log *slog.Logger) *Service {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		in:       make(map[string]*Session),
		cfg:      cfg,
		persist:  persist,
		picker:   picker,
		renderer: hangman.NewRenderer(),
		log:      log,
	}
}

func (s *Service) newSession(id string) *Session {
	sess := NewSession(id, s.picker, s.renderer, s.log)
	sess.onPersist = func(snap Snapshot) {
		// detached from the request context
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
		defer cancel()
		if err := s.persist.Save(ctx, id, snap); err != nil {
			s.log.Error("persist session", "session", id, "err", err)
		}
	}
	sess.onIdle = func() { s.release(sess) }
	return sess
}

// release drops sess from the cache unless a connection attached to it
// meanwhile. Its state is already in the store: every change is saved.
func (s *Service) release(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.conn != nil || s.in[sess.id] != sess {
		return
	}
	sess.closed = true
	delete(s.in, sess.id)
	s.log.Debug("session released", "session", sess.id)
}

// Attach connects cc to sess. A session evicted between lookup and attach
// is loaded again from the store.
func (s *Service) Attach(ctx context.Context, sess *Session, cc *ClientConn) (*Session, error) {
	err := sess.Attach(cc)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrSessionClosed) {
		s.release(sess)
		return nil, err
	}

	fresh, ok, err := s.GetOrLoad(ctx, sess.ID())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionClosed
	}
	if err := fresh.Attach(cc); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Create stores the initial snapshot of a new session. The session is
// cached only once a connection loads it.
func (s *Service) Create(ctx context.Context, sessionID string) (*Session, error) {
	sess := s.newSession(sessionID)

	sess.mu.Lock()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()
	if err := s.persist.Save(ctx, sessionID, snap); err != nil {
		return nil, err
	}

	s.log.Info("session created", "session", sessionID)
	return sess, nil
}

// GetOrLoad returns the cached session or rebuilds it from its snapshot.
// A snapshot that cannot be decoded or no longer replays cleanly is dropped
// and reported as not found.
func (s *Service) GetOrLoad(ctx context.Context, sessionID string) (*Session, bool, error) {
	s.mu.Lock()
	sess, ok := s.in[sessionID]
	s.mu.Unlock()
	if ok {
		return sess, true, nil
	}

	snap, found, err := s.persist.Load(ctx, sessionID)
	if errors.Is(err, ErrCorruptSnapshot) {
		return nil, false, s.drop(ctx, sessionID, err)
	}
	if err != nil || !found {
		return nil, false, err
	}

	sess = s.newSession(sessionID)
	sess.mu.Lock()
	rerr := sess.restoreLocked(snap)
	sess.mu.Unlock()
	if rerr != nil {
		return nil, false, s.drop(ctx, sessionID, rerr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another connection may have restored it meanwhile
	if cur, ok := s.in[sessionID]; ok {
		return cur, true, nil
	}
	s.in[sessionID] = sess
	s.log.Info("session restored", "session", sessionID, "phase", string(sess.ctl.Phase()))
	return sess, true, nil
}

func (s *Service) drop(ctx context.Context, sessionID string, cause error) error {
	s.log.Warn("dropping unreadable session", "session", sessionID, "err", cause)
	return s.persist.Delete(ctx, sessionID)
}
