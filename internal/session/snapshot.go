package session

import (
	"time"

	"example.com/hangman/internal/hangman"
)

// Snapshot is what gets stored so a session survives a reconnect or a
// server restart.
type Snapshot struct {
	SessionID   string           `json:"sessionId"`
	Round       hangman.Snapshot `json:"round"`
	UpdatedAtMs int64            `json:"updatedAtMs"`
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		Round:       s.ctl.Snapshot(),
		UpdatedAtMs: s.updatedAt.UnixMilli(),
	}
}

func (s *Session) restoreLocked(snap Snapshot) error {
	if err := s.ctl.Restore(snap.Round); err != nil {
		return err
	}
	if snap.UpdatedAtMs > 0 {
		s.updatedAt = time.UnixMilli(snap.UpdatedAtMs)
	}
	return nil
}
