package hangman

import (
	"errors"
	"fmt"

	"example.com/hangman/internal/words"
)

var ErrBadSnapshot = errors.New("inconsistent round snapshot")

// Snapshot is the serialisable form of a controller's round.
type Snapshot struct {
	Active   bool       `json:"active"`
	Tier     words.Tier `json:"difficulty"`
	Word     string     `json:"word,omitempty"`
	Guessed  []string   `json:"guessed,omitempty"`
	Attempts int        `json:"attemptsRemaining"`
}

func (c *Controller) Snapshot() Snapshot {
	if c.state == nil {
		return Snapshot{Attempts: MaxAttempts}
	}
	return Snapshot{
		Active:   true,
		Tier:     c.state.tier,
		Word:     c.state.word,
		Guessed:  c.state.Guessed(),
		Attempts: c.state.attempts,
	}
}

// Restore rebuilds the round by replaying the recorded guesses against the
// word. A snapshot whose attempts count does not follow from its guesses
// is rejected and the controller is left as it was.
func (c *Controller) Restore(snap Snapshot) error {
	if !snap.Active {
		c.state = nil
		return nil
	}
	if snap.Word == "" || !snap.Tier.Valid() {
		return fmt.Errorf("%w: missing word or tier", ErrBadSnapshot)
	}
	if snap.Attempts < 0 || snap.Attempts > MaxAttempts {
		return fmt.Errorf("%w: attempts %d out of range", ErrBadSnapshot, snap.Attempts)
	}

	s := NewState(snap.Tier, snap.Word)
	for _, g := range snap.Guessed {
		if out := s.SubmitGuess(g); out == InvalidInput || out == AlreadyGuessed {
			return fmt.Errorf("%w: guess %q is %s", ErrBadSnapshot, g, out)
		}
	}
	if s.attempts != snap.Attempts {
		return fmt.Errorf("%w: attempts %d, guesses imply %d", ErrBadSnapshot, snap.Attempts, s.attempts)
	}

	c.state = s
	return nil
}
