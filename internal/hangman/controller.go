package hangman

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"example.com/hangman/internal/words"
)

// Display is the text side of the UI.
type Display interface {
	SetWordDisplay(text string)
	SetGuessedLettersDisplay(text string)
	SetNotification(text string)
	SetInputEnabled(enabled bool)
	InputText() string
	ClearInputText()
}

// WordPicker supplies the word for a new round.
type WordPicker interface {
	PickRandom(t words.Tier) (string, error)
}

const (
	msgSingleLetter   = "Please enter a single letter."
	msgAlreadyGuessed = "You already guessed that letter."
	msgLost           = "You lost! The word was: %s\nChoose a difficulty to play again!"
	msgWon            = "Congratulations! You guessed the word: %s\nChoose a difficulty to play again!"
	msgNoWords        = "No words available for %s difficulty."
	guessedPrefix     = "Guessed letters: "
)

// Controller turns UI events into state changes and pushes the result
// back to the display and the canvas. It owns the round state; callers
// must deliver events one at a time.
type Controller struct {
	picker   WordPicker
	renderer *Renderer
	display  Display
	canvas   Canvas
	log      *slog.Logger

	state *State // nil until the first difficulty is chosen
}

func NewController(picker WordPicker, renderer *Renderer, display Display, canvas Canvas, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if renderer == nil {
		renderer = NewRenderer()
	}
	return &Controller{
		picker:   picker,
		renderer: renderer,
		display:  display,
		canvas:   canvas,
		log:      log,
	}
}

func (c *Controller) Phase() Phase {
	if c.state == nil {
		return PhaseSelecting
	}
	return c.state.Phase()
}

// State is nil while no round has been started.
func (c *Controller) State() *State { return c.state }

// OnEnter takes whatever is in the input box, clears the box and submits it.
func (c *Controller) OnEnter() (Outcome, bool) {
	raw := c.display.InputText()
	c.display.ClearInputText()
	return c.OnGuessSubmitted(raw)
}

// OnGuessSubmitted applies one guess. The bool is false when no round is
// in progress and the input was ignored.
func (c *Controller) OnGuessSubmitted(raw string) (Outcome, bool) {
	if c.state == nil || c.state.IsOver() {
		return InvalidInput, false
	}

	out := c.state.SubmitGuess(strings.ToUpper(raw))
	switch out {
	case InvalidInput:
		c.display.SetNotification(msgSingleLetter)
		return out, true
	case AlreadyGuessed:
		c.display.SetNotification(msgAlreadyGuessed)
		return out, true
	}

	c.display.SetNotification("")
	if out == Miss {
		if err := c.renderer.Draw(c.canvas, c.state.Attempts()); err != nil {
			c.log.Error("draw stage", "attempts", c.state.Attempts(), "err", err)
		}
	}
	c.display.SetWordDisplay(c.state.DisplayMask())
	c.display.SetGuessedLettersDisplay(guessedText(c.state))
	if c.showGameOver() {
		c.log.Info("round over",
			"phase", string(c.state.Phase()),
			"tier", c.state.Tier().String(),
			"attempts_left", c.state.Attempts(),
		)
	}
	return out, true
}

// OnDifficultyChosen starts a new round. An empty tier is reported on the
// display and the current round, if any, carries on untouched.
func (c *Controller) OnDifficultyChosen(tier words.Tier) error {
	word, err := c.picker.PickRandom(tier)
	if err != nil {
		if errors.Is(err, words.ErrEmptyTier) {
			c.log.Warn("empty difficulty tier", "tier", tier.String())
			c.display.SetNotification(fmt.Sprintf(msgNoWords, tier))
		}
		return err
	}

	if c.state == nil {
		c.state = NewState(tier, word)
	} else {
		c.state.Reset(tier, word)
	}
	c.log.Info("round started", "tier", tier.String(), "length", len([]rune(c.state.Word())))
	c.log.Debug("round word", "word", c.state.Word())

	c.display.SetGuessedLettersDisplay("")
	c.display.SetNotification("")
	c.display.SetWordDisplay(c.state.DisplayMask())
	c.renderer.Reset(c.canvas)
	c.display.SetInputEnabled(true)
	return nil
}

// Sync repaints the whole UI from the current state, for a display or
// canvas that has just been attached.
func (c *Controller) Sync() error {
	if c.state == nil {
		c.canvas.Clear()
		c.display.SetWordDisplay("")
		c.display.SetGuessedLettersDisplay("")
		c.display.SetInputEnabled(false)
		return nil
	}
	if err := c.renderer.Replay(c.canvas, c.state.Attempts()); err != nil {
		return err
	}
	c.display.SetWordDisplay(c.state.DisplayMask())
	c.display.SetGuessedLettersDisplay(guessedText(c.state))
	c.display.SetInputEnabled(true)
	c.showGameOver()
	return nil
}

// showGameOver puts the end-of-round message up and locks the input.
func (c *Controller) showGameOver() bool {
	switch {
	case c.state.IsLost():
		c.display.SetWordDisplay(fmt.Sprintf(msgLost, c.state.Word()))
	case c.state.IsWon():
		c.display.SetWordDisplay(fmt.Sprintf(msgWon, c.state.Word()))
	default:
		return false
	}
	c.display.SetInputEnabled(false)
	return true
}

func guessedText(s *State) string {
	g := s.Guessed()
	if len(g) == 0 {
		return ""
	}
	return guessedPrefix + strings.Join(g, " ")
}
