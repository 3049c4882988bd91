package hangman

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"example.com/hangman/internal/words"
)

// MaxAttempts is the number of wrong guesses a round allows.
const MaxAttempts = 6

// Outcome is the result of a single guess.
type Outcome int

const (
	InvalidInput Outcome = iota
	AlreadyGuessed
	Miss
	Hit
)

func (o Outcome) String() string {
	switch o {
	case InvalidInput:
		return "invalid_input"
	case AlreadyGuessed:
		return "already_guessed"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	default:
		return "unknown"
	}
}

type Phase string

const (
	PhaseSelecting Phase = "selecting"
	PhasePlaying   Phase = "playing"
	PhaseWon       Phase = "won"
	PhaseLost      Phase = "lost"
)

const blank = "_"

// State is one round: the word, what was guessed so far and how many
// wrong guesses are left. The word never changes within a round, guessed
// letters only accumulate and attempts only go down.
type State struct {
	word     string
	tier     words.Tier
	attempts int

	guessed []rune // insertion order, for display
	seen    map[rune]bool
}

func NewState(tier words.Tier, word string) *State {
	s := &State{}
	s.Reset(tier, word)
	return s
}

func (s *State) Reset(tier words.Tier, word string) {
	s.word = strings.ToUpper(word)
	s.tier = tier
	s.attempts = MaxAttempts
	s.guessed = nil
	s.seen = make(map[rune]bool)
}

// SubmitGuess records one letter. Anything other than exactly one letter is
// rejected without touching the state, as is a letter already tried.
func (s *State) SubmitGuess(letter string) Outcome {
	if utf8.RuneCountInString(letter) != 1 {
		return InvalidInput
	}
	r, _ := utf8.DecodeRuneInString(letter)
	if !unicode.IsLetter(r) {
		return InvalidInput
	}
	r = unicode.ToUpper(r)
	if s.seen[r] {
		return AlreadyGuessed
	}

	s.seen[r] = true
	s.guessed = append(s.guessed, r)

	if !strings.ContainsRune(s.word, r) {
		s.attempts--
		return Miss
	}
	return Hit
}

// DisplayMask renders the word with unguessed characters as "_",
// one token per character, tokens separated by a single space.
func (s *State) DisplayMask() string {
	tokens := make([]string, 0, utf8.RuneCountInString(s.word))
	for _, r := range s.word {
		if s.seen[r] {
			tokens = append(tokens, string(r))
		} else {
			tokens = append(tokens, blank)
		}
	}
	return strings.Join(tokens, " ")
}

func (s *State) IsWon() bool {
	for _, r := range s.word {
		if !s.seen[r] {
			return false
		}
	}
	return true
}

func (s *State) IsLost() bool { return s.attempts == 0 }

func (s *State) IsOver() bool { return s.IsWon() || s.IsLost() }

func (s *State) Phase() Phase {
	switch {
	case s.IsLost():
		return PhaseLost
	case s.IsWon():
		return PhaseWon
	default:
		return PhasePlaying
	}
}

func (s *State) Word() string { return s.word }
func (s *State) Tier() words.Tier { return s.tier }
func (s *State) Attempts() int { return s.attempts }

// Guessed returns the guessed letters in the order they were tried.
func (s *State) Guessed() []string {
	out := make([]string, len(s.guessed))
	for i, r := range s.guessed {
		out[i] = string(r)
	}
	return out
}
