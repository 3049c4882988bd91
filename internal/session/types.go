package session

import (
	"encoding/json"

	"example.com/hangman/internal/hangman"
)

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// incoming
const (
	TypeChooseDifficulty = "choose_difficulty"
	TypeGuess            = "guess"
)

// outgoing
const (
	TypeWord             = "word"
	TypeGuessed          = "guessed"
	TypeNotification     = "notification"
	TypeInput            = "input"
	TypeClearInput       = "clear_input"
	TypeCanvasClear      = "canvas_clear"
	TypeCanvasBackground = "canvas_background"
	TypeCanvasPen        = "canvas_pen"
	TypeDraw             = "draw"
	TypeState            = "state"
	TypeError            = "error"
)

type ChooseDifficultyPayload struct {
	Difficulty string `json:"difficulty"`
}

type GuessPayload struct {
	Input string `json:"input"`
}

type TextPayload struct {
	Text string `json:"text"`
}

type InputPayload struct {
	Enabled bool `json:"enabled"`
}

type BackgroundPayload struct {
	Asset string `json:"asset"`
}

type PenPayload struct {
	Size float64 `json:"size"`
}

type DrawPayload struct {
	Ops []hangman.Op `json:"ops"`
}

type StatePayload struct {
	SessionID         string        `json:"sessionId"`
	Phase             hangman.Phase `json:"phase"`
	Difficulty        string        `json:"difficulty,omitempty"`
	AttemptsRemaining int           `json:"attemptsRemaining"`
	Mask              string        `json:"mask"`
	Guessed           []string      `json:"guessed"`
	Word              string        `json:"word,omitempty"` // only once the round is over
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
