package words

import (
	"fmt"
	"strings"
)

// Tier is a difficulty bucket chosen by word length.
type Tier int

const (
	Easy Tier = iota
	Medium
	Hard
)

// Tiers lists every tier in menu order.
var Tiers = []Tier{Easy, Medium, Hard}

// placeholder shown by the menu before anything is chosen
const unselected = "choose a difficulty"

func (t Tier) String() string {
	switch t {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

func (t Tier) Valid() bool {
	return t >= Easy && t <= Hard
}

// ParseTier maps a menu value to a tier. An empty value or the menu
// placeholder means nothing was picked yet and falls back to Easy.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", unselected, "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Easy, fmt.Errorf("unknown difficulty %q", s)
}

// TierFor classifies a word by its length in characters:
// up to 3 is Easy, 4-7 is Medium, 8 and more is Hard.
func TierFor(length int) (Tier, bool) {
	switch {
	case length >= 8:
		return Hard, true
	case length >= 4:
		return Medium, true
	case length >= 1:
		return Easy, true
	}
	return Easy, false
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
