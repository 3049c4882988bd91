package hangman

import (
	"errors"
	"fmt"
)

var ErrNoStage = errors.New("no hangman stage for attempts count")

type OpKind string

const (
	OpMoveTo  OpKind = "move_to" // pen up, jump to (x, y)
	OpHeading OpKind = "heading" // degrees, 0 = east, counter-clockwise
	OpLine    OpKind = "line"    // pen down, forward by length
	OpCircle  OpKind = "circle"  // pen down, circle with centre on the left of the heading
)

// Op is one turtle primitive. Coordinates have the origin at the centre
// of the canvas with y pointing up.
type Op struct {
	Kind    OpKind  `json:"kind"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Heading float64 `json:"heading,omitempty"`
	Length  float64 `json:"length,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
}

func MoveTo(x, y float64) Op { return Op{Kind: OpMoveTo, X: x, Y: y} }
func Heading(deg float64) Op { return Op{Kind: OpHeading, Heading: deg} }
func Line(length float64) Op { return Op{Kind: OpLine, Length: length} }
func Circle(radius float64) Op { return Op{Kind: OpCircle, Radius: radius} }

// Canvas is whatever executes the drawing: a browser canvas, a test
// recorder.
type Canvas interface {
	Clear()
	SetBackground(asset string)
	SetPenSize(size float64)
	Draw(ops []Op)
}

// Figure anchor: the rope end of the gallows background.
const (
	originX = 40
	originY = 90
)

// stages is indexed by attempts remaining. Each entry positions the pen
// itself, so a stage never depends on where the previous one left off.
var stages = [MaxAttempts + 1][]Op{
	6: {MoveTo(originX, originY), Heading(180)},               // empty gallows
	5: {MoveTo(originX, originY), Heading(180), Circle(20)},   // head
	4: {MoveTo(originX, originY-40), Heading(270), Line(100)}, // body
	3: {MoveTo(originX, originY-60), Heading(225), Line(35)},  // left arm
	2: {MoveTo(originX, originY-60), Heading(315), Line(35)},  // right arm
	1: {MoveTo(originX, originY-140), Heading(315), Line(30)}, // right leg
	0: {MoveTo(originX, originY-140), Heading(225), Line(30)}, // left leg
}

// StageFor returns the ops for the stage reached at the given attempts
// count, or false outside [0, MaxAttempts].
func StageFor(attempts int) ([]Op, bool) {
	if attempts < 0 || attempts > MaxAttempts {
		return nil, false
	}
	return append([]Op(nil), stages[attempts]...), true
}

type Renderer struct {
	Background string
	PenSize    float64
}

func NewRenderer() *Renderer {
	return &Renderer{
		Background: "gallow.gif",
		PenSize:    5,
	}
}

// Reset wipes the canvas and puts up the empty gallows.
func (r *Renderer) Reset(c Canvas) {
	c.Clear()
	c.SetBackground(r.Background)
	c.SetPenSize(r.PenSize)
	ops, _ := StageFor(MaxAttempts)
	c.Draw(ops)
}

// Draw adds the stage for attempts to the canvas.
func (r *Renderer) Draw(c Canvas, attempts int) error {
	ops, ok := StageFor(attempts)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoStage, attempts)
	}
	c.Draw(ops)
	return nil
}

// Replay rebuilds a fresh canvas up to the given attempts count.
func (r *Renderer) Replay(c Canvas, attempts int) error {
	if attempts < 0 || attempts > MaxAttempts {
		return fmt.Errorf("%w: %d", ErrNoStage, attempts)
	}
	r.Reset(c)
	for a := MaxAttempts - 1; a >= attempts; a-- {
		if err := r.Draw(c, a); err != nil {
			return err
		}
	}
	return nil
}
