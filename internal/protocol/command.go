package protocol

import (
	"fmt"

	"remotemouse/internal/input"
)

// MouseOp identifies a mouse sub-command
type MouseOp int

const (
	// OpMove moves the pointer by a relative, accelerated vector: "m dx dy"
	OpMove MouseOp = iota + 1
	// OpClick is a full primary button click: "c"
	OpClick
	// OpButton presses or releases a single button: "R <l|m|r> <d|u>"
	OpButton
	// OpScroll is one wheel step: "w <0|1>"
	OpScroll
	// OpPrepare drops the next motion sample before a drag or selection: "b" or "s"
	OpPrepare
)

func (op MouseOp) String() string {
	switch op {
	case OpMove:
		return "move"
	case OpClick:
		return "click"
	case OpButton:
		return "button"
	case OpScroll:
		return "scroll"
	case OpPrepare:
		return "prepare"
	default:
		return fmt.Sprintf("MouseOp(%d)", int(op))
	}
}

// MouseCommand is a parsed "mos" payload. Only the fields relevant to Op
// are set.
type MouseCommand struct {
	Op      MouseOp
	DX, DY  int
	Button  input.Button
	Pressed bool
}

// ParseMouseCommand interprets the tokens of a mouse frame. The first
// character of the first token selects the sub-command.
func ParseMouseCommand(tokens []Token) (MouseCommand, error) {
	if len(tokens) == 0 {
		return MouseCommand{}, ErrEmptyCommand
	}

	switch lead(tokens[0]) {
	case 'm':
		if len(tokens) != 3 {
			return MouseCommand{}, fmt.Errorf("%w: move takes 2 arguments, got %d", ErrArgCount, len(tokens)-1)
		}
		return MouseCommand{Op: OpMove, DX: tokens[1].Int, DY: tokens[2].Int}, nil

	case 'c':
		return MouseCommand{Op: OpClick, Button: input.ButtonPrimary}, nil

	case 'R':
		if len(tokens) != 3 {
			return MouseCommand{}, fmt.Errorf("%w: button takes 2 arguments, got %d", ErrArgCount, len(tokens)-1)
		}
		var button input.Button
		switch lead(tokens[1]) {
		case 'l':
			button = input.ButtonPrimary
		case 'm':
			button = input.ButtonMiddle
		case 'r':
			button = input.ButtonSecondary
		default:
			return MouseCommand{}, fmt.Errorf("%w %s", ErrUnknownButton, tokens[1].Text)
		}
		var pressed bool
		switch lead(tokens[2]) {
		case 'd':
			pressed = true
		case 'u':
			pressed = false
		default:
			return MouseCommand{}, fmt.Errorf("%w %s", ErrUnknownAction, tokens[2].Text)
		}
		return MouseCommand{Op: OpButton, Button: button, Pressed: pressed}, nil

	case 'w':
		if len(tokens) != 2 {
			return MouseCommand{}, fmt.Errorf("%w: scroll takes 1 argument, got %d", ErrArgCount, len(tokens)-1)
		}
		var button input.Button
		switch lead(tokens[1]) {
		case '0':
			button = input.ButtonScrollDown
		case '1':
			button = input.ButtonScrollUp
		default:
			return MouseCommand{}, fmt.Errorf("%w %s", ErrUnknownScroll, tokens[1].Text)
		}
		return MouseCommand{Op: OpScroll, Button: button}, nil

	case 'b', 's':
		return MouseCommand{Op: OpPrepare}, nil

	default:
		return MouseCommand{}, fmt.Errorf("%w: %s", ErrUnknownMouseCommand, tokens[0].Text)
	}
}

// lead returns the first byte of a token, 0 for an empty one
func lead(t Token) byte {
	if t.Text == "" {
		return 0
	}
	return t.Text[0]
}
