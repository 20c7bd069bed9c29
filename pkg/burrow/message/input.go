package message

import "fmt"

// InputKind classifies an InputEvent.
type InputKind uint8

const (
	InputNull InputKind = iota
	InputHJKL
	InputWASD
	InputCancel
	InputConfirm
	InputTab
	InputBackTab
	InputDelete
	InputMenu
	InputExit
)

var inputNames = [...]string{"Null", "HJKL", "WASD", "Cancel", "Confirm", "Tab", "BackTab", "Delete", "Menu", "Exit"}

func (k InputKind) String() string {
	if int(k) < len(inputNames) {
		return inputNames[k]
	}
	return fmt.Sprintf("InputKind(%d)", uint8(k))
}

// InputEvent is a user action already translated from raw key presses. Dir
// is meaningful only for the HJKL and WASD kinds.
type InputEvent struct {
	Kind InputKind
	Dir  Dir
}

// HJKL returns a vi-key movement event.
func HJKL(d Dir) InputEvent { return InputEvent{Kind: InputHJKL, Dir: d} }

// WASD returns a WASD-cluster movement event.
func WASD(d Dir) InputEvent { return InputEvent{Kind: InputWASD, Dir: d} }

// Key returns a directionless event of kind k.
func Key(k InputKind) InputEvent { return InputEvent{Kind: k} }

// IsMove reports whether e is a movement event.
func (e InputEvent) IsMove() bool {
	return e.Kind == InputHJKL || e.Kind == InputWASD
}

func (e InputEvent) String() string {
	if e.IsMove() {
		return e.Kind.String() + "(" + e.Dir.String() + ")"
	}
	return e.Kind.String()
}

// Ticker is returned by each loop iteration.
type Ticker uint8

const (
	Continue Ticker = iota
	ExitProgram
)

func (t Ticker) String() string {
	if t == ExitProgram {
		return "ExitProgram"
	}
	return "Continue"
}
