package board

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, matched with errors.Is. These are the abstract error
// kinds of the Memory Scramble error taxonomy: BadArgument, NoCardAtPosition,
// CardAlreadyControlled, and Cancelled.
var (
	// ErrBadArgument covers a blank player identity, an out-of-bounds
	// position, a nil Map transform, or an invalid output token from one.
	ErrBadArgument = errors.New("memoryscramble: bad argument")

	// ErrNoCardAtPosition is rule 1-A or 2-A: the targeted cell is empty.
	ErrNoCardAtPosition = errors.New("memoryscramble: no card at position")

	// ErrCardAlreadyControlled is rule 2-B only: the second card is
	// already controlled by someone (including the player's own first
	// card).
	ErrCardAlreadyControlled = errors.New("memoryscramble: card already controlled")

	// ErrCancelled is surfaced to a flip that was blocked in rule 1-D
	// when the board was reset out from under it.
	ErrCancelled = errors.New("memoryscramble: operation cancelled")
)

func badArgf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrBadArgument)...)
}

func noCardAtf(pos Position) error {
	return fmt.Errorf("no card at %v: %w", pos, ErrNoCardAtPosition)
}

func alreadyControlledf(pos Position) error {
	return fmt.Errorf("%v is already controlled: %w", pos, ErrCardAlreadyControlled)
}
