package completion

import (
	"os"

	"golang.org/x/term"
)

// Interactive reports whether stdin is an actual terminal, the same
// check cmd/brush uses to decide whether to enter its read loop at
// all. A completion front end consults this before bothering to call
// Complete: without a real terminal there is no cursor position to
// complete at and no line editor to insert the result into.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
