package builtin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	maybeio "github.com/google/renameio/v2/maybe"

	"github.com/brushsh/brush/interp"
)

// history is process-wide in-memory state, the same rationale as
// aliases: spec.md treats it as an interactive-shell concern the
// teacher never modeled, not part of C4.
var history []string

// Append records one completed command line (called by the top-level
// driver's read-eval loop, not by the `history` built-in itself).
func Append(line string) {
	if line == "" {
		return
	}
	history = append(history, line)
}

// HistoryCount reports how many lines are currently recorded, used by
// the prompt renderer's \! (current history number) escape.
func HistoryCount() int { return len(history) }

// historyCmd implements `history [n]`, `history -c`, and
// `history -w file`/`history -r file`, persisting via
// github.com/google/renameio/v2/maybe the same way the teacher's
// shfmt -w flag does (cmd/shfmt/main.go), so a crash mid-write can
// never leave a half-written history file.
func historyCmd(ctx *interp.ExecContext, args []string) interp.Result {
	if len(args) == 0 {
		printHistory(ctx, history)
		return normal(interp.Success)
	}
	switch args[0] {
	case "-c":
		history = nil
		return normal(interp.Success)
	case "-w":
		path := historyFilePath(ctx, args)
		data := strings.Join(history, "\n")
		if len(history) > 0 {
			data += "\n"
		}
		if err := maybeio.WriteFile(path, []byte(data), 0o600); err != nil {
			return failf(ctx, "%v", err)
		}
		return normal(interp.Success)
	case "-r":
		path := historyFilePath(ctx, args)
		data, err := os.ReadFile(path)
		if err != nil {
			return failf(ctx, "%v", err)
		}
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if line != "" && !strings.HasPrefix(line, "#") {
				history = append(history, line)
			}
		}
		return normal(interp.Success)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return usageError(ctx, "%s: numeric argument required", args[0])
	}
	if n > len(history) {
		n = len(history)
	}
	printHistory(ctx, history[len(history)-n:])
	return normal(interp.Success)
}

func printHistory(ctx *interp.ExecContext, lines []string) {
	base := len(history) - len(lines) + 1
	for i, line := range lines {
		fmt.Fprintf(ctx.Stdout, "%5d  %s\n", base+i, line)
	}
}

func historyFilePath(ctx *interp.ExecContext, args []string) string {
	if len(args) > 1 {
		return args[1]
	}
	if p, ok := ctx.Shell.Env.GetStr("HISTFILE"); ok {
		return p
	}
	home, _ := ctx.Shell.Env.GetStr("HOME")
	return home + "/.brush_history"
}
