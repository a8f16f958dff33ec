package prompt

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Version is this shell's nominal \v/\V value; the repo has no release
// process of its own to draw a real version from.
const Version = "1.0.0"

// Context carries the pieces of shell state a rendered prompt can
// reference. It is a plain struct rather than an interface over
// *interp.Shell so this package stays testable without constructing a
// real shell, and so cmd/brush (the only caller) controls exactly
// which bits of shell state leak into the prompt.
type Context struct {
	WorkingDir    string
	Home          string
	User          string
	Hostname      string
	ShellName     string
	IsRoot        bool
	JobCount      int
	HistoryNumber int
	CommandNumber int
	Now           time.Time
}

// Format renders pieces against ctx, per
// original_source/brush-core/src/prompt.rs's format_prompt_piece:
// every piece renders from ctx (job count, history/command numbers and
// date/time included), except the terminal device name and the
// non-printing markers, which render nothing.
func Format(ctx Context, pieces []Piece) string {
	var sb strings.Builder
	for _, p := range pieces {
		switch p.Kind {
		case Literal:
			sb.WriteString(p.Text)
		case AsciiCharacter:
			sb.WriteRune(p.Char)
		case Backslash:
			sb.WriteByte('\\')
		case BellCharacter:
			sb.WriteByte('\a')
		case CarriageReturn:
			sb.WriteByte('\r')
		case CurrentCommandNumber:
			sb.WriteString(strconv.Itoa(ctx.CommandNumber))
		case CurrentHistoryNumber:
			sb.WriteString(strconv.Itoa(ctx.HistoryNumber))
		case CurrentUser:
			sb.WriteString(ctx.User)
		case WorkingDirectory:
			sb.WriteString(formatWorkingDir(ctx, p.TildeReplaced, p.Basename))
		case Date:
			sb.WriteString(formatDate(ctx, p))
		case DollarOrPound:
			if ctx.IsRoot {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('$')
			}
		case EndNonPrinting, StartNonPrinting:
			// Non-printing markers bracket escape sequences (e.g. for a
			// line editor's width accounting); this renderer has no line
			// editor consuming them, so they contribute nothing.
		case EscapeCharacter:
			sb.WriteByte('\x1b')
		case Hostname:
			h := ctx.Hostname
			if p.OnlyUpToFirstDot {
				if dot := strings.IndexByte(h, '.'); dot >= 0 {
					h = h[:dot]
				}
			}
			sb.WriteString(h)
		case Newline:
			sb.WriteByte('\n')
		case NumberOfManagedJobs:
			sb.WriteString(strconv.Itoa(ctx.JobCount))
		case ShellBaseName:
			sb.WriteString(filepath.Base(ctx.ShellName))
		case ShellRelease:
			sb.WriteString(majorMinor(Version))
		case ShellVersion:
			sb.WriteString(Version)
		case TerminalDeviceBaseName:
			// Not meaningful without a controlling terminal device path;
			// left blank.
		case Time:
			sb.WriteString(formatTime(ctx, p.TimeFormat))
		}
	}
	return sb.String()
}

func formatWorkingDir(ctx Context, tildeReplaced, basename bool) string {
	dir := ctx.WorkingDir
	if tildeReplaced {
		dir = tildeShorten(dir, ctx.Home)
	}
	if basename {
		dir = filepath.Base(dir)
	}
	return dir
}

// tildeShorten replaces a leading home-directory path with "~", the
// inverse of expand.Config.expandTilde's ~-to-path direction.
func tildeShorten(dir, home string) string {
	if home == "" {
		return dir
	}
	if dir == home {
		return "~"
	}
	if strings.HasPrefix(dir, home+string(filepath.Separator)) {
		return "~" + dir[len(home):]
	}
	return dir
}

func formatDate(ctx Context, p Piece) string {
	switch p.DateFormat {
	case DateCustom:
		return ctx.Now.Format(strftimeToGo(p.CustomDate))
	default:
		return ctx.Now.Format("Mon Jan 2")
	}
}

func formatTime(ctx Context, f TimeFormat) string {
	switch f {
	case TimeTwelveHourAM:
		return ctx.Now.Format("3:04 PM")
	case TimeTwelveHourHHMMSS:
		return ctx.Now.Format("03:04:05")
	default:
		return ctx.Now.Format("15:04:05")
	}
}

// strftimeToGo translates the handful of strftime verbs bash's \D{...}
// commonly carries (delegated to the C library's strftime in bash
// itself) into Go's reference-time layout. Unrecognized verbs pass
// through unchanged, same fallback as the rest of this renderer.
func strftimeToGo(format string) string {
	replacer := strings.NewReplacer(
		"%Y", "2006", "%y", "06",
		"%m", "01", "%d", "02",
		"%H", "15", "%M", "04", "%S", "05",
		"%a", "Mon", "%A", "Monday",
		"%b", "Jan", "%B", "January",
	)
	return replacer.Replace(format)
}

func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}
