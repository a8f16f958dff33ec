// Package prompt implements the C2 prompt parser: turning a PS1/PS2-style
// escape string into a sequence of pieces, then rendering those pieces
// against a running shell's state.
//
// Grounded on original_source/brush-parser/src/prompt.rs's PEG grammar
// (a flat "special sequence or literal run" alternation) and
// original_source/brush-core/src/prompt.rs's renderer, reworked as a
// byte-scanning Tokenizer in the style of the teacher's own lexer
// package (github.com/brushsh/brush/lexer) rather than a parser
// combinator, since this repo has no peg-equivalent dependency in its
// stack and a prompt string's grammar is regular, not recursive.
package prompt

import (
	"strconv"
	"strings"
)

// Kind identifies what a Piece renders as.
type Kind int

const (
	Literal Kind = iota
	AsciiCharacter
	Backslash
	BellCharacter
	CarriageReturn
	CurrentCommandNumber
	CurrentHistoryNumber
	CurrentUser
	WorkingDirectory
	Date
	DollarOrPound
	EndNonPrinting
	EscapeCharacter
	Hostname
	Newline
	NumberOfManagedJobs
	ShellBaseName
	ShellRelease
	ShellVersion
	StartNonPrinting
	TerminalDeviceBaseName
	Time
)

// DateFormat selects \d's rendering; DateCustom carries \D{fmt}'s body.
type DateFormat int

const (
	DateWeekdayMonthDate DateFormat = iota
	DateCustom
)

// TimeFormat selects \t/\T/\@'s rendering.
type TimeFormat int

const (
	TimeTwelveHourAM TimeFormat = iota
	TimeTwelveHourHHMMSS
	TimeTwentyFourHourHHMMSS
)

// Piece is one parsed element of a prompt string.
type Piece struct {
	Kind Kind

	// AsciiCharacter
	Char rune

	// WorkingDirectory
	TildeReplaced bool
	Basename      bool

	// Hostname
	OnlyUpToFirstDot bool

	// Literal
	Text string

	// Date
	DateFormat DateFormat
	CustomDate string

	// Time
	TimeFormat TimeFormat
}

// Parse scans s into a sequence of Pieces, recognizing the same
// backslash escapes bash documents for PS1/PS2/PS4 ("Controlling the
// Prompt" in the bash manual, mirrored by the grammar this is ported
// from). An escape sequence bash does not define is rendered as its
// trailing character, matching the original parser's literal_sequence
// fallback (anything that isn't a recognized special_sequence becomes
// a literal run).
func Parse(s string) []Piece {
	var pieces []Piece
	var lit strings.Builder

	flushLit := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, Piece{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(s) {
		if s[i] != '\\' || i+1 >= len(s) {
			lit.WriteByte(s[i])
			i++
			continue
		}

		c := s[i+1]
		switch c {
		case 'a':
			flushLit()
			pieces = append(pieces, Piece{Kind: BellCharacter})
			i += 2
		case 'd':
			flushLit()
			pieces = append(pieces, Piece{Kind: Date, DateFormat: DateWeekdayMonthDate})
			i += 2
		case 'D':
			if i+2 < len(s) && s[i+2] == '{' {
				end := strings.IndexByte(s[i+3:], '}')
				if end >= 0 {
					flushLit()
					pieces = append(pieces, Piece{Kind: Date, DateFormat: DateCustom, CustomDate: s[i+3 : i+3+end]})
					i = i + 3 + end + 1
					continue
				}
			}
			lit.WriteByte(c)
			i += 2
		case 'e':
			flushLit()
			pieces = append(pieces, Piece{Kind: EscapeCharacter})
			i += 2
		case 'h':
			flushLit()
			pieces = append(pieces, Piece{Kind: Hostname, OnlyUpToFirstDot: true})
			i += 2
		case 'H':
			flushLit()
			pieces = append(pieces, Piece{Kind: Hostname, OnlyUpToFirstDot: false})
			i += 2
		case 'j':
			flushLit()
			pieces = append(pieces, Piece{Kind: NumberOfManagedJobs})
			i += 2
		case 'l':
			flushLit()
			pieces = append(pieces, Piece{Kind: TerminalDeviceBaseName})
			i += 2
		case 'n':
			flushLit()
			pieces = append(pieces, Piece{Kind: Newline})
			i += 2
		case 'r':
			flushLit()
			pieces = append(pieces, Piece{Kind: CarriageReturn})
			i += 2
		case 's':
			flushLit()
			pieces = append(pieces, Piece{Kind: ShellBaseName})
			i += 2
		case 't':
			flushLit()
			pieces = append(pieces, Piece{Kind: Time, TimeFormat: TimeTwentyFourHourHHMMSS})
			i += 2
		case 'T':
			flushLit()
			pieces = append(pieces, Piece{Kind: Time, TimeFormat: TimeTwelveHourHHMMSS})
			i += 2
		case '@':
			flushLit()
			pieces = append(pieces, Piece{Kind: Time, TimeFormat: TimeTwelveHourAM})
			i += 2
		case 'u':
			flushLit()
			pieces = append(pieces, Piece{Kind: CurrentUser})
			i += 2
		case 'v':
			flushLit()
			pieces = append(pieces, Piece{Kind: ShellVersion})
			i += 2
		case 'V':
			flushLit()
			pieces = append(pieces, Piece{Kind: ShellRelease})
			i += 2
		case 'w':
			flushLit()
			pieces = append(pieces, Piece{Kind: WorkingDirectory, TildeReplaced: true, Basename: false})
			i += 2
		case 'W':
			flushLit()
			pieces = append(pieces, Piece{Kind: WorkingDirectory, TildeReplaced: true, Basename: true})
			i += 2
		case '!':
			flushLit()
			pieces = append(pieces, Piece{Kind: CurrentHistoryNumber})
			i += 2
		case '#':
			flushLit()
			pieces = append(pieces, Piece{Kind: CurrentCommandNumber})
			i += 2
		case '$':
			flushLit()
			pieces = append(pieces, Piece{Kind: DollarOrPound})
			i += 2
		case '\\':
			flushLit()
			pieces = append(pieces, Piece{Kind: Backslash})
			i += 2
		case '[':
			flushLit()
			pieces = append(pieces, Piece{Kind: StartNonPrinting})
			i += 2
		case ']':
			flushLit()
			pieces = append(pieces, Piece{Kind: EndNonPrinting})
			i += 2
		default:
			if n, ok := octalRune(s[i+1:]); ok {
				flushLit()
				pieces = append(pieces, Piece{Kind: AsciiCharacter, Char: n})
				i += 1 + 3
				continue
			}
			lit.WriteByte(c)
			i += 2
		}
	}
	flushLit()
	return pieces
}

// octalRune reads exactly three octal digits from the front of s, per
// the original grammar's octal_number rule (\NNN, always three digits).
func octalRune(s string) (rune, bool) {
	if len(s) < 3 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:3], 8, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
