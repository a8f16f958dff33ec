package completion

import "strings"

// Role is the syntactic position of the word being completed, per
// spec.md §4.13 ("command, argument to a specific command, variable
// name after $, filename, hostname, …"); hostname completion is not
// wired (no rule ever asks for it), so only the three roles that drive
// distinct candidate sources are modeled.
type Role int

const (
	RoleCommand Role = iota
	RoleArgument
	RoleVariable
)

// Word is the token under the cursor plus enough context to resolve
// its role and, for RoleArgument, the command it completes for.
type Word struct {
	Text    string // the partial word's own text, unescaped quoting aside
	Start   int    // byte offset in line where Text begins
	Role    Role
	Command string // RoleArgument only: argv[0] of the simple command this word belongs to
	Prev    string // the word immediately before this one, or "" at the start of a command
}

// commandSeparators are the operators that start a new simple command,
// so the word immediately following one is always in command position.
var commandSeparators = map[string]bool{
	"|": true, "||": true, "&&": true, ";": true, "&": true, "(": true, "{": true,
}

// tokenizeForCompletion splits line's prefix up to pos into words
// separated by whitespace, with each unquoted `;`, `|` or `&` emitted
// as a one-byte separator token of its own (a simplification of full
// shell tokenization: quotes are tracked only enough to keep quoted
// text from splitting a word, per spec.md §4.13's "tokenize the
// prefix up to the cursor") and classifies the word touching pos.
// TokenizeForCompletion exports tokenizeForCompletion for callers
// outside this package that have a real line/cursor rather than just a
// bare word.
func TokenizeForCompletion(line string, pos int) Word { return tokenizeForCompletion(line, pos) }

// NewWord builds a bare Word carrying only prefix text, for compgen's
// `-W`/`-F` forms which have no real command line to tokenize.
func NewWord(text string) Word { return Word{Text: text} }

func tokenizeForCompletion(line string, pos int) Word {
	prefix := line[:pos]

	type tok struct {
		text  string
		start int
	}
	var toks []tok
	var cur strings.Builder
	curStart := -1
	var quote byte
	escaped := false

	flush := func(end int) {
		if cur.Len() > 0 || curStart >= 0 {
			toks = append(toks, tok{text: cur.String(), start: curStart})
			cur.Reset()
			curStart = -1
		}
		_ = end
	}

	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if escaped {
			cur.WriteByte(c)
			escaped = false
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '\'' || c == '"':
			if curStart < 0 {
				curStart = i
			}
			quote = c
		case c == ' ' || c == '\t':
			flush(i)
		case c == ';' || c == '|' || (c == '&' && (i == 0 || (prefix[i-1] != '>' && prefix[i-1] != '<'))):
			flush(i)
			toks = append(toks, tok{text: string(c), start: i})
		default:
			if curStart < 0 {
				curStart = i
			}
			cur.WriteByte(c)
		}
	}

	// The word touching pos: whatever is still buffered (pos is inside
	// or right after it), or a fresh empty word starting at pos if the
	// prefix ended on whitespace/a separator.
	var cw tok
	if cur.Len() > 0 || (curStart >= 0 && curStart < pos) {
		cw = tok{text: cur.String(), start: curStart}
	} else {
		cw = tok{text: "", start: pos}
	}

	if strings.HasPrefix(cw.text, "$") {
		return Word{Text: cw.text, Start: cw.start, Role: RoleVariable}
	}

	// Walk the completed tokens backwards from the current word to find
	// the start of its simple command: either the very first token, or
	// the token right after the nearest preceding separator.
	cmdStart := 0
	for i := len(toks) - 1; i >= 0; i-- {
		if commandSeparators[toks[i].text] {
			cmdStart = i + 1
			break
		}
	}

	prev := ""
	if len(toks) > 0 {
		prev = toks[len(toks)-1].text
	}

	if len(toks) == cmdStart {
		return Word{Text: cw.text, Start: cw.start, Role: RoleCommand}
	}
	return Word{Text: cw.text, Start: cw.start, Role: RoleArgument, Command: toks[cmdStart].text, Prev: prev}
}
