package prompt

import (
	"testing"
	"time"
)

func TestParseLiteralAndEscapes(t *testing.T) {
	pieces := Parse(`\u@\h:\w\$ `)
	want := []Kind{CurrentUser, Literal, Hostname, Literal, WorkingDirectory, DollarOrPound, Literal}
	if len(pieces) != len(want) {
		t.Fatalf("got %d pieces, want %d: %+v", len(pieces), len(want), pieces)
	}
	for i, k := range want {
		if pieces[i].Kind != k {
			t.Errorf("piece %d kind = %v, want %v", i, pieces[i].Kind, k)
		}
	}
	if pieces[1].Text != "@" {
		t.Errorf("piece 1 text = %q, want %q", pieces[1].Text, "@")
	}
	if pieces[3].Text != ":" {
		t.Errorf("piece 3 text = %q, want %q", pieces[3].Text, ":")
	}
	if pieces[6].Text != " " {
		t.Errorf("piece 6 text = %q, want %q", pieces[6].Text, " ")
	}
}

func TestParseUnknownEscapeFallsBackToLiteral(t *testing.T) {
	pieces := Parse(`\x`)
	if len(pieces) != 1 || pieces[0].Kind != Literal || pieces[0].Text != "x" {
		t.Fatalf("got %+v", pieces)
	}
}

func TestParseOctal(t *testing.T) {
	pieces := Parse(`\101`)
	if len(pieces) != 1 || pieces[0].Kind != AsciiCharacter || pieces[0].Char != 'A' {
		t.Fatalf("got %+v", pieces)
	}
}

func TestParseCustomDate(t *testing.T) {
	pieces := Parse(`\D{%Y-%m-%d}`)
	if len(pieces) != 1 || pieces[0].Kind != Date || pieces[0].DateFormat != DateCustom || pieces[0].CustomDate != "%Y-%m-%d" {
		t.Fatalf("got %+v", pieces)
	}
}

func TestFormatBasic(t *testing.T) {
	ctx := Context{
		User:       "alice",
		Hostname:   "box.example.com",
		WorkingDir: "/home/alice/proj",
		Home:       "/home/alice",
		IsRoot:     false,
	}
	got := Format(ctx, Parse(`\u@\h:\w\$ `))
	want := "alice@box:~/proj$ "
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormatHostnameUpToFirstDot(t *testing.T) {
	ctx := Context{Hostname: "box.example.com"}
	got := Format(ctx, Parse(`\h`))
	if got != "box" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRootUsesPound(t *testing.T) {
	ctx := Context{IsRoot: true}
	if got := Format(ctx, Parse(`\$`)); got != "#" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatWorkingDirBasename(t *testing.T) {
	ctx := Context{WorkingDir: "/home/alice/proj", Home: "/home/alice"}
	if got := Format(ctx, Parse(`\W`)); got != "proj" {
		t.Fatalf("got %q", got)
	}
}

func TestTildeShortenExactHome(t *testing.T) {
	if got := tildeShorten("/home/alice", "/home/alice"); got != "~" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatTimeAndDate(t *testing.T) {
	now := time.Date(2026, time.July, 30, 14, 5, 6, 0, time.UTC)
	ctx := Context{Now: now}
	if got := Format(ctx, Parse(`\t`)); got != "14:05:06" {
		t.Fatalf("got %q", got)
	}
	if got := Format(ctx, Parse(`\D{%Y-%m-%d}`)); got != "2026-07-30" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatNewlineAndJobs(t *testing.T) {
	ctx := Context{JobCount: 3}
	if got := Format(ctx, Parse(`\j jobs\n`)); got != "3 jobs\n" {
		t.Fatalf("got %q", got)
	}
}
