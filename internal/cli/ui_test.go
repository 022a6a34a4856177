package cli

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 60); got != "short" {
		t.Fatalf("short string altered: %q", got)
	}

	long := strings.Repeat("x", 100)
	got := truncateString(long, 60)
	if len(got) != 60 {
		t.Fatalf("truncated length %d, want 60", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated string missing ellipsis: %q", got)
	}
}

func TestTruncateStringMultibyte(t *testing.T) {
	long := strings.Repeat("日本語のメッセージ", 20)

	got := truncateString(long, 60)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 60 {
		t.Fatalf("truncated to %d runes, want 60", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated string missing ellipsis: %q", got)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"history", "clear", "config", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}
