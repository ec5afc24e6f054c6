package progress

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestConsoleReport(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(10)
	c.out = &buf

	c.Report(5, 10, "halfway")
	out := buf.String()
	if !strings.Contains(out, "|=====     |") {
		t.Fatalf("unexpected bar rendering: %q", out)
	}
	if !strings.Contains(out, "halfway") {
		t.Fatalf("message missing from output: %q", out)
	}
}

func TestConsoleReportDegenerateInputs(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(10)
	c.out = &buf

	// Zero total and out-of-range positions must not panic or divide
	// by zero.
	c.Report(0, 0, "empty")
	c.Report(5, 2, "over")
	c.Report(-1, 2, "under")
	c.Report(3, 10, strings.Repeat("x", 500))

	if !strings.Contains(buf.String(), "empty") {
		t.Fatalf("degenerate report dropped output: %q", buf.String())
	}
}

func TestConsoleReportTruncatesOnRuneBoundary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(10)
	c.out = &buf

	// A long multibyte message must be cut between runes, never inside
	// a UTF-8 sequence.
	c.Report(1, 2, strings.Repeat("ü", 100))

	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("truncation produced invalid UTF-8: %q", out)
	}
	if !strings.Contains(out, "ü") {
		t.Fatalf("message dropped entirely: %q", out)
	}
}
