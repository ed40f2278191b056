package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPanel_AlignsWideText(t *testing.T) {
	SetTheme("classic")
	var buf bytes.Buffer
	Panel(&buf, []string{"Lácteos", "Fruta y Verdura", C(fgGreen, "☑ Leche")})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	w := lipgloss.Width(lines[0])
	for i, ln := range lines {
		if lipgloss.Width(ln) != w {
			t.Fatalf("line %d width %d, want %d:\n%s", i, lipgloss.Width(ln), w, buf.String())
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := ProgressBar(1, 4, 8); got != "██░░░░░░  25%" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := ProgressBar(0, 0, 2); got != "░░░░░   0%" {
		t.Fatalf("unexpected empty bar %q", got)
	}
}

func TestColumns(t *testing.T) {
	if got := Columns("ab", "$1.00", 10); got != "ab   $1.00" {
		t.Fatalf("unexpected columns %q", got)
	}
	if got := Columns("long left", "$1.00", 4); got != "long left $1.00" {
		t.Fatalf("expected single space gap, got %q", got)
	}
}

func TestC_RespectsDisable(t *testing.T) {
	SetColorForcing(false, true)
	defer SetColorForcing(false, false)
	if got := C(fgRed, "x"); got != "x" {
		t.Fatalf("expected plain text, got %q", got)
	}
	SetColorForcing(true, false)
	if got := C(fgRed, "x"); got != fgRed+"x"+reset {
		t.Fatalf("expected coloured text, got %q", got)
	}
}
