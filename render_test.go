package main

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"qtermsim/sim"
)

func TestRenderCellWidths(t *testing.T) {
	b := NewBoard(3)
	_ = b.Place(0, sim.CNOT(0, 2))
	_ = b.Place(1, sim.RZ(1, math.Pi/4))
	_ = b.Place(2, sim.RX(0, 1.2345))

	for step := range 4 {
		for qubit := range 3 {
			for _, hl := range []cellHighlight{hlNone, hlCursor, hlTargetSelect} {
				top, mid, bot := renderCell(b.cellInfo(step, qubit), hl)
				for i, line := range []string{top, mid, bot} {
					if w := ansi.StringWidth(line); w != cellW {
						t.Errorf("step %d qubit %d hl %d line %d: width %d, want %d (%q)", step, qubit, hl, i, w, cellW, line)
					}
				}
			}
		}
	}
}

func TestRenderCellSymbols(t *testing.T) {
	b := NewBoard(3)
	_ = b.Place(0, sim.CNOT(0, 2))
	_ = b.Place(1, sim.H(1))

	tests := []struct {
		step, qubit int
		want        string
	}{
		{0, 0, "●"},
		{0, 2, "⊕"},
		{0, 1, "┼"},
		{1, 1, "H"},
	}
	for _, tt := range tests {
		_, mid, _ := renderCell(b.cellInfo(tt.step, tt.qubit), hlNone)
		if !strings.Contains(ansi.Strip(mid), tt.want) {
			t.Errorf("cell (%d, %d) mid = %q, want %q", tt.step, tt.qubit, ansi.Strip(mid), tt.want)
		}
	}
}

func TestGateDisplayName(t *testing.T) {
	tests := []struct {
		gate sim.Gate
		want string
	}{
		{sim.H(0), "H"},
		{sim.CNOT(0, 1), "CNOT"},
		{sim.RZ(0, math.Pi), "RZpi"},
		{sim.RX(0, math.Pi/2), "RX"}, // "RXpi/2" does not fit
		{sim.Gate{Type: sim.GateRY, Target: 0}, "RY"},
	}
	for _, tt := range tests {
		if got := gateDisplayName(tt.gate); got != tt.want {
			t.Errorf("gateDisplayName(%v) = %q, want %q", tt.gate, got, tt.want)
		}
	}
}

func TestPadCenter(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"H", 5, "  H  "},
		{"RX", 5, " RX  "},
		{"TOOLONG", 5, "TOOLO"},
		{"⊕", 3, " ⊕ "},
	}
	for _, tt := range tests {
		if got := padCenter(tt.s, tt.width); got != tt.want {
			t.Errorf("padCenter(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestSpliceLineAt(t *testing.T) {
	tests := []struct {
		name    string
		bg      string
		overlay string
		x       int
		want    string
	}{
		{"middle", "abcdef", "XY", 2, "abXYef"},
		{"start", "abcdef", "XY", 0, "XYcdef"},
		{"past end", "ab", "XY", 4, "ab  XY"},
		{"wide runes", "──────", "XY", 1, "─XY───"},
		{"styled background", "\x1b[31mabcdef\x1b[0m", "XY", 2, "abXYef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ansi.Strip(spliceLineAt(tt.bg, tt.overlay, tt.x)); got != tt.want {
				t.Errorf("spliceLineAt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOverlayAt(t *testing.T) {
	bg := "....\n....\n...."
	got := overlayAt(bg, "ab\ncd\nef", 1, 1)
	want := "....\n.ab.\n.cd."
	if got != want {
		t.Errorf("overlayAt =\n%s\nwant\n%s", got, want)
	}
}

func TestProbBar(t *testing.T) {
	for _, p := range []float64{0, 0.25, 0.5, 1, 1.5} {
		if w := ansi.StringWidth(probBar(p)); w != probBarW {
			t.Errorf("probBar(%v) width %d, want %d", p, w, probBarW)
		}
	}
	if full := ansi.Strip(probBar(1)); full != strings.Repeat("█", probBarW) {
		t.Errorf("probBar(1) = %q", full)
	}
}
