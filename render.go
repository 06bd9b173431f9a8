package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"qtermsim/interchange"
	"qtermsim/sim"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	total := width - w
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for a gate, including its angle when it fits.
func gateDisplayName(g sim.Gate) string {
	name := string(g.Type)
	if g.Type.Rotation() && g.Angle != nil {
		withAngle := name + interchange.FormatAngle(*g.Angle)
		if ansi.StringWidth(withAngle) <= gateNameW {
			return withAngle
		}
	}
	return name
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlTargetSelect
)

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW (11) visual characters wide.
func renderCell(info cellInfo, hl cellHighlight) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	// ── Highlighted cell (cursor or target selection) ──
	if hl == hlCursor || hl == hlTargetSelect {
		bdr := cursorBoxStyle
		if hl == hlTargetSelect {
			bdr = targetSelectStyle
		}
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1

		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")

		switch {
		case info.gate != nil && info.isControl:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil && info.isTarget:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("⊕") + strings.Repeat("─", dashR) + bdr.Render("║")
		case info.gate != nil:
			name := padCenter(gateDisplayName(*info.gate), gateNameW)
			mid = bdr.Render("║") + "─┤" + gateStyle.Render(name) + "├─" + bdr.Render("║")
		case info.passThrough:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	// ── Normal (non-highlighted) cells ──
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top = emptyRow
	if info.vertAbove {
		top = vertRow
	}
	bot = emptyRow
	if info.vertBelow {
		bot = vertRow
	}

	switch {
	case info.gate != nil && info.isControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR)

	case info.gate != nil && info.isTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("⊕") + strings.Repeat("─", dashR)

	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(*info.gate), gateNameW)

		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)

	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)

	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

// qubitLabel renders the wire label with the qubit's starting state.
func qubitLabel(qubit int, one bool) string {
	label := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit)))
	if one {
		return label + initialOneStyle.Render("|1>")
	}
	return label + dimStyle.Render("|0>")
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	sb.WriteString("\n\n")

	// How many steps fit
	availWidth := width - labelVisualW - 4
	maxSteps := max(availWidth/cellW, 1)

	startStep := 0
	if m.cursorStep >= maxSteps {
		startStep = m.cursorStep - maxSteps + 1
	}

	if startStep > 0 {
		fmt.Fprintf(&sb, "  ◀ showing steps %d–%d\n", startStep, startStep+maxSteps-1)
	}

	// Step number header
	header := strings.Repeat(" ", labelVisualW)
	for step := startStep; step < startStep+maxSteps; step++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", step), cellW))
	}
	sb.WriteString(header + "\n")

	// Render each qubit as 3 lines
	for qubit := range m.board.NumQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabel(qubit, m.board.InitialOne(qubit)) + "─"
		botLine := strings.Repeat(" ", labelVisualW)

		for step := startStep; step < startStep+maxSteps; step++ {
			info := m.board.cellInfo(step, qubit)

			hl := hlNone
			if step == m.cursorStep && qubit == m.cursorQubit && (m.focus == focusCircuit || m.focus == focusSelectTarget || m.focus == focusMenu) {
				hl = hlCursor
			} else if step == m.cursorStep && qubit == m.targetQubit && m.focus == focusSelectTarget {
				hl = hlTargetSelect
			} else if step == m.editStep && qubit == m.targetQubit && m.focus == focusEditTarget {
				hl = hlTargetSelect
			}

			top, mid, bot := renderCell(info, hl)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Status line
	switch m.focus {
	case focusSelectTarget, focusEditTarget:
		gate := string(m.pendingGate)
		if m.focus == focusEditTarget {
			gate = "Move target"
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(gate))
		sb.WriteString("  Select target qubit: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	default:
		fmt.Fprintf(&sb, "\n  Position: Step %d, Qubit %d", m.cursorStep, m.cursorQubit)
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// probBar draws a horizontal bar for a probability in [0, 1].
func probBar(p float64) string {
	filled := int(math.Round(p * probBarW))
	filled = min(max(filled, 0), probBarW)
	return probBarStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", probBarW-filled))
}

// renderStatePanel renders the state after the cursor step.
func (m Model) renderStatePanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("State after step %d", m.cursorStep)))
	sb.WriteString("\n")

	if m.resultErr != nil {
		sb.WriteString(errorStyle.Render(m.resultErr.Error()))
		return stateStyle.Width(width).Height(height).Render(sb.String())
	}
	if m.result == nil {
		sb.WriteString(dimStyle.Render("no result"))
		return stateStyle.Width(width).Height(height).Render(sb.String())
	}

	// Basis states, bounded by the panel height
	entries := m.result.Entries(1e-9)
	rows := max(height-m.board.NumQubits-4, 1)
	for i, e := range entries {
		if i == rows {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(entries)-rows)))
			sb.WriteString("\n")
			break
		}
		fmt.Fprintf(&sb, "|%s> %s %6.2f%%  φ=%+.3f\n", e.Label, probBar(e.Probability), e.Probability*100, e.Phase)
	}

	// Per-qubit marginals
	for q, mp := range m.result.Marginals() {
		fmt.Fprintf(&sb, "%s P(1)=%.3f ", qubitLabelStyle.Render(fmt.Sprintf("q[%d]", q)), mp.Prob1)
	}
	sb.WriteString("\n")

	for _, w := range m.result.Warnings {
		sb.WriteString(activeGateStyle.Render("⚠ " + w))
		sb.WriteString("\n")
	}

	return stateStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Move qubit  ←→/hl Move step  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate  ")
	sb.WriteString(activeGateStyle.Render("e"))
	sb.WriteString(" Edit gate  ")
	sb.WriteString(activeGateStyle.Render("i"))
	sb.WriteString(" Toggle |0>/|1>\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  Bksp Delete  ^R Reset  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at x in bgLine with overlay.
// Escape sequences in either string do not count toward column positions.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
