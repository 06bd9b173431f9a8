package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtermsim/interchange"
	"qtermsim/sim"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusInputParam
	focusEditGate
	focusEditParam
	focusEditTarget
)

const (
	defaultSavePath = "circuit.qasm"
	invalidAngleMsg = "Invalid angle: use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
)

// Model represents the TUI application state.
type Model struct {
	board       *Board // single source of truth for the circuit
	engine      *sim.Engine
	logger      *slog.Logger
	result      *sim.ExecutionResult // state after the cursor step
	resultErr   error
	cursorQubit int
	cursorStep  int
	width       int
	height      int
	qasmEditor  textarea.Model
	focus       focus
	lastQASM    string
	statusMsg   string // transient status message (e.g. save confirmation)
	savePath    string
	saveFormat  interchange.Format

	// Menu state
	menuCat  int
	menuItem int

	// Target-selection and angle entry state
	pendingGate sim.GateType
	targetQubit int
	paramInput  string

	// Edit gate state, addressed by the cell the gate was opened from
	editStep    int
	editQubit   int
	editMenuIdx int
}

func initialModel(engine *sim.Engine, logger *slog.Logger, board *Board) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(true)

	if board == nil {
		board = NewBoard(3)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := Model{
		board:      board,
		engine:     engine,
		logger:     logger,
		qasmEditor: ta,
		focus:      focusCircuit,
		savePath:   defaultSavePath,
		saveFormat: interchange.FormatQASM,
	}
	m.sync()
	return m
}

// sync regenerates the QASM pane and the state panel from the board.
func (m *Model) sync() {
	qasm := interchange.ExportQASM(m.board.Circuit(-1))
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.refreshState()
}

// refreshState simulates the board up to and including the cursor step.
func (m *Model) refreshState() {
	c := m.board.Circuit(m.cursorStep)
	m.result, m.resultErr = m.engine.Simulate(c)
	if m.resultErr != nil {
		m.logger.Debug("editor simulation failed", "step", m.cursorStep, "error", m.resultErr)
	}
}

// parseQASMInput rebuilds the board when the QASM pane was edited.
// Unparseable text leaves the board as it was.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm
	c, err := interchange.ImportQASM(qasm)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.board = BoardFromCircuit(c)
	m.cursorQubit = min(m.cursorQubit, m.board.NumQubits-1)
	m.refreshState()
}

// placeGate places a gate on the circuit at the cursor position.
// targetQ is the CNOT target (-1 for single-qubit gates).
// Returns true if placement succeeded, false if blocked by conflict.
func (m *Model) placeGate(gateType sim.GateType, targetQ int) bool {
	var g sim.Gate
	switch {
	case gateType == sim.GateCNOT:
		g = sim.CNOT(m.cursorQubit, targetQ)
	case gateType.Rotation():
		theta := 0.0
		if m.paramInput != "" {
			v, err := interchange.ParseAngle(m.paramInput)
			if err != nil {
				m.statusMsg = err.Error()
				return false
			}
			theta = v
		}
		g = sim.Gate{Type: gateType, Target: m.cursorQubit, Angle: &theta}
	default:
		g = sim.Gate{Type: gateType, Target: m.cursorQubit}
	}

	// Clear temporary state
	m.paramInput = ""
	m.pendingGate = ""

	if err := m.board.Place(m.cursorStep, g); err != nil {
		m.statusMsg = "Cannot place: " + err.Error()
		return false
	}

	m.cursorStep++
	m.sync()
	return true
}

// firstTarget picks the initial CNOT target next to the cursor.
func (m *Model) firstTarget() int {
	if m.cursorQubit+1 < m.board.NumQubits {
		return m.cursorQubit + 1
	}
	return m.cursorQubit - 1
}

// moveTarget steps the target selection by dir, skipping excluded qubits.
func (m *Model) moveTarget(dir int, exclude int) {
	for next := m.targetQubit + dir; next >= 0 && next < m.board.NumQubits; next += dir {
		if next != exclude {
			m.targetQubit = next
			return
		}
	}
}

// isAngleKey reports whether key may appear in an angle expression.
func isAngleKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	ch := key[0]
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' || ch == 'e' || ch == 'E' || ch == '+' ||
		ch == 'p' || ch == 'i' || ch == 'P' || ch == 'I' || ch == '*' || ch == '/' || ch == ' '
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		ctrlH := 6
		circH := msg.Height - ctrlH - 4
		editorH := max(circH-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			return m.updateCircuit(key)

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := m.selectedItem()
				m.pendingGate = item.gateType

				switch {
				case item.angleHint != "":
					m.paramInput = ""
					m.focus = focusInputParam
				case item.needsTarget:
					if m.board.NumQubits < 2 {
						m.statusMsg = "CNOT needs at least 2 qubits"
						m.focus = focusCircuit
						break
					}
					m.targetQubit = m.firstTarget()
					m.focus = focusSelectTarget
				default:
					m.placeGate(item.gateType, -1)
					m.focus = focusCircuit
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.pendingGate = ""
			case "up", "k":
				m.moveTarget(-1, m.cursorQubit)
			case "down", "j":
				m.moveTarget(1, m.cursorQubit)
			case "enter":
				m.placeGate(m.pendingGate, m.targetQubit)
				m.focus = focusCircuit
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pendingGate = ""
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				if m.paramInput != "" {
					if _, err := interchange.ParseAngle(m.paramInput); err != nil {
						m.statusMsg = invalidAngleMsg
						break
					}
				}
				m.placeGate(m.pendingGate, -1)
				m.focus = focusCircuit
			default:
				if isAngleKey(key) {
					m.paramInput += key
				}
			}

		case focusEditGate:
			return m.updateEditGate(key)

		case focusEditParam:
			switch key {
			case "esc":
				m.paramInput = ""
				m.focus = focusEditGate
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				p := m.board.GateAt(m.editStep, m.editQubit)
				if p != nil && m.paramInput != "" {
					theta, err := interchange.ParseAngle(m.paramInput)
					if err != nil {
						m.statusMsg = invalidAngleMsg
						break
					}
					p.gate.Angle = &theta
					m.sync()
				}
				m.paramInput = ""
				m.focus = focusEditGate
			default:
				if isAngleKey(key) {
					m.paramInput += key
				}
			}

		case focusEditTarget:
			p := m.board.GateAt(m.editStep, m.editQubit)
			if p == nil {
				m.focus = focusCircuit
				break
			}
			exclude := -1
			if p.gate.Control != nil {
				exclude = *p.gate.Control
			}
			switch key {
			case "esc":
				m.focus = focusEditGate
			case "up", "k":
				m.moveTarget(-1, exclude)
			case "down", "j":
				m.moveTarget(1, exclude)
			case "enter":
				m.retarget(p, m.targetQubit)
				m.focus = focusEditGate
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// updateCircuit handles keys while the grid has focus.
func (m Model) updateCircuit(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "tab":
		m.focus = focusQASM
		m.qasmEditor.Focus()
	case "ctrl+r":
		m.board.Clear()
		m.cursorStep = 0
		m.sync()
	case "ctrl+s":
		m.save()
	case "up", "k":
		if m.cursorQubit > 0 {
			m.cursorQubit--
		}
	case "down", "j":
		if m.cursorQubit < m.board.NumQubits-1 {
			m.cursorQubit++
		}
	case "left", "h":
		if m.cursorStep > 0 {
			m.cursorStep--
			m.refreshState()
		}
	case "right", "l":
		m.cursorStep++
		m.refreshState()
	case "+", "=":
		if m.board.NumQubits < m.engine.MaxQubits() {
			m.board.Resize(m.board.NumQubits + 1)
			m.sync()
		}
	case "-":
		if m.board.NumQubits > 1 {
			m.board.Resize(m.board.NumQubits - 1)
			m.cursorQubit = min(m.cursorQubit, m.board.NumQubits-1)
			m.sync()
		}
	case "i":
		m.board.ToggleInitial(m.cursorQubit)
		m.sync()
	case "a":
		m.focus = focusMenu
		m.menuCat = 0
		m.menuItem = 0
	case "backspace", "delete":
		m.board.RemoveAt(m.cursorStep, m.cursorQubit)
		m.sync()
	case "e":
		if m.board.GateAt(m.cursorStep, m.cursorQubit) != nil {
			m.editStep = m.cursorStep
			m.editQubit = m.cursorQubit
			m.editMenuIdx = 0
			m.focus = focusEditGate
		}
	}
	return m, nil
}

// save writes the whole board to savePath in saveFormat.
func (m *Model) save() {
	src, err := interchange.Export(m.board.Circuit(-1), m.saveFormat)
	if err == nil {
		err = os.WriteFile(m.savePath, []byte(src), 0644)
	}
	if err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		m.logger.Warn("save failed", "path", m.savePath, "error", err)
		return
	}
	m.statusMsg = "Saved " + m.savePath
	m.logger.Info("circuit saved", "path", m.savePath, "format", m.saveFormat, "gates", m.board.Len())
}

// editOption represents an option in the edit gate menu.
type editOption struct {
	label  string
	action string
}

// getEditOptions returns available edit options for the gate being edited.
func (m *Model) getEditOptions() []editOption {
	p := m.board.GateAt(m.editStep, m.editQubit)
	if p == nil {
		return nil
	}
	var opts []editOption

	if p.gate.Type.Rotation() {
		angle := "0"
		if p.gate.Angle != nil {
			angle = interchange.FormatAngle(*p.gate.Angle)
		}
		opts = append(opts, editOption{label: fmt.Sprintf("Angle: %s", angle), action: "edit_param"})
	}
	opts = append(opts, editOption{label: fmt.Sprintf("Target: q[%d]", p.gate.Target), action: "edit_target"})
	if p.gate.Control != nil {
		opts = append(opts, editOption{label: fmt.Sprintf("Swap control q[%d] and target", *p.gate.Control), action: "flip"})
	}
	opts = append(opts, editOption{label: "Delete gate", action: "delete"})
	return opts
}

func (m Model) updateEditGate(key string) (tea.Model, tea.Cmd) {
	p := m.board.GateAt(m.editStep, m.editQubit)
	if p == nil {
		m.focus = focusCircuit
		return m, nil
	}
	opts := m.getEditOptions()
	switch key {
	case "esc":
		m.focus = focusCircuit
	case "up", "k":
		if m.editMenuIdx > 0 {
			m.editMenuIdx--
		}
	case "down", "j":
		if m.editMenuIdx < len(opts)-1 {
			m.editMenuIdx++
		}
	case "enter":
		if m.editMenuIdx >= len(opts) {
			break
		}
		switch opts[m.editMenuIdx].action {
		case "edit_param":
			m.paramInput = ""
			m.focus = focusEditParam
		case "edit_target":
			m.targetQubit = p.gate.Target
			m.focus = focusEditTarget
		case "flip":
			g := p.gate
			control := *g.Control
			m.board.RemoveAt(m.editStep, g.Target)
			_ = m.board.Place(m.editStep, sim.CNOT(g.Target, control))
			m.sync()
		case "delete":
			m.board.RemoveAt(m.editStep, m.editQubit)
			m.focus = focusCircuit
			m.sync()
		}
	}
	return m, nil
}

// retarget moves the edited gate's target, restoring it when the new cell is taken.
func (m *Model) retarget(p *placedGate, target int) {
	orig := p.gate
	moved := orig
	moved.Target = target
	m.board.RemoveAt(m.editStep, orig.Target)
	if err := m.board.Place(m.editStep, moved); err != nil {
		_ = m.board.Place(m.editStep, orig)
		m.statusMsg = "Cannot move: " + err.Error()
		return
	}
	if m.editQubit == orig.Target {
		m.editQubit = target
	}
	m.sync()
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	leftWidth := m.width - qasmWidth - 4
	controlsHeight := 6
	topHeight := max(m.height-controlsHeight-2, 12)
	stateHeight := min(max(m.board.NumQubits+10, 12), topHeight/2)
	circuitHeight := max(topHeight-stateHeight-2, 6)

	circuitPanel := m.renderCircuitPanel(leftWidth, circuitHeight)
	statePanel := m.renderStatePanel(leftWidth, stateHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, topHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	left := lipgloss.JoinVertical(lipgloss.Left, circuitPanel, statePanel)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, left, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam, focusEditParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	case focusEditGate:
		frame = overlayAt(frame, m.renderEditGateMenu(), 2, 2)
	}

	return frame
}

// renderParamInput renders the angle input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Angle"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("θ = %s_", m.paramInput))
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}

// renderEditGateMenu renders the edit gate menu overlay.
func (m Model) renderEditGateMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Edit Gate"))
	sb.WriteString("\n\n")
	for i, opt := range m.getEditOptions() {
		if i == m.editMenuIdx {
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("▸ %s", opt.label)))
		} else {
			sb.WriteString(fmt.Sprintf("  %s", opt.label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}
