package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"qtermsim/interchange"
	"qtermsim/sim"
)

// runEditor opens the interactive editor on FILE, a preset, or an empty board.
func runEditor(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the editor, so logs only go to log.file.
	a, err := newApp(cmd.ErrOrStderr(), io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	board, err := editorBoard(args, a.engine.MaxQubits())
	if err != nil {
		return err
	}
	if err := a.engine.Validate(board.Circuit(-1)); err != nil {
		return err
	}

	m := initialModel(a.engine, a.logger, board)
	if len(args) == 1 {
		m.savePath = args[0]
		if f := interchange.DetectFormat(readIfExists(args[0])); f != interchange.FormatUnknown {
			m.saveFormat = f
		}
	}
	if cmd.Flags().Changed("output") {
		m.savePath = savePath
	}

	a.logger.Info("editor started", "qubits", board.NumQubits, "gates", board.Len(), "save_path", m.savePath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// editorBoard builds the starting board. A FILE argument takes precedence over --preset.
func editorBoard(args []string, maxQubits int) (*Board, error) {
	switch {
	case len(args) == 1:
		c, err := loadCircuit(args[0], "auto")
		if err != nil {
			return nil, err
		}
		return BoardFromCircuit(c), nil
	case presetID != "":
		c, ok := sim.Preset(presetID)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", presetID)
		}
		return BoardFromCircuit(c), nil
	}
	if editQubits < 1 || editQubits > maxQubits {
		return nil, fmt.Errorf("--qubits must be between 1 and %d", maxQubits)
	}
	return NewBoard(editQubits), nil
}

// loadCircuit reads path and imports it in the named format, detecting it for "auto".
func loadCircuit(path, format string) (sim.Circuit, error) {
	f, err := interchange.ParseFormat(format)
	if err != nil {
		return sim.Circuit{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Circuit{}, fmt.Errorf("read circuit: %w", err)
	}
	c, err := interchange.Import(string(data), f)
	if err != nil {
		return sim.Circuit{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// readIfExists returns the file's contents, or "" when it cannot be read.
func readIfExists(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
