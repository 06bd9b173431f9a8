// Package interchange converts circuits to and from text formats: OpenQASM 2.0,
// Cirq Python source, Quil and JSON.
//
// Import is best effort. Lines that do not describe a supported gate are
// skipped, so exports from other tools load with whatever this simulator
// understands. Initial basis states travel as comments in the text formats.
package interchange

import (
	"errors"
	"fmt"
	"strings"

	"qtermsim/sim"
)

var (
	// ErrUnknownFormat is returned for a format name or source that cannot be identified.
	ErrUnknownFormat = errors.New("interchange: unknown format")
	// ErrBadAngle is returned when a rotation angle cannot be parsed.
	ErrBadAngle = errors.New("interchange: bad angle")
	// ErrUnsupportedShape is returned for JSON that is neither circuit shape.
	ErrUnsupportedShape = errors.New("interchange: unsupported circuit format")
)

// Format names a text representation.
type Format string

const (
	FormatQASM    Format = "qasm"
	FormatCirq    Format = "cirq"
	FormatQuil    Format = "quil"
	FormatJSON    Format = "json"
	FormatEnglish Format = "english"
	FormatUnknown Format = "unknown"
)

// Formats lists every format Export accepts.
var Formats = []Format{FormatQASM, FormatCirq, FormatQuil, FormatJSON, FormatEnglish}

// ParseFormat maps a user supplied name to a Format. "auto" and "" map to FormatUnknown,
// which Import resolves with DetectFormat.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", "auto":
		return FormatUnknown, nil
	case FormatQASM, FormatCirq, FormatQuil, FormatJSON, FormatEnglish:
		return f, nil
	case "openqasm":
		return FormatQASM, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DetectFormat guesses the format of src.
func DetectFormat(src string) Format {
	trimmed := strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return FormatJSON
	case strings.Contains(src, "OPENQASM") || strings.Contains(src, "qreg"):
		return FormatQASM
	case strings.Contains(src, "cirq") || strings.Contains(src, "GridQubit") || strings.Contains(src, "LineQubit"):
		return FormatCirq
	case strings.Contains(src, "DECLARE") || strings.Contains(src, "DEFGATE"):
		return FormatQuil
	}
	return FormatUnknown
}

// Import parses src in the given format, detecting it when format is FormatUnknown.
func Import(src string, format Format) (sim.Circuit, error) {
	if format == FormatUnknown || format == "" {
		format = DetectFormat(src)
	}
	var (
		c   sim.Circuit
		err error
	)
	switch format {
	case FormatQASM:
		c, err = ImportQASM(src)
	case FormatCirq:
		c, err = ImportCirq(src)
	case FormatQuil:
		c, err = ImportQuil(src)
	case FormatJSON, FormatEnglish:
		c, err = DecodeJSON([]byte(src))
	default:
		return sim.Circuit{}, fmt.Errorf("import circuit: %w", ErrUnknownFormat)
	}
	if err != nil {
		return sim.Circuit{}, fmt.Errorf("import circuit: %w", err)
	}
	return c, nil
}

// Export renders c in the given format.
func Export(c sim.Circuit, format Format) (string, error) {
	switch format {
	case FormatQASM:
		return ExportQASM(c), nil
	case FormatCirq:
		return ExportCirq(c), nil
	case FormatQuil:
		return ExportQuil(c), nil
	case FormatJSON:
		b, err := EncodeJSON(c)
		return string(b), err
	case FormatEnglish:
		b, err := EncodeEnglish(c)
		return string(b), err
	}
	return "", fmt.Errorf("export circuit: %w: %q", ErrUnknownFormat, format)
}

// gateType maps a format's gate mnemonic onto the simulator's names.
func gateType(name string) (sim.GateType, bool) {
	switch strings.ToUpper(name) {
	case "H":
		return sim.GateH, true
	case "X":
		return sim.GateX, true
	case "Y":
		return sim.GateY, true
	case "Z":
		return sim.GateZ, true
	case "CX", "CNOT":
		return sim.GateCNOT, true
	case "RX":
		return sim.GateRX, true
	case "RY":
		return sim.GateRY, true
	case "RZ":
		return sim.GateRZ, true
	}
	return "", false
}

// sortedInitial returns qubits initialised to |1>, ascending.
func sortedInitial(c sim.Circuit) []int {
	var qs []int
	for q := 0; q < c.NumQubits; q++ {
		if c.InitialStates[q] == "1" {
			qs = append(qs, q)
		}
	}
	return qs
}

func setInitial(c *sim.Circuit, q int) {
	if c.InitialStates == nil {
		c.InitialStates = make(map[int]string)
	}
	c.InitialStates[q] = "1"
}

func angleOf(g sim.Gate) float64 {
	if g.Angle == nil {
		return 0
	}
	return *g.Angle
}
