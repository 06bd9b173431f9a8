package interchange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qtermsim/sim"
)

// Pre-compiled regexps for QASM parsing.
var (
	qasmQregRegex        = regexp.MustCompile(`qreg\s+\w+\[(\d+)\]`)
	qasmSingleRegex      = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\]\s*;?$`)
	qasmSingleParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+\w+\[(\d+)\]\s*;?$`)
	qasmTwoQubitRegex    = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\]\s*,\s*\w+\[(\d+)\]\s*;?$`)
	qasmInitRegex        = regexp.MustCompile(`^//\s*init\s+\w+\[(\d+)\]\s*=\s*1$`)
)

// defaultImportQubits is the register width assumed when a source never declares one.
const defaultImportQubits = 2

// ExportQASM writes c as OpenQASM 2.0. Qubits starting in |1> are recorded as
// "// init q[i] = 1" comments, which ImportQASM reads back.
func ExportQASM(c sim.Circuit) string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n", c.NumQubits)
	for _, q := range sortedInitial(c) {
		fmt.Fprintf(&sb, "// init q[%d] = 1\n", q)
	}
	sb.WriteString("\n")

	for _, g := range c.Gates {
		sym := qasmSymbol(g.Type)
		switch {
		case g.Type == sim.GateCNOT && g.Control != nil:
			fmt.Fprintf(&sb, "%s q[%d], q[%d];\n", sym, *g.Control, g.Target)
		case g.Angle != nil:
			fmt.Fprintf(&sb, "%s(%s) q[%d];\n", sym, FormatAngle(*g.Angle), g.Target)
		default:
			fmt.Fprintf(&sb, "%s q[%d];\n", sym, g.Target)
		}
	}
	return sb.String()
}

func qasmSymbol(t sim.GateType) string {
	if t == sim.GateCNOT {
		return "cx"
	}
	return strings.ToLower(string(t))
}

// ImportQASM reads an OpenQASM 2.0 program. Only h, x, y, z, cx (or cnot), rx, ry
// and rz are kept; measurements, barriers and other gates are dropped. A
// rotation written without an angle gets angle 0.
func ImportQASM(src string) (sim.Circuit, error) {
	c := sim.Circuit{NumQubits: defaultImportQubits}

	for n, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if m := qasmInitRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[1])
			setInitial(&c, q)
			continue
		}
		if strings.HasPrefix(line, "//") {
			continue
		}
		if m := qasmQregRegex.FindStringSubmatch(line); m != nil {
			c.NumQubits, _ = strconv.Atoi(m[1])
			continue
		}

		if m := qasmTwoQubitRegex.FindStringSubmatch(line); m != nil {
			t, ok := gateType(m[1])
			if !ok || t != sim.GateCNOT {
				continue
			}
			control, _ := strconv.Atoi(m[2])
			target, _ := strconv.Atoi(m[3])
			c.Append(sim.CNOT(control, target))
			continue
		}

		if m := qasmSingleParamRegex.FindStringSubmatch(line); m != nil {
			t, ok := gateType(m[1])
			if !ok || !t.Rotation() {
				continue
			}
			theta, err := ParseAngle(m[2])
			if err != nil {
				return sim.Circuit{}, fmt.Errorf("qasm line %d: %w", n+1, err)
			}
			target, _ := strconv.Atoi(m[3])
			c.Append(sim.Gate{Type: t, Target: target, Angle: &theta})
			continue
		}

		if m := qasmSingleRegex.FindStringSubmatch(line); m != nil {
			t, ok := gateType(m[1])
			if !ok || t == sim.GateCNOT {
				continue
			}
			target, _ := strconv.Atoi(m[2])
			g := sim.Gate{Type: t, Target: target}
			if t.Rotation() {
				zero := 0.0
				g.Angle = &zero
			}
			c.Append(g)
		}
	}
	return c, nil
}
