package interchange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qtermsim/sim"
)

var (
	cirqRangeRegex = regexp.MustCompile(`(?:LineQubit\.range|range)\((\d+)\)`)
	cirqGateRegex  = regexp.MustCompile(`cirq\.(\w+)(?:\(\s*(` + anglePattern + `)\s*\))?\(\s*\w+\[(\d+)\](?:\s*,\s*\w+\[(\d+)\])?\s*\)`)
	cirqInitRegex  = regexp.MustCompile(`^#\s*init\s+\w+\[(\d+)\]\s*=\s*1$`)
)

// ExportCirq writes c as a Python module that builds the circuit with Cirq.
// Angles use math.pi so the pi notation of FormatAngle stays valid Python.
func ExportCirq(c sim.Circuit) string {
	var sb strings.Builder
	sb.WriteString("import cirq\n")
	sb.WriteString("from math import pi\n\n")
	sb.WriteString("\ndef create_circuit():\n")
	fmt.Fprintf(&sb, "    q = cirq.LineQubit.range(%d)\n", c.NumQubits)
	for _, qb := range sortedInitial(c) {
		fmt.Fprintf(&sb, "    # init q[%d] = 1\n", qb)
	}
	sb.WriteString("    circuit = cirq.Circuit()\n")

	for _, g := range c.Gates {
		switch {
		case g.Type == sim.GateCNOT && g.Control != nil:
			fmt.Fprintf(&sb, "    circuit.append(cirq.CNOT(q[%d], q[%d]))\n", *g.Control, g.Target)
		case g.Type.Rotation():
			fmt.Fprintf(&sb, "    circuit.append(cirq.%s(%s)(q[%d]))\n", strings.ToLower(string(g.Type)), FormatAngle(angleOf(g)), g.Target)
		default:
			fmt.Fprintf(&sb, "    circuit.append(cirq.%s(q[%d]))\n", g.Type, g.Target)
		}
	}

	sb.WriteString("    return circuit\n\n\n")
	sb.WriteString("if __name__ == \"__main__\":\n")
	sb.WriteString("    print(create_circuit())\n")
	return sb.String()
}

// ImportCirq scans Python source for cirq gate applications on indexed qubits.
// The register width comes from the first range(n) call (default 2).
func ImportCirq(src string) (sim.Circuit, error) {
	c := sim.Circuit{NumQubits: defaultImportQubits}
	if m := cirqRangeRegex.FindStringSubmatch(src); m != nil {
		c.NumQubits, _ = strconv.Atoi(m[1])
	}

	for n, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if m := cirqInitRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[1])
			setInitial(&c, q)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, m := range cirqGateRegex.FindAllStringSubmatch(line, -1) {
			t, ok := gateType(m[1])
			if !ok {
				continue
			}
			first, _ := strconv.Atoi(m[3])
			switch {
			case t == sim.GateCNOT:
				if m[4] == "" {
					continue
				}
				target, _ := strconv.Atoi(m[4])
				c.Append(sim.CNOT(first, target))
			case t.Rotation():
				theta := 0.0
				if m[2] != "" {
					var err error
					if theta, err = ParseAngle(m[2]); err != nil {
						return sim.Circuit{}, fmt.Errorf("cirq line %d: %w", n+1, err)
					}
				}
				c.Append(sim.Gate{Type: t, Target: first, Angle: &theta})
			default:
				c.Append(sim.Gate{Type: t, Target: first})
			}
		}
	}
	return c, nil
}
