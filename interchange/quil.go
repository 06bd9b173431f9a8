package interchange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qtermsim/sim"
)

var (
	quilDeclareRegex = regexp.MustCompile(`^DECLARE\s+\w+\s+BIT\[(\d+)\]$`)
	quilGateRegex    = regexp.MustCompile(`^([A-Za-z]+)(?:\(\s*(` + anglePattern + `)\s*\))?((?:\s+\d+)+)$`)
	quilInitRegex    = regexp.MustCompile(`^#\s*init\s+\w+\[(\d+)\]\s*=\s*1$`)
)

// ExportQuil writes c as a Quil program with one readout bit per qubit.
func ExportQuil(c sim.Circuit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DECLARE ro BIT[%d]\n", c.NumQubits)
	for _, q := range sortedInitial(c) {
		fmt.Fprintf(&sb, "# init q[%d] = 1\n", q)
	}
	sb.WriteString("\n")

	for _, g := range c.Gates {
		switch {
		case g.Type == sim.GateCNOT && g.Control != nil:
			fmt.Fprintf(&sb, "CNOT %d %d\n", *g.Control, g.Target)
		case g.Type.Rotation():
			fmt.Fprintf(&sb, "%s(%s) %d\n", g.Type, FormatAngle(angleOf(g)), g.Target)
		default:
			fmt.Fprintf(&sb, "%s %d\n", strings.ToUpper(string(g.Type)), g.Target)
		}
	}
	return sb.String()
}

// ImportQuil reads a Quil program. The width is taken from a DECLARE of a
// bit register or the highest qubit used, whichever is larger (default 2).
// MEASURE, DEFGATE bodies and other instructions are skipped.
func ImportQuil(src string) (sim.Circuit, error) {
	c := sim.Circuit{}
	declared, highest := 0, -1

	for n, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := quilInitRegex.FindStringSubmatch(line); m != nil {
			q, _ := strconv.Atoi(m[1])
			setInitial(&c, q)
			highest = max(highest, q)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if m := quilDeclareRegex.FindStringSubmatch(line); m != nil {
			if d, _ := strconv.Atoi(m[1]); d > declared {
				declared = d
			}
			continue
		}

		m := quilGateRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		t, ok := gateType(m[1])
		if !ok {
			continue
		}
		var qubits []int
		for _, f := range strings.Fields(m[3]) {
			q, _ := strconv.Atoi(f)
			qubits = append(qubits, q)
			highest = max(highest, q)
		}

		switch {
		case t == sim.GateCNOT:
			if len(qubits) != 2 {
				continue
			}
			c.Append(sim.CNOT(qubits[0], qubits[1]))
		case len(qubits) != 1:
			continue
		case t.Rotation():
			theta := 0.0
			if m[2] != "" {
				var err error
				if theta, err = ParseAngle(m[2]); err != nil {
					return sim.Circuit{}, fmt.Errorf("quil line %d: %w", n+1, err)
				}
			}
			c.Append(sim.Gate{Type: t, Target: qubits[0], Angle: &theta})
		default:
			c.Append(sim.Gate{Type: t, Target: qubits[0]})
		}
	}

	c.NumQubits = max(declared, highest+1)
	if c.NumQubits == 0 {
		c.NumQubits = defaultImportQubits
	}
	return c, nil
}
