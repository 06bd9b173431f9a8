package interchange

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsim/sim"
)

func sampleCircuit() sim.Circuit {
	c := sim.Circuit{NumQubits: 3, InitialStates: map[int]string{2: "1"}}
	c.Append(
		sim.H(0),
		sim.CNOT(0, 1),
		sim.RX(2, math.Pi/2),
		sim.RY(1, 0.3),
		sim.RZ(0, -math.Pi/4),
		sim.Y(2),
		sim.Z(1),
		sim.CNOT(2, 0),
	)
	return c
}

func assertSameCircuit(t *testing.T, want, got sim.Circuit) {
	t.Helper()
	require.Equal(t, want.NumQubits, got.NumQubits)
	require.Len(t, got.Gates, len(want.Gates))
	for i := range want.Gates {
		w, g := want.Gates[i], got.Gates[i]
		assert.Equal(t, w.Type, g.Type, "gate %d", i)
		assert.Equal(t, w.Target, g.Target, "gate %d", i)
		assert.Equal(t, w.Control, g.Control, "gate %d", i)
		if w.Angle != nil {
			require.NotNil(t, g.Angle, "gate %d", i)
			assert.InDelta(t, *w.Angle, *g.Angle, 1e-10, "gate %d", i)
		}
	}
	assert.Equal(t, want.InitialIndex(), got.InitialIndex())
}

func TestRoundTrips(t *testing.T) {
	for _, f := range []Format{FormatQASM, FormatCirq, FormatQuil, FormatJSON, FormatEnglish} {
		t.Run(string(f), func(t *testing.T) {
			c := sampleCircuit()
			src, err := Export(c, f)
			require.NoError(t, err)

			got, err := Import(src, f)
			require.NoError(t, err)
			assertSameCircuit(t, c, got)

			// Detection finds every text format on its own.
			detected, err := Import(src, FormatUnknown)
			require.NoError(t, err)
			assertSameCircuit(t, c, detected)
		})
	}
}

func TestRoundTripSimulatesIdentically(t *testing.T) {
	engine := sim.NewEngine()
	want, err := engine.Simulate(sampleCircuit())
	require.NoError(t, err)

	for _, f := range Formats {
		src, err := Export(sampleCircuit(), f)
		require.NoError(t, err)
		c, err := Import(src, f)
		require.NoError(t, err)
		got, err := engine.Simulate(c)
		require.NoError(t, err)
		for label, p := range want.Probabilities {
			assert.InDelta(t, p, got.Probabilities[label], 1e-9, "%s %s", f, label)
		}
	}
}

func TestExportCirq(t *testing.T) {
	c := sim.Circuit{NumQubits: 2}
	c.Append(sim.H(0), sim.CNOT(0, 1), sim.RZ(1, math.Pi))

	src := ExportCirq(c)
	for _, want := range []string{
		"import cirq",
		"q = cirq.LineQubit.range(2)",
		"circuit.append(cirq.H(q[0]))",
		"circuit.append(cirq.CNOT(q[0], q[1]))",
		"circuit.append(cirq.rz(pi)(q[1]))",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("expected %q in Cirq source, got:\n%s", want, src)
		}
	}
}

func TestImportCirqSkipsUnsupported(t *testing.T) {
	src := `import cirq
qubits = cirq.LineQubit.range(4)
circuit = cirq.Circuit(
    cirq.H(qubits[0]),
    cirq.T(qubits[1]),
    cirq.SWAP(qubits[0], qubits[1]),
    cirq.measure(qubits[0], key='m'),
)
circuit.append(cirq.X(qubits[3]))  # trailing comment
# cirq.Z(qubits[2])
`
	c, err := ImportCirq(src)
	require.NoError(t, err)
	assert.Equal(t, 4, c.NumQubits)
	assert.Equal(t, []sim.Gate{sim.H(0), sim.X(3)}, c.Gates)
}

func TestImportCirqBareDecimalAngle(t *testing.T) {
	src := "q = cirq.LineQubit.range(1)\ncircuit.append(cirq.rx(1.)(q[0]))\n"
	c, err := ImportCirq(src)
	require.NoError(t, err)
	require.Len(t, c.Gates, 1)
	assert.Equal(t, sim.GateRX, c.Gates[0].Type)
	assert.InDelta(t, 1.0, *c.Gates[0].Angle, 1e-12)
}

func TestExportQuil(t *testing.T) {
	c := sim.Circuit{NumQubits: 2}
	c.Append(sim.H(0), sim.CNOT(0, 1), sim.RX(1, math.Pi/2))

	want := "DECLARE ro BIT[2]\n\nH 0\nCNOT 0 1\nRX(pi/2) 1\n"
	assert.Equal(t, want, ExportQuil(c))
}

func TestImportQuil(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		qubits int
		gates  []sim.Gate
	}{
		{
			name:   "declared width",
			src:    "DECLARE ro BIT[4]\nH 0\nCNOT 0 1\nMEASURE 0 ro[0]",
			qubits: 4,
			gates:  []sim.Gate{sim.H(0), sim.CNOT(0, 1)},
		},
		{
			name:   "width from highest qubit",
			src:    "X 2\nRY(-pi/2) 1",
			qubits: 3,
			gates:  []sim.Gate{sim.X(2), sim.RY(1, -math.Pi/2)},
		},
		{
			name:   "bare decimal angles",
			src:    "RX(1.) 1\nRY(.5) 0",
			qubits: 2,
			gates:  []sim.Gate{sim.RX(1, 1), sim.RY(0, 0.5)},
		},
		{
			name:   "empty program",
			src:    "",
			qubits: 2,
		},
		{
			name:   "unsupported gates",
			src:    "DECLARE ro BIT[1]\nT 0\nCZ 0 1\nH 0 1",
			qubits: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ImportQuil(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.qubits, c.NumQubits)
			require.Len(t, c.Gates, len(tt.gates))
			for i := range tt.gates {
				assert.Equal(t, tt.gates[i].Type, c.Gates[i].Type)
				assert.Equal(t, tt.gates[i].Target, c.Gates[i].Target)
				assert.Equal(t, tt.gates[i].Control, c.Gates[i].Control)
				if tt.gates[i].Angle != nil {
					assert.InDelta(t, *tt.gates[i].Angle, *c.Gates[i].Angle, 1e-10)
				}
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		qubits int
		gates  int
		err    error
	}{
		{"native", `{"numQubits":2,"gates":[{"type":"H","target":0}]}`, 2, 1, nil},
		{"english", `{"version":"1.0.0","qubits":3,"gates":[{"type":"CNOT","target":1,"control":0}]}`, 3, 1, nil},
		{"english zero width", `{"qubits":0,"gates":[]}`, 1, 0, nil},
		{"english missing width", `{"gates":[]}`, 1, 0, nil},
		{"no gates", `{"numQubits":2}`, 0, 0, ErrUnsupportedShape},
		{"null gates", `{"numQubits":2,"gates":null}`, 0, 0, ErrUnsupportedShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeJSON([]byte(tt.src))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.qubits, c.NumQubits)
			assert.Len(t, c.Gates, tt.gates)
		})
	}

	_, err := DecodeJSON([]byte(`{"gates":`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedShape))
}

func TestEncodeEnglish(t *testing.T) {
	b, err := EncodeEnglish(sim.Circuit{NumQubits: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0.0","qubits":2,"gates":[]}`, string(b))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		src  string
		want Format
	}{
		{"OPENQASM 2.0;\nh q[0];", FormatQASM},
		{"qreg q[2];", FormatQASM},
		{"import cirq", FormatCirq},
		{"q = GridQubit(0, 0)", FormatCirq},
		{"DECLARE ro BIT[1]\nH 0", FormatQuil},
		{"DEFGATE FOO:", FormatQuil},
		{`  {"numQubits": 1, "gates": []}`, FormatJSON},
		{"H 0", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.src); got != tt.want {
			t.Errorf("DetectFormat(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"qasm", FormatQASM, true},
		{"OpenQASM", FormatQASM, true},
		{" Cirq ", FormatCirq, true},
		{"quil", FormatQuil, true},
		{"json", FormatJSON, true},
		{"english", FormatEnglish, true},
		{"auto", FormatUnknown, true},
		{"", FormatUnknown, true},
		{"qiskit", FormatUnknown, false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q): err=%v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q): error %v does not wrap ErrUnknownFormat", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestImportUnknownFormat(t *testing.T) {
	_, err := Import("H 0", FormatUnknown)
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Export(sim.Circuit{NumQubits: 1}, "qiskit")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
