package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"qtermsim/interchange"
	"qtermsim/sim"
)

// runSimulation simulates FILE and prints the final state.
func runSimulation(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	c, err := loadCircuit(args[0], inputFormat)
	if err != nil {
		return err
	}
	res, err := a.engine.SimulateContext(cmd.Context(), c)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), res)
}

// runExport converts FILE to the --to format on stdout.
func runExport(cmd *cobra.Command, args []string) error {
	to, err := interchange.ParseFormat(exportTo)
	if err != nil {
		return err
	}
	if to == interchange.FormatUnknown {
		return fmt.Errorf("--to must name a format, one of %v", interchange.Formats)
	}
	c, err := loadCircuit(args[0], inputFormat)
	if err != nil {
		return err
	}
	src, err := interchange.Export(c, to)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), strings.TrimRight(src, "\n")+"\n")
	return err
}

// runPresets lists presets, prints one as QASM, or simulates it with --run.
func runPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, id := range sim.PresetIDs() {
			c, _ := sim.Preset(id)
			fmt.Fprintf(out, "%-12s %d qubits, %d gates\n", id, c.NumQubits, len(c.Gates))
		}
		return nil
	}

	c, ok := sim.Preset(args[0])
	if !ok {
		return fmt.Errorf("unknown preset %q", args[0])
	}
	if !runPreset {
		_, err := io.WriteString(out, interchange.ExportQASM(c))
		return err
	}

	a, err := newApp(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	res, err := a.engine.SimulateContext(cmd.Context(), c)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

// printResult writes res as JSON with --json, otherwise as a probability table.
func printResult(w io.Writer, res *sim.ExecutionResult) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tPROBABILITY\tAMPLITUDE\tPHASE")
	for _, e := range res.Entries(minProb) {
		fmt.Fprintf(tw, "|%s>\t%.6f\t%.4f%+.4fi\t%+.4f\n",
			e.Label, e.Probability, real(e.Amplitude), imag(e.Amplitude), e.Phase)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		fmt.Fprintln(w, "warning:", warning)
	}
	return nil
}
