package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cabaliser/instruction"
)

// GenerateResult describes a generated stream.
type GenerateResult struct {
	Output       string `json:"output"`
	Instructions int    `json:"instructions"`
	Qubits       int    `json:"qubits"`
	MaxQubits    int    `json:"max_qubits"`
	Seed         uint64 `json:"seed"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output string
		count  int
		seed   uint64
		local  int
		two    int
		rz     int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a seeded random instruction stream",
		Long: `Write a random binary instruction stream. RZ instructions stop once the
tableau bound is spent, so the stream always compiles with the same
--qubits and --max-qubits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rootOpts.Config
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)

			qubits := cfg.Widget.Qubits
			if qubits == 0 {
				qubits = 8
			}
			maxQubits := cfg.Widget.MaxQubits
			if maxQubits == 0 {
				maxQubits = 4 * qubits
			}

			gen, err := instruction.NewGenerator(instruction.GeneratorConfig{
				Qubits:         qubits,
				MaxQubits:      maxQubits,
				TeleportInput:  cfg.Widget.TeleportInput,
				LocalWeight:    local,
				TwoQubitWeight: two,
				RZWeight:       rz,
				Seed:           seed,
			})
			if err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "invalid flags", err))
			}
			ins := gen.Generate(count)

			if err := writeStream(cmd, output, ins); err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "write stream", err))
			}
			if output == "-" {
				return nil
			}

			res := GenerateResult{
				Output:       output,
				Instructions: len(ins),
				Qubits:       qubits,
				MaxQubits:    maxQubits,
				Seed:         seed,
			}
			return out.Success(res, func(w io.Writer) {
				fmt.Fprintf(w, "wrote %d instructions to %s (qubits %d, max %d, seed %d)\n",
					res.Instructions, res.Output, res.Qubits, res.MaxQubits, res.Seed)
			})
		},
	}

	addWidgetFlags(cmd)
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "-", `output file ("-" is stdout)`)
	f.IntVar(&count, "count", 1000, "number of instructions")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&local, "local-weight", 0, "relative weight of local Cliffords")
	f.IntVar(&two, "two-qubit-weight", 0, "relative weight of CNOT and CZ")
	f.IntVar(&rz, "rz-weight", 0, "relative weight of RZ")

	return cmd
}

func writeStream(cmd *cobra.Command, path string, ins []instruction.Instruction) error {
	if path == "-" {
		return instruction.Encode(cmd.OutOrStdout(), ins)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := instruction.Encode(f, ins); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
