package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/instruction/sqlite"
	"github.com/hupe1980/cabaliser/snapshot"
)

// IngestResult is the result of compiling a circuit database.
type IngestResult struct {
	Database string `json:"database"`
	Loaded   int    `json:"loaded,omitempty"`
	Layers   int    `json:"layers"`
	CompileResult
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		db        string
		load      string
		layerSize int
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Compile a layered circuit stored in SQLite",
		Long: `Compile the circuit stored in a SQLite database layer by layer. With
--load, a binary stream is first appended to the database as new layers of
--layer-size instructions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rootOpts.Config
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			src, err := sqlite.Open(db)
			if err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "open database", err))
			}
			defer src.Close()

			res := IngestResult{Database: db}
			if load != "" {
				ins, err := readStream(cmd, load)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "read stream", err))
				}
				first, err := src.Layers(ctx)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "count layers", err))
				}
				for i, layer := range instruction.Chunk(ins, layerSize) {
					if err := src.Insert(ctx, first+i, layer); err != nil {
						return out.Failure(WrapExitError(ExitCommandError, "load stream", err))
					}
				}
				res.Stream = load
				res.Loaded = len(ins)
			}

			if res.Layers, err = src.Layers(ctx); err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "count layers", err))
			}

			// Sizing needs the whole circuit before the widget exists.
			all, err := instruction.Drain(ctx, src)
			if err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "read circuit", err))
			}
			src.Rewind()
			qubits, maxQubits := sizeFor(cfg.Widget, all)

			c := newCompiler(cfg, rootOpts.Logger)
			defer c.Close()

			g, err := c.compileSource(ctx, qubits, maxQubits, src)
			if err != nil {
				return out.Failure(WrapExitError(ExitFailure, "compile", err))
			}

			if save {
				store, err := openStore(ctx, cfg.Storage)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "open store", err))
				}
				opts := append(cfg.snapshotOptions(), snapshot.WithResourceController(c.rc))
				id, err := snapshot.Save(ctx, store, g, opts...)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "save", err))
				}
				res.Snapshot = id.String()
			}

			doc := g.Document()
			res.Graph = &doc

			return out.Success(res, func(w io.Writer) {
				if res.Loaded > 0 {
					fmt.Fprintf(w, "loaded %d instructions from %s\n", res.Loaded, res.Stream)
				}
				fmt.Fprintf(w, "%s: %d layers, %d qubits, %d nodes, %d edges, %d rotations",
					res.Database, res.Layers, doc.NQubits, doc.StateNodes, doc.Edges, countTagged(&doc))
				if res.Snapshot != "" {
					fmt.Fprintf(w, " -> %s", res.Snapshot)
				}
				fmt.Fprintln(w)
			})
		},
	}

	addWidgetFlags(cmd)
	addStorageFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&db, "db", "", "circuit database path (required)")
	f.StringVar(&load, "load", "", "binary stream to append before compiling")
	f.IntVar(&layerSize, "layer-size", 64, "instructions per loaded layer")
	f.BoolVar(&save, "save", false, "store the graph as a snapshot")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
