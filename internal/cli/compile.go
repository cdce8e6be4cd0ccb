package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/snapshot"
)

// CompileResult is the result of compiling one stream, or one segment of a
// segmented stream.
type CompileResult struct {
	Stream string `json:"stream"`
	// Segment is the 1-based segment index, 0 when the stream was not
	// segmented.
	Segment  int             `json:"segment,omitempty"`
	Snapshot string          `json:"snapshot,omitempty"`
	Graph    *graph.Document `json:"graph"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "compile <stream>...",
		Short: "Compile binary instruction streams into graph states",
		Long: `Compile one or more binary instruction streams. Each stream gets its own
widget; streams compile concurrently. Use "-" to read a stream from stdin.

With --segment-max-qubits each stream is cut into segments that fit a widget
of that size, and every segment yields its own graph.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)

			streams := make([][]instruction.Instruction, len(args))
			for i, path := range args {
				ins, err := readStream(cmd, path)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "read stream", err))
				}
				streams[i] = ins
			}

			c := newCompiler(cfg, rootOpts.Logger)
			defer c.Close()

			ctx := cmd.Context()
			segmented := cfg.Widget.SegmentMaxQubits > 0
			perStream := make([][]*graph.Graph, len(streams))
			g, gctx := errgroup.WithContext(ctx)
			for i, ins := range streams {
				g.Go(func() error {
					var res []*graph.Graph
					var err error
					if segmented {
						res, err = c.compileSegments(gctx, ins)
					} else {
						var one *graph.Graph
						one, err = c.compile(gctx, ins)
						res = []*graph.Graph{one}
					}
					if err != nil {
						return fmt.Errorf("%s: %w", args[i], err)
					}
					perStream[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return out.Failure(WrapExitError(ExitFailure, "compile", err))
			}

			var graphs []*graph.Graph
			results := make([]CompileResult, 0, len(streams))
			for i, gs := range perStream {
				for k, gr := range gs {
					doc := gr.Document()
					r := CompileResult{Stream: args[i], Graph: &doc}
					if segmented {
						r.Segment = k + 1
					}
					graphs = append(graphs, gr)
					results = append(results, r)
				}
			}

			var ids []uuid.UUID
			if save {
				store, err := openStore(ctx, cfg.Storage)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "open store", err))
				}
				opts := append(cfg.snapshotOptions(), snapshot.WithResourceController(c.rc))
				ids, err = snapshot.SaveAll(ctx, store, graphs, opts...)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "save", err))
				}
			}

			for i, id := range ids {
				results[i].Snapshot = id.String()
			}

			return out.Success(results, func(w io.Writer) {
				for _, r := range results {
					name := r.Stream
					if r.Segment > 0 {
						name = fmt.Sprintf("%s#%d", r.Stream, r.Segment)
					}
					fmt.Fprintf(w, "%s: %d qubits, %d nodes, %d edges, %d rotations",
						name, r.Graph.NQubits, r.Graph.StateNodes, r.Graph.Edges, countTagged(r.Graph))
					if r.Snapshot != "" {
						fmt.Fprintf(w, " -> %s", r.Snapshot)
					}
					fmt.Fprintln(w)
				}
			})
		},
	}

	addWidgetFlags(cmd)
	addStorageFlags(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the graphs as snapshots")

	return cmd
}

func readStream(cmd *cobra.Command, path string) ([]instruction.Instruction, error) {
	if path == "-" {
		return instruction.Decode(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return instruction.Decode(f)
}

func countTagged(d *graph.Document) int {
	n := 0
	for _, node := range d.Nodes {
		if node.Tag != 0 {
			n++
		}
	}
	return n
}
