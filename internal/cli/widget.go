package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cabaliser"
	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/instruction"
	"github.com/hupe1980/cabaliser/internal/pool"
	"github.com/hupe1980/cabaliser/internal/resource"
	"github.com/hupe1980/cabaliser/tableau"
)

func parseKernel(name string) (tableau.Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vector":
		return tableau.KernelVector, nil
	case "scalar":
		return tableau.KernelScalar, nil
	default:
		return 0, fmt.Errorf("unknown kernel %q (want vector or scalar)", name)
	}
}

// addWidgetFlags registers the flags that override the widget section.
func addWidgetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("qubits", "n", 0, "logical qubits (0 infers from the stream)")
	f.Int("max-qubits", 0, "tableau size bound (0 sizes for the stream)")
	f.Int("workers", 0, "gate worker goroutines (0 applies inline)")
	f.Int64("memory-limit", 0, "tableau memory limit in bytes (0 is unlimited)")
	f.String("kernel", "", "gate kernel (vector|scalar)")
	f.Bool("block", false, "use the tile-cached decomposition")
	f.Bool("teleport-input", false, "teleport the initial qubits before the stream")
	f.Int("segment-max-qubits", 0, "compile in segments of this many rows (0 compiles in one widget)")
}

// addStorageFlags registers the flags that override the storage and
// snapshot sections.
func addStorageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("backend", "", "snapshot backend (memory|local|s3|minio)")
	f.String("path", "", "root directory of the local backend")
	f.String("compression", "", "snapshot compression (none|lz4|zstd)")
	f.String("codec", "", "snapshot graph codec")
}

// applyOverrides copies every changed flag into cfg and revalidates it.
func applyOverrides(cmd *cobra.Command, cfg *Config) error {
	f := cmd.Flags()
	overrideInt := func(name string, dst *int) {
		if f.Changed(name) {
			*dst, _ = f.GetInt(name)
		}
	}
	overrideInt64 := func(name string, dst *int64) {
		if f.Changed(name) {
			*dst, _ = f.GetInt64(name)
		}
	}
	overrideString := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	overrideBool := func(name string, dst *bool) {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}

	overrideInt("qubits", &cfg.Widget.Qubits)
	overrideInt("max-qubits", &cfg.Widget.MaxQubits)
	overrideInt("workers", &cfg.Widget.Workers)
	overrideInt64("memory-limit", &cfg.Widget.MemoryLimit)
	overrideString("kernel", &cfg.Widget.Kernel)
	overrideBool("block", &cfg.Widget.Block)
	overrideBool("teleport-input", &cfg.Widget.TeleportInput)
	overrideInt("segment-max-qubits", &cfg.Widget.SegmentMaxQubits)

	overrideString("backend", &cfg.Storage.Backend)
	overrideString("path", &cfg.Storage.Path)
	overrideString("compression", &cfg.Snapshot.Compression)
	overrideString("codec", &cfg.Snapshot.Codec)

	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return nil
}

// sizeFor returns the initial and maximum qubit counts for ins. Zero
// settings are inferred: qubits from the highest addressed qubit, the bound
// from one row per rotation plus the teleported inputs.
func sizeFor(w WidgetConfig, ins []instruction.Instruction) (int, int) {
	qubits := w.Qubits
	if qubits == 0 {
		for _, in := range ins {
			switch in.Op.Type() {
			case instruction.TypeTwoQubit:
				qubits = max(qubits, int(in.A)+1, int(in.B)+1)
			case instruction.TypeLocal, instruction.TypeRZ:
				qubits = max(qubits, int(in.A)+1)
			}
		}
		qubits = max(qubits, 1)
	}

	maxQubits := w.MaxQubits
	if maxQubits == 0 {
		maxQubits = qubits
		if w.TeleportInput {
			maxQubits += qubits
		}
		for _, in := range ins {
			if in.Op.Type() == instruction.TypeRZ {
				maxQubits++
			}
		}
	}
	return qubits, maxQubits
}

// compiler builds widgets that share one pool and one controller.
type compiler struct {
	cfg    *Config
	rc     *resource.Controller
	pool   *pool.Pool
	logger *cabaliser.Logger
	stats  *cabaliser.BasicMetricsCollector
}

func newCompiler(cfg *Config, logger *cabaliser.Logger) *compiler {
	c := &compiler{
		cfg:    cfg,
		rc:     newController(cfg),
		logger: logger,
		stats:  &cabaliser.BasicMetricsCollector{},
	}
	if cfg.Widget.Workers > 0 {
		c.pool = pool.New(cfg.Widget.Workers)
	}
	return c
}

func (c *compiler) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *compiler) options() []cabaliser.Option {
	kernel, _ := parseKernel(c.cfg.Widget.Kernel)
	opts := []cabaliser.Option{
		cabaliser.WithKernel(kernel),
		cabaliser.WithLogger(c.logger),
		cabaliser.WithMetricsCollector(c.stats),
		cabaliser.WithResourceController(c.rc),
	}
	if c.pool != nil {
		opts = append(opts, cabaliser.WithPool(c.pool))
	}
	if c.cfg.Widget.Block {
		opts = append(opts, cabaliser.WithBlockDecomposition())
	}
	if c.cfg.Widget.TeleportInput {
		opts = append(opts, cabaliser.WithTeleportInput())
	}
	return opts
}

// compile runs ins through a fresh widget and returns the decomposed graph.
func (c *compiler) compile(ctx context.Context, ins []instruction.Instruction) (*graph.Graph, error) {
	qubits, maxQubits := sizeFor(c.cfg.Widget, ins)
	return c.compileSource(ctx, qubits, maxQubits, instruction.NewSliceSource(ins))
}

func (c *compiler) compileSource(ctx context.Context, qubits, maxQubits int, src instruction.Source) (*graph.Graph, error) {
	w, err := cabaliser.New(qubits, maxQubits, c.options()...)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	if err := w.ApplySource(ctx, src); err != nil {
		return nil, err
	}
	if err := w.DecomposeContext(ctx); err != nil {
		return nil, err
	}
	return w.Graph()
}

// compileSegments runs ins through a widget sequence and returns one graph
// per segment.
func (c *compiler) compileSegments(ctx context.Context, ins []instruction.Instruction) ([]*graph.Graph, error) {
	qubits, _ := sizeFor(c.cfg.Widget, ins)
	s, err := cabaliser.NewSequence(qubits, c.cfg.Widget.SegmentMaxQubits, c.options()...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Compile(ctx, instruction.NewSliceSource(ins))
}
