package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/snapshot"
)

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	ID          string          `json:"id"`
	Current     bool            `json:"current"`
	Version     uint16          `json:"version"`
	Compression string          `json:"compression"`
	Codec       string          `json:"codec"`
	RawSize     uint64          `json:"raw_size"`
	StoredSize  int64           `json:"stored_size"`
	Blocks      uint32          `json:"blocks"`
	Graph       *graph.Document `json:"graph,omitempty"`
}

func newSnapshotInfo(info snapshot.Info, current uuid.UUID) SnapshotInfo {
	return SnapshotInfo{
		ID:          info.ID.String(),
		Current:     info.ID == current,
		Version:     info.Header.Version,
		Compression: info.Header.Compression.String(),
		Codec:       info.Header.Codec,
		RawSize:     info.Header.RawSize,
		StoredSize:  info.StoredSize,
		Blocks:      info.Header.Blocks,
	}
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		list   bool
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [id]",
		Short: "Show, list or delete stored snapshots",
		Long: `Show a stored snapshot, by default the one CURRENT points at. --list
shows the headers of all snapshots; --delete removes the given snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if err := applyOverrides(cmd, cfg); err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)
			ctx := cmd.Context()

			store, err := openStore(ctx, cfg.Storage)
			if err != nil {
				return out.Failure(WrapExitError(ExitCommandError, "open store", err))
			}

			current, err := snapshot.Current(ctx, store)
			if err != nil {
				current = uuid.Nil
			}

			if list {
				ids, err := snapshot.List(ctx, store)
				if err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "list", err))
				}
				infos := make([]SnapshotInfo, 0, len(ids))
				for _, id := range ids {
					info, err := snapshot.Stat(ctx, store, id)
					if err != nil {
						return out.Failure(WrapExitError(ExitFailure, "stat", err))
					}
					infos = append(infos, newSnapshotInfo(info, current))
				}
				return out.Success(infos, func(w io.Writer) {
					for _, info := range infos {
						printInfo(w, info)
					}
				})
			}

			id := current
			if len(args) == 1 {
				if id, err = uuid.Parse(args[0]); err != nil {
					return out.Failure(WrapExitError(ExitCommandError, "invalid id", err))
				}
			}
			if id == uuid.Nil {
				return out.Failure(WrapExitError(ExitCommandError, "inspect", errors.New("no current snapshot")))
			}

			if remove {
				if err := snapshot.Delete(ctx, store, id); err != nil {
					return out.Failure(WrapExitError(ExitFailure, "delete", err))
				}
				return out.Success(map[string]string{"deleted": id.String()}, func(w io.Writer) {
					fmt.Fprintf(w, "deleted %s\n", id)
				})
			}

			stat, err := snapshot.Stat(ctx, store, id)
			if err != nil {
				return out.Failure(WrapExitError(ExitFailure, "stat", err))
			}
			g, err := snapshot.Load(ctx, store, id, snapshot.WithResourceController(newController(cfg)))
			if err != nil {
				return out.Failure(WrapExitError(ExitFailure, "load", err))
			}
			info := newSnapshotInfo(stat, current)
			doc := g.Document()
			info.Graph = &doc

			return out.Success(info, func(w io.Writer) {
				printInfo(w, info)
				for _, n := range doc.Nodes {
					fmt.Fprintf(w, "  %d %s", n.ID, n.Clifford)
					if n.Tag != 0 {
						fmt.Fprintf(w, " tag=%d", n.Tag)
					}
					fmt.Fprintf(w, " %v\n", n.Neighbors)
				}
				fmt.Fprintf(w, "  outputs %v\n", doc.OutputNodes)
				if len(doc.InputNodes) > 0 {
					fmt.Fprintf(w, "  inputs %v\n", doc.InputNodes)
				}
			})
		},
	}

	addStorageFlags(cmd)
	cmd.Flags().BoolVar(&list, "list", false, "list all snapshots")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the snapshot")
	cmd.MarkFlagsMutuallyExclusive("list", "delete")

	return cmd
}

func printInfo(w io.Writer, info SnapshotInfo) {
	marker := " "
	if info.Current {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s v%d %s/%s %d blocks %d -> %d bytes\n",
		marker, info.ID, info.Version, info.Compression, info.Codec, info.Blocks, info.RawSize, info.StoredSize)
}
