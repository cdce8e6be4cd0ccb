package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/cabaliser/blobstore"
	"github.com/hupe1980/cabaliser/codec"
	"github.com/hupe1980/cabaliser/graph"
	"github.com/hupe1980/cabaliser/internal/hash"
)

const (
	// Prefix is the blob name prefix of all snapshots.
	Prefix = "graphs/"
	// Extension is the blob name suffix of all snapshots.
	Extension = ".cgs"
)

// Name returns the blob name of snapshot id.
func Name(id uuid.UUID) string {
	return Prefix + id.String() + Extension
}

// ParseName extracts the snapshot ID from a blob name.
func ParseName(name string) (uuid.UUID, bool) {
	if !strings.HasPrefix(name, Prefix) || !strings.HasSuffix(name, Extension) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSuffix(strings.TrimPrefix(name, Prefix), Extension))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Info describes a stored snapshot without decoding its graph.
type Info struct {
	ID         uuid.UUID
	Header     Header
	StoredSize int64
}

// Encode serializes g into the snapshot format.
func Encode(g *graph.Graph, opts ...Option) ([]byte, error) {
	o := applyOptions(opts)
	return encode(g, &o)
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func encode(g *graph.Graph, o *options) ([]byte, error) {
	if g == nil {
		return nil, errors.New("snapshot: nil graph")
	}

	payload, err := g.Marshal(o.codec)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode graph: %w", err)
	}

	// Payload plus worst-case block section.
	res, err := o.rc.Reserve(int64(2 * len(payload)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer res.Release()

	var body bytes.Buffer
	bw := newBlockWriter(&body, o.compression, o.blockSize)
	if _, err := bw.Write(payload); err != nil {
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	h := Header{
		Version:     Version,
		Compression: o.compression,
		Codec:       o.codec.Name(),
		BlockSize:   uint32(bw.blockSize),
		RawSize:     uint64(len(payload)),
		Blocks:      bw.blocks,
		Checksum:    hash.CRC32C(body.Bytes()),
	}
	hdr, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(hdr)+body.Len())
	out = append(out, hdr...)
	return append(out, body.Bytes()...), nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*graph.Graph, Header, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, h, err
	}

	body := data[h.Size():]
	if sum := hash.CRC32C(body); sum != h.Checksum {
		return nil, h, fmt.Errorf("%w: checksum mismatch (got %08x, want %08x)", ErrCorrupt, sum, h.Checksum)
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return nil, h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}

	payload, err := decompressBlocks(make([]byte, 0, min(h.RawSize, uint64(len(body))*4)), body, h.Compression)
	if err != nil {
		return nil, h, err
	}
	if uint64(len(payload)) != h.RawSize {
		return nil, h, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(payload), h.RawSize)
	}

	g, err := graph.Unmarshal(c, payload)
	if err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return g, h, nil
}

// Save writes g as a new snapshot and points CURRENT at it.
func Save(ctx context.Context, store blobstore.BlobStore, g *graph.Graph, opts ...Option) (uuid.UUID, error) {
	o := applyOptions(opts)

	id, err := write(ctx, store, g, &o)
	if err != nil {
		return uuid.Nil, err
	}
	if err := commit(ctx, store, id); err != nil {
		return id, err
	}
	return id, nil
}

// SaveAll writes graphs in parallel. CURRENT points at the snapshot of the
// last graph once all writes succeed. IDs are returned in input order.
func SaveAll(ctx context.Context, store blobstore.BlobStore, graphs []*graph.Graph, opts ...Option) ([]uuid.UUID, error) {
	o := applyOptions(opts)
	ids := make([]uuid.UUID, len(graphs))
	if len(graphs) == 0 {
		return ids, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range graphs {
		done, err := o.rc.Upload(egCtx)
		if err != nil {
			break
		}
		eg.Go(func() error {
			defer done()

			id, err := write(egCtx, store, g, &o)
			if err != nil {
				return fmt.Errorf("graph %d: %w", i, err)
			}
			ids[i] = id
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := commit(ctx, store, ids[len(ids)-1]); err != nil {
		return ids, err
	}
	return ids, nil
}

func write(ctx context.Context, store blobstore.BlobStore, g *graph.Graph, o *options) (uuid.UUID, error) {
	data, err := encode(g, o)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: new id: %w", err)
	}

	w, err := store.Create(ctx, Name(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: create %s: %w", id, err)
	}

	if _, err := o.rc.LimitWriter(ctx, w).Write(data); err != nil {
		_ = blobstore.Abort(w)
		return uuid.Nil, fmt.Errorf("snapshot: write %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: close %s: %w", id, err)
	}
	return id, nil
}

func commit(ctx context.Context, store blobstore.BlobStore, id uuid.UUID) error {
	if err := store.Put(ctx, blobstore.Current, []byte(id.String())); err != nil {
		return fmt.Errorf("snapshot: commit %s: %w", id, err)
	}
	return nil
}

// Load reads and decodes snapshot id.
func Load(ctx context.Context, store blobstore.BlobStore, id uuid.UUID, opts ...Option) (*graph.Graph, error) {
	o := applyOptions(opts)

	data, err := read(ctx, store, Name(id), &o)
	if err != nil {
		return nil, err
	}

	g, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return g, nil
}

// Current returns the ID CURRENT points at.
func Current(ctx context.Context, store blobstore.BlobStore) (uuid.UUID, error) {
	data, err := blobstore.ReadAll(ctx, store, blobstore.Current)
	if err != nil {
		return uuid.Nil, fmt.Errorf("snapshot: read %s: %w", blobstore.Current, err)
	}
	id, err := uuid.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s holds %q", ErrCorrupt, blobstore.Current, data)
	}
	return id, nil
}

// LoadCurrent loads the snapshot CURRENT points at.
func LoadCurrent(ctx context.Context, store blobstore.BlobStore, opts ...Option) (uuid.UUID, *graph.Graph, error) {
	id, err := Current(ctx, store)
	if err != nil {
		return uuid.Nil, nil, err
	}
	g, err := Load(ctx, store, id, opts...)
	if err != nil {
		return id, nil, err
	}
	return id, g, nil
}

// Stat reads only the header of snapshot id.
func Stat(ctx context.Context, store blobstore.BlobStore, id uuid.UUID) (Info, error) {
	b, err := store.Open(ctx, Name(id))
	if err != nil {
		return Info{}, fmt.Errorf("snapshot: open %s: %w", id, err)
	}
	defer b.Close()

	buf := make([]byte, min(int64(maxHeaderSize), b.Size()))
	if _, err := b.ReadAt(ctx, buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return Info{}, fmt.Errorf("snapshot: read %s: %w", id, err)
	}

	info := Info{ID: id, StoredSize: b.Size()}
	if err := info.Header.UnmarshalBinary(buf); err != nil {
		return Info{}, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return info, nil
}

// List returns all snapshot IDs in creation order.
func List(ctx context.Context, store blobstore.BlobStore) ([]uuid.UUID, error) {
	names, err := store.List(ctx, Prefix)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		if id, ok := ParseName(name); ok {
			ids = append(ids, id)
		}
	}
	// UUIDv7 byte order is creation order.
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids, nil
}

// Delete removes snapshot id. Deleting the snapshot CURRENT points at is refused.
func Delete(ctx context.Context, store blobstore.BlobStore, id uuid.UUID) error {
	cur, err := Current(ctx, store)
	switch {
	case err == nil && cur == id:
		return fmt.Errorf("%w: %s", ErrInUse, id)
	case err != nil && !errors.Is(err, blobstore.ErrNotFound):
		return err
	}

	if err := store.Delete(ctx, Name(id)); err != nil {
		return fmt.Errorf("snapshot: delete %s: %w", id, err)
	}
	return nil
}

func read(ctx context.Context, store blobstore.BlobStore, name string, o *options) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer b.Close()

	if b.Size() < fixedHeaderSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, name, b.Size())
	}

	res, err := o.rc.Reserve(b.Size())
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer res.Release()

	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(o.rc.LimitReader(ctx, r))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}
	return data, nil
}
