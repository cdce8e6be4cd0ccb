package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/cabaliser/blobstore/minio"
	"github.com/hupe1980/cabaliser/codec"
	"github.com/hupe1980/cabaliser/snapshot"
)

// Config is the YAML configuration file. Flags override its values.
type Config struct {
	Widget   WidgetConfig   `yaml:"widget"`
	Storage  StorageConfig  `yaml:"storage"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// WidgetConfig sizes and tunes the widgets a command builds.
type WidgetConfig struct {
	// Qubits is the number of logical qubits.
	Qubits int `yaml:"qubits"`
	// MaxQubits bounds the tableau. 0 means Qubits plus one row per RZ in
	// the stream.
	MaxQubits int `yaml:"max_qubits"`
	// Workers runs gate updates on a pool. 0 applies gates inline.
	Workers int `yaml:"workers"`
	// MemoryLimit bounds the tableau buffers of concurrently compiled
	// streams, in bytes. 0 means unlimited.
	MemoryLimit int64 `yaml:"memory_limit"`
	// Kernel is "vector" or "scalar".
	Kernel string `yaml:"kernel"`
	// Block selects the tile-cached decomposition.
	Block bool `yaml:"block"`
	// TeleportInput teleports the initial qubits before the stream.
	TeleportInput bool `yaml:"teleport_input"`
	// SegmentMaxQubits, if set, compiles each stream as a sequence of widgets
	// of this size. Every segment teleports its inputs and holds at most
	// SegmentMaxQubits - 2*Qubits rotations.
	SegmentMaxQubits int `yaml:"segment_max_qubits"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	// Backend is "memory", "local", "s3" or "minio".
	Backend string `yaml:"backend"`
	// Path is the root directory of the local backend.
	Path string `yaml:"path"`
	// Bucket, Prefix and Region configure the s3 backend.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
	// DynamoTable, if set, commits CURRENT through a DynamoDB table.
	DynamoTable string `yaml:"dynamo_table"`
	// MinIO configures the minio backend.
	MinIO minio.Config `yaml:"minio"`
	// IOLimit caps snapshot IO in bytes per second. 0 means unlimited.
	IOLimit int64 `yaml:"io_limit"`
	// Uploads bounds parallel snapshot uploads.
	Uploads int64 `yaml:"uploads"`
}

// SnapshotConfig selects the snapshot encoding.
type SnapshotConfig struct {
	Compression string `yaml:"compression"`
	Codec       string `yaml:"codec"`
	BlockSize   int    `yaml:"block_size"`
}

// DefaultConfig returns the configuration used without a file.
func DefaultConfig() *Config {
	return &Config{
		Widget: WidgetConfig{
			Kernel: "vector",
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    "./cabaliser-data",
			Uploads: 4,
		},
		Snapshot: SnapshotConfig{
			Compression: "lz4",
			Codec:       codec.Default.Name(),
			BlockSize:   snapshot.DefaultBlockSize,
		},
	}
}

// LoadConfig reads path over the defaults. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields and sizes.
func (c *Config) Validate() error {
	var errs []error

	if c.Widget.Qubits < 0 {
		errs = append(errs, errors.New("widget.qubits must not be negative"))
	}
	if c.Widget.MaxQubits < 0 {
		errs = append(errs, errors.New("widget.max_qubits must not be negative"))
	}
	if c.Widget.Qubits > 0 && c.Widget.MaxQubits > 0 && c.Widget.MaxQubits < c.Widget.Qubits {
		errs = append(errs, fmt.Errorf("widget.max_qubits %d is below widget.qubits %d", c.Widget.MaxQubits, c.Widget.Qubits))
	}
	if c.Widget.SegmentMaxQubits < 0 {
		errs = append(errs, errors.New("widget.segment_max_qubits must not be negative"))
	}
	if c.Widget.Qubits > 0 && c.Widget.SegmentMaxQubits > 0 && c.Widget.SegmentMaxQubits <= 2*c.Widget.Qubits {
		errs = append(errs, fmt.Errorf("widget.segment_max_qubits %d must exceed twice widget.qubits %d",
			c.Widget.SegmentMaxQubits, c.Widget.Qubits))
	}
	if _, err := parseKernel(c.Widget.Kernel); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "memory", "local":
	case "s3":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for the s3 backend"))
		}
	case "minio":
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			errs = append(errs, errors.New("storage.minio.endpoint and storage.minio.bucket are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}

	if _, err := snapshot.ParseCompression(c.Snapshot.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, ok := codec.ByName(c.Snapshot.Codec); !ok {
		errs = append(errs, fmt.Errorf("unknown snapshot.codec %q (have %v)", c.Snapshot.Codec, codec.Names()))
	}

	return errors.Join(errs...)
}

// snapshotOptions converts the snapshot section to snapshot options.
func (c *Config) snapshotOptions() []snapshot.Option {
	comp, _ := snapshot.ParseCompression(c.Snapshot.Compression)
	cd, _ := codec.ByName(c.Snapshot.Codec)
	return []snapshot.Option{
		snapshot.WithCompression(comp),
		snapshot.WithCodec(cd),
		snapshot.WithBlockSize(c.Snapshot.BlockSize),
	}
}
