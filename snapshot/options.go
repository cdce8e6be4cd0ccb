package snapshot

import (
	"github.com/hupe1980/cabaliser/codec"
	"github.com/hupe1980/cabaliser/internal/resource"
)

// Option configures Save and SaveAll.
type Option func(*options)

type options struct {
	codec       codec.Codec
	compression Compression
	blockSize   int
	rc          *resource.Controller
}

func defaultOptions() options {
	return options{
		codec:       codec.Default,
		compression: CompressionLZ4,
		blockSize:   DefaultBlockSize,
	}
}

// WithCodec selects the graph codec. The codec name is recorded in the header.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression selects block compression (default LZ4).
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed block size.
func WithBlockSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.blockSize = n
		}
	}
}

// WithResourceController rate-limits snapshot IO, reserves memory for the
// encode buffers and bounds SaveAll parallelism.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}
