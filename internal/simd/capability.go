package simd

import (
	"os"
	"strings"
)

// Kernels names a kernel set.
type Kernels uint8

const (
	// WordKernels step one 64-bit word at a time.
	WordKernels Kernels = iota
	// LaneKernels step LaneWords words at a time.
	LaneKernels
)

func (k Kernels) String() string {
	if k == LaneKernels {
		return "lanes"
	}
	return "words"
}

// EnvOverride is read once at init. "words" or "lanes" forces a kernel set.
const EnvOverride = "CABALISER_SIMD"

// CPU lists the vector extensions found at init.
type CPU struct {
	Arch   string
	ASIMD  bool // arm64 NEON
	SVE2   bool
	AVX2   bool
	AVX512 bool // F and BW
}

// Vector reports whether any vector extension is present.
func (c CPU) Vector() bool {
	return c.ASIMD || c.SVE2 || c.AVX2 || c.AVX512
}

var (
	detected   CPU
	active     Kernels
	overridden bool
)

// selectKernels picks the kernel set for c. env takes precedence when it
// names a set.
func selectKernels(c CPU, env string) (k Kernels, forced bool) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "words", "generic":
		return WordKernels, true
	case "lanes":
		return LaneKernels, true
	}
	if c.Vector() {
		return LaneKernels, false
	}
	return WordKernels, false
}

// install is called once from the per-arch init.
func install(c CPU) {
	detected = c
	active, overridden = selectKernels(c, os.Getenv(EnvOverride))
	if noasm && !overridden {
		active = WordKernels
	}
	if active == LaneKernels {
		UseLaneKernels()
	}
}

// Detected returns the CPU features found at init.
func Detected() CPU { return detected }

// Active returns the kernel set chosen at init.
func Active() Kernels { return active }

// Overridden reports whether CABALISER_SIMD chose the kernel set.
func Overridden() bool { return overridden }

// Vectorized reports whether the lane kernels were chosen at init.
func Vectorized() bool { return active == LaneKernels }
