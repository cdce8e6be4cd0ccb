//go:build amd64

package simd

import "golang.org/x/sys/cpu"

func init() {
	install(CPU{
		Arch:   "amd64",
		AVX2:   cpu.X86.HasAVX2,
		AVX512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
	})
}
