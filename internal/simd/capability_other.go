//go:build !amd64 && !arm64

package simd

import "runtime"

func init() {
	install(CPU{Arch: runtime.GOARCH})
}
