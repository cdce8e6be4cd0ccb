// Package resource bounds what a compile run may consume: reserved memory
// for tableau and snapshot buffers, concurrent snapshot uploads and
// snapshot IO throughput.
//
// A widget reserves its tableau buffer at construction and releases it on
// Close:
//
//	rc := resource.NewController(resource.Config{MemoryLimit: 1 << 30})
//	res, err := rc.Reserve(tableau.BufferBytes(maxQubits))
//	if err != nil {
//	    // wraps ErrMemoryLimitExceeded
//	}
//	defer res.Release()
//
// A nil *Controller is unlimited.
package resource
