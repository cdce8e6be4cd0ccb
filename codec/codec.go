// Package codec names the encodings a graph payload can be stored in.
//
// A snapshot header records the codec name, so a name once published must
// keep decoding the same bytes.
package codec

import (
	"maps"
	"slices"
)

// Codec encodes and decodes graph payloads. Safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default encodes newly written snapshots.
var Default Codec = GoJSON{}

var builtin = map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}

// ByName looks a codec up by the name stored in a snapshot header.
func ByName(name string) (Codec, bool) {
	c, ok := builtin[name]
	return c, ok
}

// Names returns the known codec names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(builtin))
}
