// Package codec centralizes payload encoding for persisted state.
//
// Snapshot files are self-describing: they record the codec name in
// their envelope, and the reader selects the codec by that name. This
// makes codec choice a compatibility boundary rather than a silent
// format change.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned when a snapshot names a codec this build
// does not provide.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
