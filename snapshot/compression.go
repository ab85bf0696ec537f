package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how envelope payloads are packed.
type Compression uint8

const (
	// CompressionNone stores the payload as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 favors speed over ratio.
	CompressionLZ4 Compression = 1
	// CompressionZSTD favors ratio over speed, a good fit for
	// snapshots that are written and read rarely.
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Compressed payloads carry their uncompressed size so decompression
// can allocate exactly once.
const sizePrefix = 4

// ZSTD encoder/decoder pools for efficiency.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress packs payload with the requested algorithm. When compression
// does not shrink the payload the result falls back to CompressionNone,
// so the returned Compression is authoritative.
func compress(payload []byte, comp Compression) ([]byte, Compression, error) {
	if comp == CompressionNone || len(payload) == 0 {
		return payload, CompressionNone, nil
	}

	var packed []byte
	switch comp {
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, dst, nil)
		if err != nil {
			return nil, comp, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		if n == 0 {
			// Incompressible.
			return payload, CompressionNone, nil
		}
		packed = dst[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		packed = enc.EncodeAll(payload, nil)
	default:
		return nil, comp, fmt.Errorf("snapshot: unknown compression %d", uint8(comp))
	}

	if sizePrefix+len(packed) >= len(payload) {
		return payload, CompressionNone, nil
	}

	out := make([]byte, sizePrefix+len(packed))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	copy(out[sizePrefix:], packed)
	return out, comp, nil
}

// decompress unpacks an envelope payload section.
func decompress(body []byte, comp Compression) ([]byte, error) {
	switch comp {
	case CompressionNone:
		return body, nil

	case CompressionLZ4:
		size, packed, err := splitSized(body)
		if err != nil {
			return nil, err
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 decompress: %w", err)
		}
		if uint32(n) != size {
			return nil, errors.New("snapshot: decompressed size mismatch")
		}
		return out, nil

	case CompressionZSTD:
		size, packed, err := splitSized(body)
		if err != nil {
			return nil, err
		}
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		out, err := dec.DecodeAll(packed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("snapshot: zstd decompress: %w", err)
		}
		if uint32(len(out)) != size {
			return nil, errors.New("snapshot: decompressed size mismatch")
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidEnvelope, uint8(comp))
	}
}

func splitSized(body []byte) (uint32, []byte, error) {
	if len(body) < sizePrefix {
		return 0, nil, fmt.Errorf("%w: truncated compressed payload", ErrInvalidEnvelope)
	}
	return binary.LittleEndian.Uint32(body), body[sizePrefix:], nil
}
