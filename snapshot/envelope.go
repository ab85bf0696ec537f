package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Envelope layout:
//
//	magic "RSNP" | version | name len | codec name | compression | payload | crc32
//
// The checksum is CRC32 (IEEE) over every preceding byte, stored
// little-endian. CRC32 detects accidental corruption only; envelopes
// are not tamper-proof.

const (
	envelopeMagic   = "RSNP"
	envelopeVersion = 1
	crcSize         = 4
)

// minEnvelopeSize is an envelope with an empty codec name and no payload.
const minEnvelopeSize = len(envelopeMagic) + 1 + 1 + 1 + crcSize

// ErrInvalidEnvelope reports structural problems with a snapshot:
// wrong magic, unsupported version, or truncation.
var ErrInvalidEnvelope = errors.New("snapshot: invalid envelope")

// ChecksumError reports an envelope whose checksum does not match,
// meaning the stored bytes were corrupted after writing.
type ChecksumError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("snapshot: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Encode wraps payload in an envelope carrying the codec name and the
// applied compression. When the requested compression does not shrink
// the payload the envelope records CompressionNone instead.
func Encode(payload []byte, codecName string, comp Compression) ([]byte, error) {
	if codecName == "" || len(codecName) > 255 {
		return nil, fmt.Errorf("snapshot: codec name %q must be 1..255 bytes", codecName)
	}
	body, comp, err := compress(payload, comp)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, minEnvelopeSize+len(codecName)+len(body))
	buf = append(buf, envelopeMagic...)
	buf = append(buf, envelopeVersion)
	buf = append(buf, byte(len(codecName)))
	buf = append(buf, codecName...)
	buf = append(buf, byte(comp))
	buf = append(buf, body...)
	return binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf)), nil
}

// Decode unwraps an envelope, returning the payload and the name of the
// codec that produced it. Corruption surfaces as *ChecksumError.
func Decode(data []byte) ([]byte, string, error) {
	if len(data) < minEnvelopeSize {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrInvalidEnvelope, len(data))
	}
	if string(data[:len(envelopeMagic)]) != envelopeMagic {
		return nil, "", fmt.Errorf("%w: bad magic", ErrInvalidEnvelope)
	}
	// Version is checked before the checksum so a future format reads
	// as unsupported rather than corrupt.
	if v := data[len(envelopeMagic)]; v != envelopeVersion {
		return nil, "", fmt.Errorf("%w: unsupported version %d", ErrInvalidEnvelope, v)
	}
	nameLen := int(data[len(envelopeMagic)+1])
	headerLen := len(envelopeMagic) + 2 + nameLen + 1
	if len(data) < headerLen+crcSize {
		return nil, "", fmt.Errorf("%w: truncated", ErrInvalidEnvelope)
	}

	body := data[:len(data)-crcSize]
	expected := binary.LittleEndian.Uint32(data[len(data)-crcSize:])
	if actual := crc32.ChecksumIEEE(body); actual != expected {
		return nil, "", &ChecksumError{Expected: expected, Actual: actual}
	}

	codecName := string(data[len(envelopeMagic)+2 : len(envelopeMagic)+2+nameLen])
	comp := Compression(data[headerLen-1])
	payload, err := decompress(body[headerLen:], comp)
	if err != nil {
		return nil, "", err
	}
	return payload, codecName, nil
}
