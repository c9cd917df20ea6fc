package dump

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	magic = "MNTN"
	// CurrentVersion is the wire-format version this codec writes and the
	// highest version it accepts on decode.
	CurrentVersion uint16 = 1
	headerSize            = 18
)

// ErrInvalidFormat is returned when the magic bytes do not match.
var ErrInvalidFormat = errors.New("invalid_format")

// UnsupportedVersionError is returned when a dump's wire version is newer
// than this codec understands.
type UnsupportedVersionError struct {
	Version uint16
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported_version(%d)", e.Version)
}

// Encode serializes d into the fixed wire format from spec component 4.F:
// a big-endian header, a self-describing metadata block for every field
// except memory, and the zlib-compressed memory payload.
func Encode(d *Dump) ([]byte, error) {
	metadata, err := encodeMetadata(d)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	var compressed bytes.Buffer
	if len(d.Memory) > 0 {
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(d.Memory); err != nil {
			return nil, fmt.Errorf("compress memory: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("compress memory: %w", err)
		}
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	binary.BigEndian.PutUint16(header[4:6], CurrentVersion)
	binary.BigEndian.PutUint64(header[6:14], uint64(len(d.Memory)))
	binary.BigEndian.PutUint32(header[14:18], uint32(len(metadata)))

	out := make([]byte, 0, len(header)+len(metadata)+compressed.Len())
	out = append(out, header...)
	out = append(out, metadata...)
	out = append(out, compressed.Bytes()...)
	return out, nil
}

// Decode parses the wire format back into an immutable Dump, per spec
// component 4.F's decoding rules.
func Decode(data []byte) (*Dump, error) {
	if len(data) < headerSize || string(data[0:4]) != magic {
		return nil, ErrInvalidFormat
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version > CurrentVersion {
		return nil, &UnsupportedVersionError{Version: version}
	}
	memorySize := binary.BigEndian.Uint64(data[6:14])
	metadataSize := binary.BigEndian.Uint32(data[14:18])

	if uint64(len(data)) < uint64(headerSize)+uint64(metadataSize) {
		return nil, ErrInvalidFormat
	}
	metadata := data[headerSize : uint64(headerSize)+uint64(metadataSize)]
	compressed := data[uint64(headerSize)+uint64(metadataSize):]

	d, err := decodeMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	if memorySize > 0 && len(compressed) > 0 {
		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, fmt.Errorf("decompress memory: %w", err)
		}
		defer zr.Close()
		mem, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("decompress memory: %w", err)
		}
		if uint64(len(mem)) != memorySize {
			return nil, fmt.Errorf("decompressed memory length %d does not match declared %d", len(mem), memorySize)
		}
		d.Memory = mem
	} else {
		d.Memory = nil
	}
	return d, nil
}
