package dump

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Metadata is a fixed-schema typed-tag binary encoding of every Dump field
// except memory: id, timestamp, reason (tagged), fuel counts, function
// name, args_hash, execution_time_us, and an optional stack trace. The
// schema is versioned by the outer wire format's version field, not by the
// metadata itself.

var reasonTags = map[ReasonKind]byte{
	ReasonFuelExhausted:       0,
	ReasonTrap:                1,
	ReasonCompilationFailed:   2,
	ReasonTimeout:             3,
	ReasonOther:               4,
	ReasonInstantiationFailed: 5,
	ReasonInvalidArgument:     6,
}

var reasonKindByTag = map[byte]ReasonKind{
	0: ReasonFuelExhausted,
	1: ReasonTrap,
	2: ReasonCompilationFailed,
	3: ReasonTimeout,
	4: ReasonOther,
	5: ReasonInstantiationFailed,
	6: ReasonInvalidArgument,
}

var trapTags = map[TrapKind]byte{
	TrapUnreachable:    0,
	TrapOutOfBounds:    1,
	TrapDivisionByZero: 2,
	TrapGeneric:        3,
}

var trapKindByTag = map[byte]TrapKind{
	0: TrapUnreachable,
	1: TrapOutOfBounds,
	2: TrapDivisionByZero,
	3: TrapGeneric,
}

func encodeMetadata(d *Dump) ([]byte, error) {
	var buf []byte

	buf = appendString(buf, d.ID)
	buf = appendUint64(buf, uint64(d.Timestamp.UnixNano()))

	reasonTag, ok := reasonTags[d.Reason.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown reason kind %q", d.Reason.Kind)
	}
	buf = append(buf, reasonTag)
	trapTag := byte(0)
	if d.Reason.Kind == ReasonTrap {
		t, ok := trapTags[d.Reason.TrapKind]
		if !ok {
			return nil, fmt.Errorf("unknown trap kind %q", d.Reason.TrapKind)
		}
		trapTag = t
	}
	buf = append(buf, trapTag)
	buf = appendString(buf, d.Reason.Detail)

	buf = appendUint64(buf, d.FuelRemaining)
	buf = appendUint64(buf, d.FuelAllocated)
	buf = appendString(buf, d.FunctionCalled)
	buf = append(buf, d.ArgsHash[:]...)
	buf = appendUint64(buf, d.ExecutionTimeUS)

	if d.StackTrace == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = appendUint32(buf, uint32(len(d.StackTrace)))
		for _, frame := range d.StackTrace {
			buf = appendString(buf, frame.FunctionName)
			buf = appendUint32(buf, frame.Offset)
		}
	}

	return buf, nil
}

func decodeMetadata(data []byte) (*Dump, error) {
	r := &byteReader{data: data}

	id, err := r.readString()
	if err != nil {
		return nil, err
	}
	tsNano, err := r.readUint64()
	if err != nil {
		return nil, err
	}

	reasonTag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	reasonKind, ok := reasonKindByTag[reasonTag]
	if !ok {
		return nil, fmt.Errorf("unknown reason tag %d", reasonTag)
	}
	trapTag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	detail, err := r.readString()
	if err != nil {
		return nil, err
	}

	reason := Reason{Kind: reasonKind, Detail: detail}
	if reasonKind == ReasonTrap {
		trapKind, ok := trapKindByTag[trapTag]
		if !ok {
			return nil, fmt.Errorf("unknown trap tag %d", trapTag)
		}
		reason.TrapKind = trapKind
	}

	fuelRemaining, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	fuelAllocated, err := r.readUint64()
	if err != nil {
		return nil, err
	}
	functionCalled, err := r.readString()
	if err != nil {
		return nil, err
	}
	argsHashBytes, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var argsHash [32]byte
	copy(argsHash[:], argsHashBytes)

	executionTimeUS, err := r.readUint64()
	if err != nil {
		return nil, err
	}

	hasStack, err := r.readByte()
	if err != nil {
		return nil, err
	}
	var stackTrace []StackFrame
	if hasStack == 1 {
		count, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		if count > 1_000_000 {
			return nil, fmt.Errorf("stack trace frame count %d implausibly large", count)
		}
		stackTrace = make([]StackFrame, 0, count)
		for i := uint32(0); i < count; i++ {
			name, err := r.readString()
			if err != nil {
				return nil, err
			}
			offset, err := r.readUint32()
			if err != nil {
				return nil, err
			}
			stackTrace = append(stackTrace, StackFrame{FunctionName: name, Offset: offset})
		}
	}

	return &Dump{
		ID:              id,
		Timestamp:       time.Unix(0, int64(tsNano)).UTC(),
		Reason:          reason,
		FuelRemaining:   fuelRemaining,
		FuelAllocated:   fuelAllocated,
		FunctionCalled:  functionCalled,
		ArgsHash:        argsHash,
		ExecutionTimeUS: executionTimeUS,
		StackTrace:      stackTrace,
	}, nil
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// byteReader sequentially decodes the fields encodeMetadata wrote.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) readFixed(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("metadata truncated")
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) readByte() (byte, error) {
	b, err := r.readFixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readUint32() (uint32, error) {
	b, err := r.readFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *byteReader) readUint64() (uint64, error) {
	b, err := r.readFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *byteReader) readString() (string, error) {
	n, err := r.readUint32()
	if err != nil {
		return "", err
	}
	b, err := r.readFixed(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
