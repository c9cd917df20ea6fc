// Package dump implements the forensic dump value object: the central
// entity of spec component 3/4.F. A Dump is immutable after construction;
// every analyser operation over it is read-only.
package dump

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// PageSize is the engine's linear-memory page size (64 KiB), per spec
// component 3 invariant (ii).
const PageSize = 64 * 1024

// StackFrame is one ordered frame descriptor in an optional stack trace.
type StackFrame struct {
	FunctionName string
	Offset       uint32
}

// Dump is the immutable post-mortem record of a failed (or synthesized
// minimal) execution.
type Dump struct {
	ID              string
	Timestamp       time.Time
	Reason          Reason
	Memory          []byte
	FuelRemaining   uint64
	FuelAllocated   uint64
	FunctionCalled  string
	ArgsHash        [32]byte
	ExecutionTimeUS uint64
	StackTrace      []StackFrame
}

// Params carries the fields New needs beyond a generated id and timestamp.
type Params struct {
	Reason          Reason
	Memory          []byte
	FuelRemaining   uint64
	FuelAllocated   uint64
	FunctionCalled  string
	Args            []uint64
	ExecutionTimeUS uint64
	StackTrace      []StackFrame
}

// New constructs a Dump, generating a fresh 16-byte random id (invariant i)
// and hashing args per the "args hashing instead of retention" design note.
func New(p Params) *Dump {
	return &Dump{
		ID:              newID(),
		Timestamp:       time.Now().UTC(),
		Reason:          p.Reason,
		Memory:          p.Memory,
		FuelRemaining:   p.FuelRemaining,
		FuelAllocated:   p.FuelAllocated,
		FunctionCalled:  p.FunctionCalled,
		ArgsHash:        HashArgs(p.Args),
		ExecutionTimeUS: p.ExecutionTimeUS,
		StackTrace:      p.StackTrace,
	}
}

// newID produces a 16-byte random identifier, hex-encoded, per spec
// component 3's "id" field.
func newID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// HashArgs computes a SHA-256 digest over a canonical big-endian encoding
// of the argument list, so a dump can be correlated across calls without
// retaining the raw arguments.
func HashArgs(args []uint64) [32]byte {
	buf := make([]byte, 8*len(args))
	for i, a := range args {
		binary.BigEndian.PutUint64(buf[i*8:], a)
	}
	return sha256.Sum256(buf)
}

// ValidMemoryLength reports whether n is zero or a multiple of PageSize,
// per spec component 3 invariant (ii).
func ValidMemoryLength(n int) bool {
	return n == 0 || n%PageSize == 0
}
