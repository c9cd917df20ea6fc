// Package analysis implements the read-only Analyser over a forensic
// dump's memory: pattern search, string extraction, integer reads, hex
// rendering, and utilization stats, per spec component 4.H.
package analysis

import (
	"errors"
	"fmt"

	"github.com/mantle-dev/mantle/internal/dump"
)

// ErrOutOfBounds is returned by the bounded read operations when the
// requested offset/length falls outside memory.
var ErrOutOfBounds = errors.New("out_of_bounds")

// Analyser is a read-only view constructed from a dump. All operations
// operate over a snapshot and never mutate it.
type Analyser struct {
	memory []byte
}

// New constructs an Analyser from a dump's memory snapshot.
func New(d *dump.Dump) *Analyser {
	return &Analyser{memory: d.Memory}
}

// FromMemory constructs an Analyser directly from a byte slice, useful for
// testing the analyser's own bounds logic without a full Dump.
func FromMemory(memory []byte) *Analyser {
	return &Analyser{memory: memory}
}

// FindPattern returns the ascending, possibly-overlapping offsets at which
// needle occurs in memory. An empty needle yields an empty result.
func (a *Analyser) FindPattern(needle []byte) []int {
	if len(needle) == 0 {
		return nil
	}
	var offsets []int
	for i := 0; i+len(needle) <= len(a.memory); i++ {
		if bytesEqual(a.memory[i:i+len(needle)], needle) {
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ExtractedString is one printable-ASCII run found in memory.
type ExtractedString struct {
	Offset int
	Value  string
}

// ExtractStringsOptions bounds the runs ExtractStrings emits.
type ExtractStringsOptions struct {
	MinLength int
	MaxLength int
}

// DefaultExtractStringsOptions matches spec component 4.H's defaults.
func DefaultExtractStringsOptions() ExtractStringsOptions {
	return ExtractStringsOptions{MinLength: 4, MaxLength: 256}
}

// ExtractStrings scans memory for contiguous runs of printable ASCII bytes
// (0x20-0x7E). Runs shorter than MinLength are skipped; runs longer than
// MaxLength are truncated at the boundary, with the emitted offset always
// the start of the run.
func (a *Analyser) ExtractStrings(opts ExtractStringsOptions) []ExtractedString {
	if opts.MinLength <= 0 {
		opts.MinLength = 4
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = 256
	}

	var out []ExtractedString
	i := 0
	for i < len(a.memory) {
		if !printable(a.memory[i]) {
			i++
			continue
		}
		start := i
		for i < len(a.memory) && printable(a.memory[i]) {
			i++
		}
		runLen := i - start
		if runLen >= opts.MinLength {
			end := start + runLen
			if runLen > opts.MaxLength {
				end = start + opts.MaxLength
			}
			out = append(out, ExtractedString{Offset: start, Value: string(a.memory[start:end])})
		}
	}
	return out
}

func printable(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// ReadI32 decodes a little-endian signed 32-bit integer at offset.
func (a *Analyser) ReadI32(offset int) (int32, error) {
	b, err := a.ReadBytes(offset, 4)
	if err != nil {
		return 0, err
	}
	u := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return int32(u), nil
}

// ReadI64 decodes a little-endian signed 64-bit integer at offset.
func (a *Analyser) ReadI64(offset int) (int64, error) {
	b, err := a.ReadBytes(offset, 8)
	if err != nil {
		return 0, err
	}
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return int64(u), nil
}

// ReadBytes returns a copy of length bytes starting at offset, subject to
// the same bounds policy as ReadI32/ReadI64.
func (a *Analyser) ReadBytes(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(a.memory) {
		return nil, ErrOutOfBounds
	}
	out := make([]byte, length)
	copy(out, a.memory[offset:offset+length])
	return out, nil
}

// Stats summarizes memory utilization.
type Stats struct {
	SizeBytes   int
	SizePages   int
	ZeroBytes   int
	NonZeroByte int
	Utilization float64
}

// Stats computes size, zero/non-zero byte counts, and utilization.
func (a *Analyser) Stats() Stats {
	s := Stats{SizeBytes: len(a.memory), SizePages: len(a.memory) / dump.PageSize}
	for _, b := range a.memory {
		if b == 0 {
			s.ZeroBytes++
		} else {
			s.NonZeroByte++
		}
	}
	if s.SizeBytes > 0 {
		s.Utilization = float64(s.NonZeroByte) / float64(s.SizeBytes)
	}
	return s
}

// HexDump renders length bytes starting at offset as the canonical
// 16-bytes-per-row hex dump spec component 4.H describes.
func (a *Analyser) HexDump(offset, length int) (string, error) {
	b, err := a.ReadBytes(offset, length)
	if err != nil {
		return "", err
	}

	var out []byte
	for row := 0; row < len(b); row += 16 {
		end := row + 16
		if end > len(b) {
			end = len(b)
		}
		line := b[row:end]

		out = append(out, []byte(fmt.Sprintf("%08x  ", offset+row))...)

		var hexPart []byte
		for i, by := range line {
			if i > 0 {
				hexPart = append(hexPart, ' ')
			}
			hexPart = append(hexPart, []byte(fmt.Sprintf("%02x", by))...)
		}
		for len(hexPart) < 48 {
			hexPart = append(hexPart, ' ')
		}
		out = append(out, hexPart...)
		out = append(out, ' ', ' ')

		for _, by := range line {
			if printable(by) {
				out = append(out, by)
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
	}
	return string(out), nil
}
