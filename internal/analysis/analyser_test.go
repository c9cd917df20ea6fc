package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantle-dev/mantle/internal/analysis"
)

func TestFindPatternOverlapping(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory([]byte("aaaa"))
	offsets := a.FindPattern([]byte("aa"))
	assert.Equal(t, []int{0, 1, 2}, offsets)
}

func TestFindPatternEmptyNeedle(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory([]byte("aaaa"))
	assert.Empty(t, a.FindPattern(nil))
}

func TestFindPatternOnEmptyMemory(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory(nil)
	assert.Empty(t, a.FindPattern([]byte("x")))
}

func TestExtractStringsSkipsShortRuns(t *testing.T) {
	t.Parallel()

	mem := append([]byte{0, 0}, []byte("ab")...)
	mem = append(mem, 0, 0)
	mem = append(mem, []byte("hello world")...)
	a := analysis.FromMemory(mem)

	got := a.ExtractStrings(analysis.DefaultExtractStringsOptions())
	require.Len(t, got, 1)
	assert.Equal(t, "hello world", got[0].Value)
	assert.Equal(t, 6, got[0].Offset)
}

func TestExtractStringsTruncatesAtMaxLength(t *testing.T) {
	t.Parallel()

	long := make([]byte, 10)
	for i := range long {
		long[i] = 'a'
	}
	a := analysis.FromMemory(long)
	got := a.ExtractStrings(analysis.ExtractStringsOptions{MinLength: 1, MaxLength: 4})
	require.Len(t, got, 1)
	assert.Equal(t, "aaaa", got[0].Value)
	assert.Equal(t, 0, got[0].Offset)
}

func TestExtractStringsOnAllZeroMemory(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory(make([]byte, 64))
	assert.Empty(t, a.ExtractStrings(analysis.DefaultExtractStringsOptions()))
}

func TestReadI32LittleEndian(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory([]byte{0x2A, 0x00, 0x00, 0x00})
	v, err := a.ReadI32(0)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestReadI32OutOfBoundsBoundary(t *testing.T) {
	t.Parallel()

	mem := make([]byte, 8)
	a := analysis.FromMemory(mem)

	_, err := a.ReadI32(len(mem) - 3)
	assert.ErrorIs(t, err, analysis.ErrOutOfBounds)

	_, err = a.ReadI32(len(mem) - 4)
	assert.NoError(t, err)
}

func TestReadI64LittleEndianNegative(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	v, err := a.ReadI64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
}

func TestReadBytesRejectsNegativeOffset(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory(make([]byte, 4))
	_, err := a.ReadBytes(-1, 2)
	assert.ErrorIs(t, err, analysis.ErrOutOfBounds)
}

func TestStatsOnMixedMemory(t *testing.T) {
	t.Parallel()

	mem := make([]byte, 100)
	for i := 0; i < 25; i++ {
		mem[i] = 1
	}
	a := analysis.FromMemory(mem)
	stats := a.Stats()
	assert.Equal(t, 100, stats.SizeBytes)
	assert.Equal(t, 25, stats.NonZeroByte)
	assert.Equal(t, 75, stats.ZeroBytes)
	assert.InDelta(t, 0.25, stats.Utilization, 0.0001)
}

func TestStatsOnEmptyMemory(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory(nil)
	stats := a.Stats()
	assert.Equal(t, 0.0, stats.Utilization)
}

func TestHexDumpFormatting(t *testing.T) {
	t.Parallel()

	mem := []byte("Hello, World!!!!")
	a := analysis.FromMemory(mem)
	out, err := a.HexDump(0, len(mem))
	require.NoError(t, err)
	assert.Contains(t, out, "00000000  ")
	assert.Contains(t, out, "48 65 6c 6c 6f")
	assert.Contains(t, out, "Hello, World!!!!")
}

func TestHexDumpOutOfBounds(t *testing.T) {
	t.Parallel()

	a := analysis.FromMemory(make([]byte, 4))
	_, err := a.HexDump(0, 100)
	assert.ErrorIs(t, err, analysis.ErrOutOfBounds)
}
