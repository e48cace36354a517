package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjbrennan/cm0asm/node"
)

func parseOK(t *testing.T, src string) *State {
	t.Helper()
	s, diags := Parse("t.s", src, 256, "_start")
	require.Nil(t, diags, "unexpected parse diagnostics: %v", diags)
	return s
}

func TestSubThenCompareSetsFlags(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #5\nMOV R1, #3\nSUB R2, R0, R1\nCMP R2, #2\n")
	require.Nil(t, RunUntil(s, nil))

	assert.EqualValues(t, 2, s.GetReg(2))
	f := s.GetFlags()
	assert.True(t, f.Z)
	assert.False(t, f.N)
	assert.True(t, f.C)
	assert.False(t, f.V)
}

// TestByteStoreLoadRoundTrip pins down the derived lane-extraction shift
// formula: a byte stored at offset 0 occupies the word's LSB, which is
// byte 3 when the word's bytes are numbered MSB-first.
func TestByteStoreLoadRoundTrip(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #0xAB\nSUB SP, SP, #4\nSTRB R0, [SP]\nLDRB R1, [SP]\n")
	require.Nil(t, RunUntil(s, nil))

	assert.EqualValues(t, 0xAB, s.GetReg(1))

	sp := s.GetReg(node.RegSP)
	word, rerr := s.Load(sp, 32, false)
	require.Nil(t, rerr)
	assert.Equal(t, byte(0xAB), byte(word), "byte 3 (MSB-first) must hold the stored byte")
	assert.Equal(t, byte(0), byte(word>>8))
	assert.Equal(t, byte(0), byte(word>>16))
	assert.Equal(t, byte(0), byte(word>>24))
}

func TestHalfwordLaneOffsets(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #0\n")
	base := s.StackSize() - 4
	require.Nil(t, s.Store(base, 0x11223344, 32, "TEST"))

	upper, err := s.Load(base, 16, false)
	require.Nil(t, err)
	assert.EqualValues(t, 0x1122, upper)

	lower, err := s.Load(base+2, 16, false)
	require.Nil(t, err)
	assert.EqualValues(t, 0x3344, lower)
}

// TestCallReturnViaRawLRCopy exercises BL/print_char's raw (uncompensated)
// PC=LR return semantics. The source is a minimal illustration of the
// return mechanic, not a complete program: its last instruction is itself
// a BL, so LR no longer points at __STARTUP once .text runs out, and
// fall-through past the second call does not land cleanly on the stop
// sentinel. Seven steps (__STARTUP, then MOV, BL, print_char twice) cover
// both calls; this test only pins down the output the two calls produce,
// not whether the program goes on to halt.
func TestCallReturnViaRawLRCopy(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #65\nBL print_char\nMOV R0, #10\nBL print_char\n")
	for i := 0; i < 7; i++ {
		outcome, err := Step(s)
		require.Equal(t, Continue, outcome)
		require.Nil(t, err)
	}

	assert.Equal(t, "A\n", s.Output())
}

func TestBackwardBranchLoop(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #0\nloop: ADD R0, R0, #1\nCMP R0, #3\nBNE loop\n")
	require.Nil(t, RunUntil(s, nil))

	assert.EqualValues(t, 3, s.GetReg(0))
	assert.True(t, s.GetFlags().Z)
}

func TestStoreFullWordToInstructionWarnsAndReplaces(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #1\nMOV R1, #2\n")
	addr, ok := s.LabelAddress("_start")
	require.True(t, ok)

	rerr := s.Store(addr, 0xCAFEBABE, 32, "TEST")
	require.NotNil(t, rerr)
	assert.Equal(t, node.SeverityWarning, rerr.Severity)

	idx, _ := s.CellIndexAt(addr)
	assert.Equal(t, node.KindData, s.Memory[idx].Kind)
}

func TestStorePartialWidthToInstructionIsError(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #1\n")
	addr, ok := s.LabelAddress("_start")
	require.True(t, ok)

	rerr := s.Store(addr, 0xAB, 8, "TEST")
	require.NotNil(t, rerr)
	assert.Equal(t, node.SeverityError, rerr.Severity)
}

func TestMisalignedAccessIsFatal(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #1\n")
	_, rerr := s.Load(1, 32, false)
	require.NotNil(t, rerr)
	assert.Equal(t, node.SeverityError, rerr.Severity)
}

func TestStackSizeLabelResolvesToConfiguredSize(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #1\n")
	addr, ok := s.LabelAddress("__STACKSIZE")
	require.True(t, ok)
	assert.EqualValues(t, s.StackSize(), addr)
}

func TestRunUntilPredicateStopsBeforeTargetCell(t *testing.T) {
	s := parseOK(t, "_start:\nMOV R0, #0\nloop: ADD R0, R0, #1\nCMP R0, #3\nBNE loop\n")
	loopAddr, ok := s.LabelAddress("loop")
	require.True(t, ok)

	err := RunUntil(s, func(c node.Cell) bool {
		return s.GetReg(node.RegPC) == loopAddr
	})
	require.Nil(t, err)
	assert.Equal(t, loopAddr, s.GetReg(node.RegPC))
	assert.EqualValues(t, 0, s.GetReg(0))
}
