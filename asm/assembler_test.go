package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjbrennan/cm0asm/lexer"
	"github.com/tjbrennan/cm0asm/node"
)

func assembleSource(t *testing.T, src string) *Program {
	t.Helper()
	toks := lexer.Lex("t.s", src)
	return Assemble(toks)
}

func TestAssembleSimpleProgramHasNoErrors(t *testing.T) {
	p := assembleSource(t, "_start:\nMOV R0, #5\nMOV R1, #3\nSUB R2, R0, R1\nCMP R2, #2\n")
	assert.False(t, p.HasErrors(), "unexpected errors: %v", p.Errors())
	assert.Len(t, p.Text, 4) // _start consumes no cell, 4 instructions
}

func TestAssembleUnsupportedMnemonicIsError(t *testing.T) {
	p := assembleSource(t, "NOPE R0, R1\n")
	require.True(t, p.HasErrors())
}

// TestDuplicateLabelFirstWriterWinsSilently resolves the spec's explicit
// policy: a later redefinition of an existing label is dropped with no
// diagnostic at all.
func TestDuplicateLabelFirstWriterWinsSilently(t *testing.T) {
	p := assembleSource(t, "foo:\nMOV R0, #1\nfoo:\nMOV R1, #2\n")
	assert.False(t, p.HasErrors())

	var count int
	var first node.Label
	for _, l := range p.Labels {
		if l.Name == "foo" {
			count++
			first = l
		}
	}
	require.Equal(t, 1, count, "duplicate label must not produce a second entry")
	assert.Equal(t, 0, first.CellIndex, "first definition's index must be kept")
}

func TestInstructionsNotAllowedInBSS(t *testing.T) {
	p := assembleSource(t, ".bss\nMOV R0, #1\n")
	require.True(t, p.HasErrors())
}

func TestSkipDirectiveReservesWords(t *testing.T) {
	p := assembleSource(t, ".bss\nbuf: .skip 12\n")
	assert.False(t, p.HasErrors())
	assert.Len(t, p.BSS, 3)
}

func TestGlobalDirectiveRecordsNames(t *testing.T) {
	p := assembleSource(t, ".global _start, main\nMOV R0, #0\n")
	assert.ElementsMatch(t, []string{"_start", "main"}, p.Globals)
}

func TestAsciizPacksBigEndianWords(t *testing.T) {
	p := assembleSource(t, ".data\nmsg: .asciz \"Hi\"\n")
	require.False(t, p.HasErrors())
	require.Len(t, p.Data, 1)

	word := p.Data[0].Value
	b3 := byte(word >> 24)
	b2 := byte(word >> 16)
	b1 := byte(word >> 8)
	b0 := byte(word)
	assert.Equal(t, byte('H'), b3)
	assert.Equal(t, byte('i'), b2)
	assert.Equal(t, byte(0), b1)
	assert.Equal(t, byte(0), b0)
}

func TestAsciiDoesNotTerminate(t *testing.T) {
	p := assembleSource(t, ".data\nmsg: .ascii \"AB\"\n")
	require.False(t, p.HasErrors())
	require.Len(t, p.Data, 1)
	word := p.Data[0].Value
	assert.Equal(t, byte('A'), byte(word>>24))
	assert.Equal(t, byte('B'), byte(word>>16))
}

// TestSectionRelativeNextAddress checks that a label's CellIndex is
// measured against its own section's length, not len(text).
func TestSectionRelativeNextAddress(t *testing.T) {
	p := assembleSource(t, "MOV R0, #1\nMOV R1, #2\n.bss\nfirst: .skip 4\n")
	require.False(t, p.HasErrors())

	var first node.Label
	for _, l := range p.Labels {
		if l.Name == "first" {
			first = l
		}
	}
	assert.Equal(t, 0, first.CellIndex, "bss label index must be relative to .bss, not .text")
}
