package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringKnown(t *testing.T) {
	assert.Equal(t, "INSTRUCTION", Instruction.String())
	assert.Equal(t, "REGISTER", Register.String())
	assert.Equal(t, "EOF", EOF.String())
}

func TestKindStringUnknownFallsBackToNumeric(t *testing.T) {
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestPositionString(t *testing.T) {
	p := Position{Filename: "prog.s", Line: 4, Offset: 20}
	assert.Equal(t, "prog.s:4", p.String())
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Register, Literal: "R0", Pos: Position{Filename: "a.s", Line: 1}}
	assert.Equal(t, `REGISTER("R0") at a.s:1`, tok.String())
}

func TestIsSectionName(t *testing.T) {
	assert.True(t, IsSectionName(".text"))
	assert.True(t, IsSectionName(".bss"))
	assert.True(t, IsSectionName(".data"))
	assert.False(t, IsSectionName(".rodata"))
}
