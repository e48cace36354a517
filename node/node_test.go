package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "data", KindData.String())
	assert.Equal(t, "instruction", KindInstruction.String())
	assert.Equal(t, "syscall", KindSystemCall.String())
	assert.Equal(t, "error", KindError.String())
}

func TestSectionString(t *testing.T) {
	assert.Equal(t, ".text", SectionText.String())
	assert.Equal(t, ".bss", SectionBSS.String())
	assert.Equal(t, ".data", SectionData.String())
	assert.Equal(t, "(stack)", SectionStack.String())
}

func TestDataWord(t *testing.T) {
	c := DataWord(0xDEADBEEF, "R0", SectionData, 7)
	assert.Equal(t, KindData, c.Kind)
	assert.EqualValues(t, 0xDEADBEEF, c.Value)
	assert.Equal(t, "R0", c.Source)
	assert.Equal(t, SectionData, c.Section)
	assert.Equal(t, 7, c.Line)
}

func TestSystemCallAlwaysText(t *testing.T) {
	called := false
	c := SystemCall("print_char", func(Machine) *RunError { called = true; return nil })
	assert.Equal(t, KindSystemCall, c.Kind)
	assert.Equal(t, SectionText, c.Section)
	assert.Equal(t, "print_char", c.Name)

	_ = c.Behavior(nil)
	assert.True(t, called)
}

func TestErrorCell(t *testing.T) {
	c := ErrorCell("bad mnemonic", SectionText, 12)
	assert.Equal(t, KindError, c.Kind)
	assert.Equal(t, "bad mnemonic", c.Message)
	assert.Equal(t, 12, c.Line)
}

func TestRunErrorSeverities(t *testing.T) {
	assert.Equal(t, SeverityStop, Stop().Severity)
	assert.Empty(t, Stop().Message)

	w := Warn("replaced cell at 0x%08X", uint32(4))
	assert.Equal(t, SeverityWarning, w.Severity)
	assert.Contains(t, w.Error(), "0x00000004")

	f := Fatal("misaligned address")
	assert.Equal(t, SeverityError, f.Severity)
	assert.Equal(t, "misaligned address", f.Error())
}
