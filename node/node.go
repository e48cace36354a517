// Package node defines the closed set of memory cell variants the
// assembler produces and the interpreter executes, plus the resolved
// label table.
package node

// Kind tags which variant a Cell holds.
type Kind int

const (
	KindData Kind = iota
	KindInstruction
	KindSystemCall
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindInstruction:
		return "instruction"
	case KindSystemCall:
		return "syscall"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Section identifies which of the three memory regions a cell belongs to.
type Section int

const (
	SectionText Section = iota
	SectionBSS
	SectionData
	// SectionStack tags the zero-initialized region below .text. It is
	// writable like .data; kept distinct so a stack cell is never
	// reported as .text. Store itself decides by cell Kind, not Section.
	SectionStack
)

func (s Section) String() string {
	switch s {
	case SectionText:
		return ".text"
	case SectionBSS:
		return ".bss"
	case SectionData:
		return ".data"
	case SectionStack:
		return "(stack)"
	}
	return "?"
}

// Behavior is the compiled closure an InstructionNode or SystemCall cell
// invokes during fetch-execute. It captures only the decoded operands,
// never the tokens they came from.
type Behavior func(m Machine) *RunError

// Cell is one word-sized memory slot. Only the fields relevant to Kind are
// populated, mirroring the reference's tagged-variant Node.
type Cell struct {
	Kind Kind

	// DataNode
	Value  uint32
	Source string // provenance: register name, "SETUP", "GUI", "LR"

	// InstructionNode / SystemCall
	Name     string // SystemCall name ("print_char", "print_int", "__STARTUP", stop sentinel)
	Behavior Behavior

	// ErrorNode
	Message string

	// shared provenance for InstructionNode/DataNode/ErrorNode
	Section Section
	Line    int
}

// DataWord builds an ordinary data cell.
func DataWord(value uint32, source string, section Section, line int) Cell {
	return Cell{Kind: KindData, Value: value, Source: source, Section: section, Line: line}
}

// Instruction builds an instruction cell around a compiled behavior.
func Instruction(section Section, line int, behavior Behavior) Cell {
	return Cell{Kind: KindInstruction, Section: section, Line: line, Behavior: behavior}
}

// SystemCall builds a synthetic instruction cell implementing a host
// routine.
func SystemCall(name string, behavior Behavior) Cell {
	return Cell{Kind: KindSystemCall, Name: name, Section: SectionText, Behavior: behavior}
}

// ErrorCell builds an assemble-time failure cell. It occupies a slot so
// line ordering among errors from the same source is preserved.
func ErrorCell(message string, section Section, line int) Cell {
	return Cell{Kind: KindError, Message: message, Section: section, Line: line}
}

// Label resolves a name to its absolute byte address once layout is
// final. Before layout, CellIndex holds the index within Section instead.
type Label struct {
	Name      string
	Section   Section
	CellIndex int    // index into that section's cell slice, pre-layout
	Address   uint32 // absolute byte address, valid after layout
}
