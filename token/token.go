package token

import "fmt"

// Kind is the closed set of token variants the lexer can produce.
type Kind int

const (
	Instruction   Kind = iota // mnemonic, upper-cased by the lexer
	Register                  // R0..R12, SP, LR, PC
	Label                     // identifier, no sigil
	LoadLabel                 // =name
	Immediate                 // #expr
	LoadImmediate             // =expr (wide literal load)
	Separator                 // one of , : [ ] { }
	Section                   // .text .bss .data
	AsciiAsciz                // .ascii .asciz .string
	Global                    // .global
	Align                     // .align
	Skip                      // .skip
	Cpu                       // .cpu (payload ignored)
	Comment
	StringLiteral
	NewLine
	Mismatch // lexer could not classify; subject to fixMismatches
	Error    // a lex-time diagnostic materialized as a token so ordering survives
	EOF
)

var kindNames = map[Kind]string{
	Instruction:   "INSTRUCTION",
	Register:      "REGISTER",
	Label:         "LABEL",
	LoadLabel:     "LOAD_LABEL",
	Immediate:     "IMMEDIATE",
	LoadImmediate: "LOAD_IMMEDIATE",
	Separator:     "SEPARATOR",
	Section:       "SECTION",
	AsciiAsciz:    "ASCII_ASCIZ",
	Global:        "GLOBAL",
	Align:         "ALIGN",
	Skip:          "SKIP",
	Cpu:           "CPU",
	Comment:       "COMMENT",
	StringLiteral: "STRING",
	NewLine:       "NEWLINE",
	Mismatch:      "MISMATCH",
	Error:         "ERROR",
	EOF:           "EOF",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Severity distinguishes a lex-time Error token that merely gets reported
// from one whose condition was already auto-recovered (a warning).
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Token is a tagged variant carrying its source line and start byte offset.
// Go has no sum types, so the payload fields below are a union in spirit:
// only the fields relevant to Kind are populated, mirroring the reference's
// per-variant token constructors.
type Token struct {
	Kind Kind
	Pos  Position

	// Literal is the raw source text this token was lexed from, used for
	// error messages and for the lexer round-trip property.
	Literal string

	Mnemonic string   // Instruction
	Reg      string   // Register: normalized name
	Ident    string   // Instruction (original spelling), LoadLabel, Section, AsciiAsciz
	Value    int32    // Immediate, LoadImmediate, Align, Skip
	Sep      byte     // Separator: ',' ':' '[' ']' '{' '}'
	Raw      string   // StringLiteral: raw (unescaped) contents between quotes
	Severity Severity // Error
	Message  string   // Error
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %s", t.Kind, t.Literal, t.Pos)
}

// IsSectionName reports whether s names one of the three sections.
func IsSectionName(s string) bool {
	switch s {
	case ".text", ".bss", ".data":
		return true
	}
	return false
}
