// Package lexer turns Cortex-M0 assembly source text into a token
// sequence. It is driven by a single longest-match regular expression
// alternation, as described for the reference lexer: one compiled pattern
// classifies every byte run into the token.Kind closed set, with a
// post-pass (fixMismatches) that recovers from the common malformed
// inputs (unterminated strings, unterminated block comments, bad escapes
// in character literals) before reporting the rest as plain lex errors.
package lexer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tjbrennan/cm0asm/token"
)

// master is the single regex alternation the lexer is driven by. It is
// compiled with Longest() so that, like the reference lexer, the longest
// matching alternative at each position wins rather than the first listed
// one (Go's default leftmost-first semantics would otherwise make order
// significant).
//
// Patterns are written to be robust under maximal-munch matching: the
// block comment body is expressed as `(?:[^*]|\*+[^*/])*\*+` rather than a
// lazy `.*?`, because Longest() matching ignores laziness.
var master = regexp.MustCompile(`^(?i)` +
	`(?P<ws>[ \t\r]+)` +
	`|(?P<nl>\n)` +
	`|(?P<linecomment>(?://|;)[^\n]*)` +
	`|(?P<blockcomment>/\*(?:[^*]|\*+[^*/])*\*+/)` +
	`|(?P<immediate>#[ \t]*(?:0[xX][0-9A-Fa-f]+|0[bB][01]+|'(?:\\[bfnrt"\\0]|[^'\\])'|[0-9]+))` +
	`|(?P<loadimmediate>=[ \t]*(?:0[xX][0-9A-Fa-f]+|0[bB][01]+|'(?:\\[bfnrt"\\0]|[^'\\])'|[0-9]+))` +
	`|(?P<loadlabel>=[ \t]*[A-Za-z_][A-Za-z0-9_.]*)` +
	`|(?P<section>\.(?:text|bss|data)\b)` +
	`|(?P<asciiasciz>\.(?:asciz|ascii|string)\b)` +
	`|(?P<global>\.global\b)` +
	`|(?P<align>\.align[ \t]+[1248]\b)` +
	`|(?P<skip>\.skip[ \t]+[0-9]+)` +
	`|(?P<cpu>\.cpu[^\n]*)` +
	`|(?P<str>"(?:\\.|[^"\\])*")` +
	`|(?P<register>(?:R1[0-2]|R[0-9]|SP|LR|PC)\b)` +
	`|(?P<identifier>[A-Za-z_][A-Za-z0-9_.]*)` +
	`|(?P<separator>[,:\[\]{}])` +
	`|(?P<mismatch>.)`)

var masterGroupNames = master.SubexpNames()

func init() {
	master.Longest()
}

// Lex tokenizes the entire source in one pass and applies the mismatch
// fix-up pass before returning. The returned sequence always ends with an
// EOF token.
func Lex(filename, source string) []token.Token {
	toks := scan(filename, source, 0, 1)
	return fixMismatches(toks, filename, source)
}

// scan performs the single longest-match regex pass. startOffset/startLine
// let fixMismatches re-invoke it mid-file when recovering from an
// unterminated string or block comment.
func scan(filename, source string, startOffset, startLine int) []token.Token {
	var toks []token.Token
	pos := startOffset
	line := startLine

	for pos < len(source) {
		rest := source[pos:]
		loc := master.FindStringSubmatchIndex(rest)
		if loc == nil || loc[0] != 0 {
			// Should not happen: the mismatch group matches any single
			// byte, so the alternation always matches at position 0.
			toks = append(toks, token.Token{
				Kind:    token.Mismatch,
				Pos:     token.Position{Filename: filename, Line: line, Offset: pos},
				Literal: rest[:1],
			})
			pos++
			continue
		}

		matchEnd := loc[1]
		text := rest[:matchEnd]
		p := token.Position{Filename: filename, Line: line, Offset: pos}

		switch groupName(loc) {
		case "ws":
			// discarded
		case "nl":
			toks = append(toks, token.Token{Kind: token.NewLine, Pos: p, Literal: text})
			line++
		case "linecomment", "blockcomment":
			toks = append(toks, token.Token{Kind: token.Comment, Pos: p, Literal: text})
			line += strings.Count(text, "\n")
		case "immediate":
			v, err := parseImmediateBody(strings.TrimSpace(text[1:]))
			if err != nil {
				toks = append(toks, token.Token{Kind: token.Error, Pos: p, Literal: text,
					Severity: token.SeverityError, Message: err.Error()})
			} else {
				toks = append(toks, token.Token{Kind: token.Immediate, Pos: p, Literal: text, Value: v})
			}
		case "loadimmediate":
			v, err := parseImmediateBody(strings.TrimSpace(text[1:]))
			if err != nil {
				toks = append(toks, token.Token{Kind: token.Error, Pos: p, Literal: text,
					Severity: token.SeverityError, Message: err.Error()})
			} else {
				toks = append(toks, token.Token{Kind: token.LoadImmediate, Pos: p, Literal: text, Value: v})
			}
		case "loadlabel":
			name := strings.TrimSpace(text[1:])
			toks = append(toks, token.Token{Kind: token.LoadLabel, Pos: p, Literal: text, Ident: name})
		case "section":
			toks = append(toks, token.Token{Kind: token.Section, Pos: p, Literal: text, Ident: strings.ToLower(text)})
		case "asciiasciz":
			toks = append(toks, token.Token{Kind: token.AsciiAsciz, Pos: p, Literal: text, Ident: strings.ToLower(text)})
		case "global":
			toks = append(toks, token.Token{Kind: token.Global, Pos: p, Literal: text})
		case "align":
			fields := strings.Fields(text)
			n, _ := strconv.ParseInt(fields[len(fields)-1], 10, 32)
			toks = append(toks, token.Token{Kind: token.Align, Pos: p, Literal: text, Value: int32(n)})
		case "skip":
			fields := strings.Fields(text)
			n, _ := strconv.ParseInt(fields[len(fields)-1], 10, 32)
			toks = append(toks, token.Token{Kind: token.Skip, Pos: p, Literal: text, Value: int32(n)})
		case "cpu":
			toks = append(toks, token.Token{Kind: token.Cpu, Pos: p, Literal: text})
		case "str":
			toks = append(toks, token.Token{Kind: token.StringLiteral, Pos: p, Literal: text, Raw: text[1 : len(text)-1]})
		case "register":
			toks = append(toks, token.Token{Kind: token.Register, Pos: p, Literal: text, Reg: strings.ToUpper(text)})
		case "identifier":
			toks = append(toks, token.Token{Kind: token.Instruction, Pos: p, Literal: text,
				Mnemonic: strings.ToUpper(text), Ident: text})
		case "separator":
			toks = append(toks, token.Token{Kind: token.Separator, Pos: p, Literal: text, Sep: text[0]})
		case "mismatch":
			toks = append(toks, token.Token{Kind: token.Mismatch, Pos: p, Literal: text})
		default:
			toks = append(toks, token.Token{Kind: token.Mismatch, Pos: p, Literal: text})
		}

		pos += matchEnd
	}

	toks = append(toks, token.Token{Kind: token.EOF, Pos: token.Position{Filename: filename, Line: line, Offset: pos}})
	return toks
}

func groupName(loc []int) string {
	for i := 1; i*2 < len(loc); i++ {
		if loc[i*2] >= 0 {
			return masterGroupNames[i]
		}
	}
	return ""
}

// fixMismatches implements the recovery policy described for the
// reference lexer. It repeats a single fix-up pass until no Mismatch
// tokens remain, which also makes the function idempotent: a
// second call on its own output is a no-op.
func fixMismatches(toks []token.Token, filename, source string) []token.Token {
	for {
		idx := firstMismatch(toks)
		if idx < 0 {
			return toks
		}
		toks = fixOne(toks, idx, filename, source)
	}
}

func firstMismatch(toks []token.Token) int {
	for i, t := range toks {
		if t.Kind == token.Mismatch {
			return i
		}
	}
	return -1
}

func fixOne(toks []token.Token, idx int, filename, source string) []token.Token {
	tok := toks[idx]
	o := tok.Pos.Offset

	switch {
	case o < len(source) && source[o] == '"' && !strings.Contains(source[o+1:], "\""):
		// Unterminated string: synthesize a closing quote at EOF and
		// re-lex from the mismatch offset.
		repaired := source + "\""
		rest := scan(filename, repaired, o, tok.Pos.Line)
		warn := token.Token{Kind: token.Error, Pos: tok.Pos,
			Literal: source[o:], Severity: token.SeverityWarning,
			Message: "unterminated string literal, synthesized closing quote at end of file"}
		return append(append(append([]token.Token{}, toks[:idx]...), warn), rest...)

	case o+1 < len(source) && source[o:o+2] == "/*" && !strings.Contains(source[o+2:], "*/"):
		repaired := source + "*/"
		rest := scan(filename, repaired, o, tok.Pos.Line)
		warn := token.Token{Kind: token.Error, Pos: tok.Pos,
			Literal: source[o:], Severity: token.SeverityWarning,
			Message: "unterminated block comment, synthesized closing */ at end of file"}
		return append(append(append([]token.Token{}, toks[:idx]...), warn), rest...)

	case isBadCharEscape(source, o):
		end := o + 4
		if end > len(source) {
			end = len(source)
		}
		errTok := token.Token{Kind: token.Error, Pos: tok.Pos, Literal: source[o:end],
			Severity: token.SeverityError, Message: "invalid escape sequence in character literal"}
		skipTo := nextIndexAtOrAfter(toks, idx, end)
		out := append([]token.Token{}, toks[:idx]...)
		out = append(out, errTok)
		out = append(out, toks[skipTo:]...)
		return out

	default:
		errTok := token.Token{Kind: token.Error, Pos: tok.Pos, Literal: tok.Literal,
			Severity: token.SeverityError, Message: fmt.Sprintf("unexpected character: %q", tok.Literal)}
		out := append([]token.Token{}, toks[:idx]...)
		out = append(out, errTok)
		out = append(out, toks[idx+1:]...)
		return out
	}
}

// isBadCharEscape recognizes `#'` or `='` followed by a backslash escape
// with no closing quote, e.g. `#'\n` with EOF or newline before the `'`.
func isBadCharEscape(source string, o int) bool {
	if o+2 >= len(source) {
		return false
	}
	if source[o] != '#' && source[o] != '=' {
		return false
	}
	if source[o+1] != '\'' || source[o+2] != '\\' {
		return false
	}
	if o+3 >= len(source) {
		return true
	}
	esc := source[o+3]
	if !strings.ContainsRune("0tnrfvbfBFNRTV", rune(esc)) {
		return false
	}
	return o+4 >= len(source) || source[o+4] != '\''
}

// nextIndexAtOrAfter finds the first token index at or after `from` whose
// offset is >= byteOffset, used to resync the token stream past a run of
// bytes that was already (mis-)tokenized during the initial scan.
func nextIndexAtOrAfter(toks []token.Token, from, byteOffset int) int {
	for i := from; i < len(toks); i++ {
		if toks[i].Pos.Offset >= byteOffset {
			return i
		}
	}
	return len(toks)
}
