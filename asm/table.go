package asm

import "strings"

// decoders maps every accepted mnemonic to its decodeFunc. Keys are
// upper-cased; lookupDecoder looks up the trimmed, upper-cased mnemonic here.
var decoders map[string]decodeFunc

func init() {
	decoders = map[string]decodeFunc{
		"MOV":  decodeMov(false),
		"MOVN": decodeMov(true),

		"LDR":   decodeLoad(32, false, true),
		"LDRH":  decodeLoad(16, false, false),
		"LDRB":  decodeLoad(8, false, false),
		"LDRSH": decodeLoad(16, true, false),
		"LDRSB": decodeLoad(8, true, false),

		"STR":  decodeStore(32),
		"STRH": decodeStore(16),
		"STRB": decodeStore(8),

		"PUSH": decodePush,
		"POP":  decodePop,

		"ADD": decodeArith(false, false, true),
		"ADC": decodeArith(false, true, false),
		"SUB": decodeArith(true, false, false),
		"SBC": decodeArith(true, true, false),

		"AND": decodeBitwise(bitAND),
		"EOR": decodeBitwise(bitEOR),
		"ORR": decodeBitwise(bitORR),
		"BIC": decodeBitwise(bitBIC),

		"CMP": decodeCompare(cmpCMP),
		"CMN": decodeCompare(cmpCMN),
		"TST": decodeCompare(cmpTST),

		"LSL": decodeShift(shiftLSL),
		"LSR": decodeShift(shiftLSR),
		"ASR": decodeShift(shiftASR),
		"ROR": decodeShift(shiftROR),
		"MUL": decodeMul,

		"SXTH": decodeExtend(16, true),
		"SXTB": decodeExtend(8, true),
		"UXTH": decodeExtend(16, false),
		"UXTB": decodeExtend(8, false),

		"BL":  decodeBL,
		"BX":  decodeBX(false),
		"BLX": decodeBX(true),
	}
	for mnemonic, c := range conditions {
		decoders[mnemonic] = decodeBranch(c)
	}
}

// lookupDecoder finds the decodeFunc for a mnemonic, case-insensitively.
func lookupDecoder(mnemonic string) (decodeFunc, bool) {
	d, ok := decoders[strings.ToUpper(strings.TrimSpace(mnemonic))]
	return d, ok
}
