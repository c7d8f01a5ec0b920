package x64

// ConditionCode is the low nibble shared by the Jcc/SETcc/CMOVcc opcode families.
type ConditionCode byte

const (
	CCEq        ConditionCode = 4
	CCNeq       ConditionCode = 5
	CCSignedLT  ConditionCode = 0xC
	CCSignedGTE ConditionCode = 0xD
	CCSignedLTE ConditionCode = 0xE
	CCSignedGT  ConditionCode = 0xF
)

var ccSuffixTable = [...]string{
	"e",  // CCEq
	"ne", // CCNeq
	"l",  // CCSignedLT
	"ge", // CCSignedGTE
	"le", // CCSignedLTE
	"g",  // CCSignedGT
}

var invccTable = [...]ConditionCode{
	CCNeq,       // CCEq
	CCEq,        // CCNeq
	CCSignedGTE, // CCSignedLT
	CCSignedLT,  // CCSignedGTE
	CCSignedGT,  // CCSignedLTE
	CCSignedLTE, // CCSignedGT
}

func ccTableOffset(cc ConditionCode) (uint8, bool) {
	switch {
	case cc == CCEq || cc == CCNeq:
		return uint8(cc - CCEq), true
	case cc >= CCSignedLT && cc <= CCSignedGT:
		return uint8((CCNeq + 1) - CCEq + (cc - CCSignedLT)), true
	}
	return 0, false
}

// Check if cc is one of the supported condition codes.
func (cc ConditionCode) Valid() bool {
	_, ok := ccTableOffset(cc)
	return ok
}

// Get the mnemonic suffix for the condition code, e.g. "ge" for CCSignedGTE.
func (cc ConditionCode) Suffix() string {
	off, ok := ccTableOffset(cc)
	if !ok {
		return "?"
	}
	return ccSuffixTable[off]
}

// Get the conditional-set mnemonic for the condition code, e.g. "setge".
func (cc ConditionCode) Setcc() string { return "set" + cc.Suffix() }

// Invert a condition code. Unsupported codes are returned unchanged.
func Invcc(cc ConditionCode) ConditionCode {
	off, ok := ccTableOffset(cc)
	if !ok {
		return cc
	}
	return invccTable[off]
}

// Conditions returns the supported condition codes.
func Conditions() []ConditionCode {
	return []ConditionCode{CCEq, CCNeq, CCSignedLT, CCSignedGTE, CCSignedLTE, CCSignedGT}
}
