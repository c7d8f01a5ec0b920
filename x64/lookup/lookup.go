// package lookup resolves textual register, operation and condition names to x64 values.
package lookup

import (
	"github.com/JacquesLucke/i64lang/x64"
)

const maxNameLength = 8

var (
	regMap = func() map[string]x64.Reg {
		m := make(map[string]x64.Reg, 16)
		for _, r := range x64.Regs() {
			m[r.Name()] = r
		}
		return m
	}()

	aluOpMap = map[string]x64.ALUOp{
		"add": x64.ADD,
		"sub": x64.SUB,
		"cmp": x64.CMP,
	}

	ccMap = func() map[string]x64.ConditionCode {
		m := make(map[string]x64.ConditionCode, 6)
		for _, cc := range x64.Conditions() {
			m[cc.Suffix()] = cc
		}
		m["z"] = x64.CCEq
		return m
	}()
)

// Lookup the register for a name such as "rax" or "R13". The name will be converted to
// lowercase if necessary.
func Reg(name string) (x64.Reg, bool) {
	if len(name) == 0 || len(name) >= maxNameLength {
		return 0, false
	}
	r, ok := regMap[lowerCase(name)]
	return r, ok
}

// Lookup the ALU operation for a mnemonic ("add", "sub" or "cmp").
func ALUOp(mnemonic string) (x64.ALUOp, bool) {
	if len(mnemonic) == 0 || len(mnemonic) >= maxNameLength {
		return 0, false
	}
	op, ok := aluOpMap[lowerCase(mnemonic)]
	return op, ok
}

// Lookup the condition code for a suffix ("ge") or a conditional-set mnemonic ("setge").
//
// The alternate forms printed by disassemblers are accepted too: "z" and "nz" for equality,
// and a negated suffix ("nl", "nle") for the inverse of a supported condition.
func Condition(name string) (x64.ConditionCode, bool) {
	if len(name) == 0 || len(name) >= maxNameLength {
		return 0, false
	}
	name = lowerCase(name)
	if len(name) > 3 && name[:3] == "set" {
		name = name[3:]
	}
	if cc, ok := ccMap[name]; ok {
		return cc, true
	}
	if len(name) > 1 && name[0] == 'n' && name[1] != 'n' {
		if cc, ok := ccMap[name[1:]]; ok {
			return x64.Invcc(cc), true
		}
	}
	return 0, false
}

func lowerCase(s string) string {
	var b [maxNameLength]byte
	var ch byte
	_ = b[len(s)] // lift bounds-checks out of the loop below (golang.org/issue/14808)
	i, changed := 0, false
loop: // functions containing for-loops cannot currently be inlined (golang.org/issue/14768)
	ch = s[i]
	b[i] = ch | ((ch & 0x40) >> 1)
	changed = changed || b[i] != ch
	i++
	if i < len(s) {
		goto loop
	}
	if !changed {
		return s
	}
	return string(b[:len(s)])
}
