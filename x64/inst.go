package x64

import "fmt"

// Inst is an instruction from the supported catalog. The set of implementations is closed:
//
// 	MovImmToReg  mov dst, imm
// 	MovRegToMem  mov [addr], src
// 	MovMemToReg  mov dst, [addr]
// 	ALU          add/sub/cmp dst, src
// 	SetCC        setcc dst (compound, see SetCC)
// 	Ret          ret
//
// String returns the Intel-syntax text form and Encode returns the machine code. Both are
// pure functions of the operands.
type Inst interface {
	isInst()
	String() string
	Encode() ([]byte, error)
}

// ALUOp selects a register-register ALU operation.
type ALUOp uint8

const (
	ADD ALUOp = iota + 1
	SUB
	CMP
)

var aluOpNames = [...]string{ADD: "add", SUB: "sub", CMP: "cmp"}

// Check if op is ADD, SUB or CMP.
func (op ALUOp) Valid() bool { return op >= ADD && op <= CMP }

// Get the mnemonic for the operation.
func (op ALUOp) Name() string {
	if !op.Valid() {
		return "?"
	}
	return aluOpNames[op]
}

func (op ALUOp) String() string { return op.Name() }

// MovImmToReg moves an immediate into a 64-bit register.
//
// Immediates that fit in 32 bits use the sign-extending C7 /0 id form, all others use B8+r io.
type MovImmToReg struct {
	Dst   Reg
	Value Imm
}

// MovRegToMem stores Src at the address held in Addr.
type MovRegToMem struct {
	Addr Reg
	Src  Reg
}

// MovMemToReg loads Dst from the address held in Addr.
type MovMemToReg struct {
	Dst  Reg
	Addr Reg
}

// ALU applies Op to Dst and Src, storing into Dst (CMP only sets flags).
type ALU struct {
	Op  ALUOp
	Dst Reg
	Src Reg
}

// SetCC sets Dst to 1 if the condition holds and to 0 otherwise.
//
// SetCC is a compound instruction: it renders as a single "setcc dst" but encodes two
// machine instructions, "mov dst, 0" followed by SETcc on the low byte of dst. The MOV
// form used does not touch the flags. Only R8 - R15 receive a REX prefix on the SETcc
// part, so for RSP, RBP, RSI and RDI the SETcc part addresses AH, CH, DH and BH.
type SetCC struct {
	Cond ConditionCode
	Dst  Reg
}

// Ret returns from the current procedure.
type Ret struct{}

func (MovImmToReg) isInst() {}
func (MovRegToMem) isInst() {}
func (MovMemToReg) isInst() {}
func (ALU) isInst()         {}
func (SetCC) isInst()       {}
func (Ret) isInst()         {}

func (i MovImmToReg) String() string { return Intel(i) }
func (i MovRegToMem) String() string { return Intel(i) }
func (i MovMemToReg) String() string { return Intel(i) }
func (i ALU) String() string         { return Intel(i) }
func (i SetCC) String() string       { return Intel(i) }
func (i Ret) String() string         { return Intel(i) }

func (i MovImmToReg) Encode() ([]byte, error) { return Encode(i) }
func (i MovRegToMem) Encode() ([]byte, error) { return Encode(i) }
func (i MovMemToReg) Encode() ([]byte, error) { return Encode(i) }
func (i ALU) Encode() ([]byte, error)         { return Encode(i) }
func (i SetCC) Encode() ([]byte, error)       { return Encode(i) }
func (i Ret) Encode() ([]byte, error)         { return Encode(i) }

// Intel renders inst in Intel syntax, e.g. "mov rax, 20" or "mov [rsp], rax". The text
// form is cosmetic and never affects the encoding.
func Intel(inst Inst) string {
	switch i := inst.(type) {
	case MovImmToReg:
		return fmt.Sprintf("mov %s, %s", i.Dst, i.Value)
	case MovRegToMem:
		return fmt.Sprintf("mov [%s], %s", i.Addr, i.Src)
	case MovMemToReg:
		return fmt.Sprintf("mov %s, [%s]", i.Dst, i.Addr)
	case ALU:
		return fmt.Sprintf("%s %s, %s", i.Op, i.Dst, i.Src)
	case SetCC:
		return fmt.Sprintf("%s %s", i.Cond.Setcc(), i.Dst)
	case Ret:
		return "ret"
	}
	return fmt.Sprintf("<unknown %T>", inst)
}
