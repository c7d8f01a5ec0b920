package x64

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

// Encoded instructions are cross-checked against the x86asm decoder.

var decodedRegs = map[Reg]x86asm.Reg{
	RAX: x86asm.RAX, RCX: x86asm.RCX, RDX: x86asm.RDX, RBX: x86asm.RBX,
	RSP: x86asm.RSP, RBP: x86asm.RBP, RSI: x86asm.RSI, RDI: x86asm.RDI,
	R8: x86asm.R8, R9: x86asm.R9, R10: x86asm.R10, R11: x86asm.R11,
	R12: x86asm.R12, R13: x86asm.R13, R14: x86asm.R14, R15: x86asm.R15,
}

// SETcc writes the low byte of extended registers, and AH/CH/DH/BH for RSP/RBP/RSI/RDI
// since no REX prefix is emitted for legacy registers.
var decodedByteRegs = map[Reg]x86asm.Reg{
	RAX: x86asm.AL, RCX: x86asm.CL, RDX: x86asm.DL, RBX: x86asm.BL,
	RSP: x86asm.AH, RBP: x86asm.CH, RSI: x86asm.DH, RDI: x86asm.BH,
	R8: x86asm.R8B, R9: x86asm.R9B, R10: x86asm.R10B, R11: x86asm.R11B,
	R12: x86asm.R12B, R13: x86asm.R13B, R14: x86asm.R14B, R15: x86asm.R15B,
}

var decodedSetcc = map[ConditionCode]x86asm.Op{
	CCEq:        x86asm.SETE,
	CCNeq:       x86asm.SETNE,
	CCSignedLT:  x86asm.SETL,
	CCSignedGTE: x86asm.SETGE,
	CCSignedLTE: x86asm.SETLE,
	CCSignedGT:  x86asm.SETG,
}

var decodedALU = map[ALUOp]x86asm.Op{ADD: x86asm.ADD, SUB: x86asm.SUB, CMP: x86asm.CMP}

// decodeAll decodes every instruction in code, failing unless the decoded lengths cover code exactly.
func decodeAll(t *testing.T, code []byte) []x86asm.Inst {
	t.Helper()
	var insts []x86asm.Inst
	for pc := 0; pc < len(code); {
		decoded, err := x86asm.Decode(code[pc:], 64)
		if err != nil {
			t.Fatalf("decode %#x at %d: %v", code, pc, err)
		}
		insts = append(insts, decoded)
		pc += decoded.Len
	}
	return insts
}

func TestEncode(t *testing.T) {
	asm := NewAssembler(make([]byte, 256))
	_expect := func(s ...string) {
		t.Helper()
		decoded := decodeAll(t, asm.Code())
		if len(decoded) != len(s) {
			t.Fatalf("decoded %d instructions from %#x, expected %d", len(decoded), asm.Code(), len(s))
		}
		for i, d := range decoded {
			intel := x86asm.IntelSyntax(d, 0, nil)
			if intel != s[i] {
				t.Logf("encoded inst = %#x\n", asm.Code())
				t.Fatalf("decoded inst = %s != %s", intel, s[i])
			}
		}
	}
	check := func(inst Inst, expect ...string) {
		t.Helper()
		asm.Reset(nil)
		if err := asm.Inst(inst); err != nil {
			t.Fatal(err)
		}
		_expect(expect...)
	}

	check(MovImmToReg{RAX, Int(20)}, "mov rax, 0x14")
	check(MovImmToReg{R14, Int(42)}, "mov r14, 0x2a")
	check(MovImmToReg{RBX, Int(math.MaxInt32)}, "mov rbx, 0x7fffffff")
	check(MovImmToReg{RAX, Int(math.MaxInt64)}, "mov rax, 0x7fffffffffffffff")
	check(MovImmToReg{R12, Uint(12345678900000000001)}, "mov r12, 0xab54a98ca1890801")
	check(MovImmToReg{RDX, Int(98765432111)}, "mov rdx, 0x16fee0e52f")

	check(MovRegToMem{RAX, RBX}, "mov qword ptr [rax], rbx")
	check(MovRegToMem{RSP, RAX}, "mov qword ptr [rsp], rax")
	check(MovRegToMem{R12, R8}, "mov qword ptr [r12], r8")
	check(MovRegToMem{RBP, RCX}, "mov qword ptr [rbp], rcx")
	check(MovRegToMem{R13, RBX}, "mov qword ptr [r13], rbx")

	check(MovMemToReg{RBX, RDX}, "mov rbx, qword ptr [rdx]")
	check(MovMemToReg{RAX, RSP}, "mov rax, qword ptr [rsp]")
	check(MovMemToReg{RDX, R12}, "mov rdx, qword ptr [r12]")
	check(MovMemToReg{RAX, RBP}, "mov rax, qword ptr [rbp]")
	check(MovMemToReg{RBX, R13}, "mov rbx, qword ptr [r13]")

	check(ALU{ADD, R9, RBP}, "add r9, rbp")
	check(ALU{SUB, RAX, RBX}, "sub rax, rbx")
	check(ALU{CMP, R10, R11}, "cmp r10, r11")

	check(SetCC{CCEq, RAX}, "mov rax, 0x0", "setz al")
	check(SetCC{CCNeq, R9}, "mov r9, 0x0", "setnz r9b")
	check(SetCC{CCSignedGT, RSP}, "mov rsp, 0x0", "setnle ah")
	check(SetCC{CCSignedGTE, RBX}, "mov rbx, 0x0", "setnl bl")
	check(SetCC{CCSignedLT, R15}, "mov r15, 0x0", "setl r15b")
	check(SetCC{CCSignedLTE, RDX}, "mov rdx, 0x0", "setle dl")

	check(Ret{}, "ret")
}

func TestEncodeAllRegisters(t *testing.T) {
	for _, a := range Regs() {
		for _, b := range Regs() {
			code, err := Encode(MovRegToMem{Addr: a, Src: b})
			if err != nil {
				t.Fatal(err)
			}
			d := decodeAll(t, code)[0]
			mem, ok := d.Args[0].(x86asm.Mem)
			if d.Op != x86asm.MOV || !ok || mem.Base != decodedRegs[a] || mem.Index != 0 || mem.Disp != 0 || d.Args[1] != decodedRegs[b] {
				t.Fatalf("mov [%s], %s: decoded %s", a, b, x86asm.IntelSyntax(d, 0, nil))
			}

			code, err = Encode(MovMemToReg{Dst: a, Addr: b})
			if err != nil {
				t.Fatal(err)
			}
			d = decodeAll(t, code)[0]
			mem, ok = d.Args[1].(x86asm.Mem)
			if d.Op != x86asm.MOV || !ok || mem.Base != decodedRegs[b] || mem.Index != 0 || mem.Disp != 0 || d.Args[0] != decodedRegs[a] {
				t.Fatalf("mov %s, [%s]: decoded %s", a, b, x86asm.IntelSyntax(d, 0, nil))
			}

			for op, expect := range decodedALU {
				code, err = Encode(ALU{Op: op, Dst: a, Src: b})
				if err != nil {
					t.Fatal(err)
				}
				d = decodeAll(t, code)[0]
				if d.Op != expect || d.Args[0] != decodedRegs[a] || d.Args[1] != decodedRegs[b] {
					t.Fatalf("%s %s, %s: decoded %s", op, a, b, x86asm.IntelSyntax(d, 0, nil))
				}
			}
		}
	}
}

func TestEncodeImmAllRegisters(t *testing.T) {
	values := []Imm{Int(0), Int(1), Int(-1), Int(math.MinInt32), Int(1 << 40), Int(math.MinInt64), Uint(math.MaxUint64)}
	for _, r := range Regs() {
		for _, v := range values {
			code, err := Encode(MovImmToReg{Dst: r, Value: v})
			if err != nil {
				t.Fatal(err)
			}
			d := decodeAll(t, code)
			if len(d) != 1 || d[0].Op != x86asm.MOV || d[0].Args[0] != decodedRegs[r] {
				t.Fatalf("mov %s, %s: decoded %v", r, v, d)
			}
			// x86asm sign-extends both immediate forms to int64
			if got := uint64(d[0].Args[1].(x86asm.Imm)); got != v.Big().Uint64() && int64(got) != v.Big().Int64() {
				t.Fatalf("mov %s, %s: decoded immediate %#x", r, v, got)
			}
		}
	}
}

func TestEncodeSetccAllRegisters(t *testing.T) {
	for _, r := range Regs() {
		for _, cc := range Conditions() {
			code, err := Encode(SetCC{Cond: cc, Dst: r})
			if err != nil {
				t.Fatal(err)
			}
			d := decodeAll(t, code)
			if len(d) != 2 {
				t.Fatalf("%s %s: decoded %d instructions", cc.Setcc(), r, len(d))
			}
			if d[0].Op != x86asm.MOV || d[0].Args[0] != decodedRegs[r] || d[0].Args[1] != x86asm.Imm(0) {
				t.Fatalf("%s %s: decoded %s", cc.Setcc(), r, x86asm.IntelSyntax(d[0], 0, nil))
			}
			if d[1].Op != decodedSetcc[cc] || d[1].Args[0] != decodedByteRegs[r] {
				t.Fatalf("%s %s: decoded %s", cc.Setcc(), r, x86asm.IntelSyntax(d[1], 0, nil))
			}
		}
	}
}

func TestAssemblerListing(t *testing.T) {
	asm := NewAssembler(make([]byte, 4))
	asm.RI(RAX, Int(20))
	asm.RI(RCX, Int(22))
	asm.RR(ADD, RAX, RCX)
	asm.MR(RSP, RAX)
	asm.RM(RDX, RBP)
	asm.Setcc(CCEq, R9)
	asm.Ret()
	if err := asm.Err(); err != nil {
		t.Fatal(err)
	}

	lines := asm.Listing()
	expect := []struct {
		pc    uint32
		intel string
	}{
		{0, "mov rax, 20"},
		{7, "mov rcx, 22"},
		{14, "add rax, rcx"},
		{17, "mov [rsp], rax"},
		{21, "mov rdx, [rbp]"},
		{25, "sete r9"},
		{36, "ret"},
	}
	if len(lines) != len(expect) {
		t.Fatalf("listing has %d lines, expected %d", len(lines), len(expect))
	}
	total := 0
	for i, line := range lines {
		if line.PC != expect[i].pc || line.Inst.String() != expect[i].intel {
			t.Fatalf("line %d = %d %s, expected %d %s", i, line.PC, line.Inst, expect[i].pc, expect[i].intel)
		}
		total += len(line.Code)
	}
	if asm.PC() != 37 || total != 37 || len(asm.Code()) != 37 {
		t.Fatalf("pc = %d, listed %d bytes, code %d bytes", asm.PC(), total, len(asm.Code()))
	}

	asm.Reset(nil)
	if asm.PC() != 0 || len(asm.Listing()) != 0 {
		t.Fatalf("reset left pc = %d, %d lines", asm.PC(), len(asm.Listing()))
	}
}

func TestAssemblerStickyError(t *testing.T) {
	asm := NewAssembler(nil)
	asm.RI(RAX, Int(1))
	err := asm.Setcc(ConditionCode(0x3), RAX)
	if !errors.Is(err, ErrInvalidCondition) {
		t.Fatalf("expected ErrInvalidCondition, got %v", err)
	}
	if err2 := asm.Ret(); err2 != err {
		t.Fatalf("expected sticky error, got %v", err2)
	}
	if asm.PC() != 7 || len(asm.Listing()) != 1 {
		t.Fatalf("failed instructions must not be encoded: pc = %d", asm.PC())
	}
	if !strings.HasPrefix(err.Error(), "set? rax: ") {
		t.Fatalf("error does not name the instruction: %v", err)
	}

	asm.Reset(nil)
	if asm.Err() != nil || asm.Ret() != nil {
		t.Fatal("reset must clear the error")
	}
}

func TestIntel(t *testing.T) {
	for inst, expect := range map[Inst]string{
		MovImmToReg{R8, Int(-1234567890000)}: "mov r8, -1234567890000",
		MovRegToMem{R15, R9}:                  "mov [r15], r9",
		MovMemToReg{R12, R15}:                 "mov r12, [r15]",
		ALU{CMP, RAX, RBX}:                    "cmp rax, rbx",
		SetCC{CCSignedLTE, R12}:               "setle r12",
		Ret{}:                                 "ret",
	} {
		if s := Intel(inst); s != expect {
			t.Fatalf("Intel(%#v) = %s", inst, s)
		}
		if s := fmt.Sprint(inst); s != expect {
			t.Fatalf("fmt.Sprint(%#v) = %s", inst, s)
		}
	}
}

func TestRegs(t *testing.T) {
	regs := Regs()
	if len(regs) != 16 {
		t.Fatalf("expected 16 registers, got %d", len(regs))
	}
	seen := map[string]bool{}
	for i, r := range regs {
		if !r.Valid() || r.Group() != uint8(i/8) || r.Num() != uint8(i%8) {
			t.Fatalf("register %d: %s group %d number %d", i, r, r.Group(), r.Num())
		}
		if r.IsExtended() != (i >= 8) {
			t.Fatalf("%s: IsExtended = %v", r, r.IsExtended())
		}
		if r.Bits().Len() != 3 || r.Bits().Uint().Int64() != int64(r.Num()) {
			t.Fatalf("%s: bits %s", r, r.Bits())
		}
		if seen[r.Name()] {
			t.Fatalf("duplicate register name %s", r.Name())
		}
		seen[r.Name()] = true
	}
	if RSP.Name() != "rsp" || R13.String() != "r13" || Reg(0).Name() != "invalid" {
		t.Fatal("unexpected register names")
	}
}

func TestConditionCodes(t *testing.T) {
	for cc, suffix := range map[ConditionCode]string{
		CCEq: "e", CCNeq: "ne", CCSignedLT: "l", CCSignedGTE: "ge", CCSignedLTE: "le", CCSignedGT: "g",
	} {
		if !cc.Valid() || cc.Suffix() != suffix || cc.Setcc() != "set"+suffix {
			t.Fatalf("condition %#x: suffix %s", uint8(cc), cc.Suffix())
		}
		if Invcc(Invcc(cc)) != cc || Invcc(cc) == cc {
			t.Fatalf("condition %s: inverse %s", cc.Suffix(), Invcc(cc).Suffix())
		}
	}
	if Invcc(CCEq) != CCNeq || Invcc(CCSignedLT) != CCSignedGTE || Invcc(CCSignedGT) != CCSignedLTE {
		t.Fatal("unexpected inverse conditions")
	}
	if ConditionCode(0).Valid() || ConditionCode(0x10).Valid() {
		t.Fatal("unexpected valid condition")
	}
}

func TestAssemblerUsesBufferCapacity(t *testing.T) {
	buf := make([]byte, 0, 16)
	asm := NewAssembler(buf)
	asm.RI(RAX, Int(20))
	asm.Ret()
	code := asm.Code()
	if len(code) != 8 || &code[0] != &buf[:1][0] {
		t.Fatalf("code was not encoded into the caller's buffer")
	}

	asm.RI(RCX, Int(22))
	asm.RI(RDX, Int(22))
	if asm.Err() != nil || asm.PC() != 22 || &asm.Code()[0] == &buf[:1][0] {
		t.Fatalf("overflowing the buffer must reallocate: pc = %d", asm.PC())
	}
	if asm.Code()[7] != 0xc3 {
		t.Fatalf("reallocation lost encoded bytes: %#x", asm.Code())
	}

	asm.Reset(make([]byte, 0, 32))
	asm.Ret()
	if asm.PC() != 1 || asm.Code()[0] != 0xc3 {
		t.Fatalf("reset buffer: %#x", asm.Code())
	}
}
