// Package program reads instruction sequences described in YAML and assembles them.
//
// A program names its instructions by mnemonic and operand fields:
//
//	name: answer
//	instructions:
//	  - {op: mov, dst: rax, imm: 20}
//	  - {op: mov, dst: rcx, imm: 22}
//	  - {op: add, dst: rax, src: rcx}
//	  - {op: ret}
//
// The form of mov is chosen by its operands: dst and imm move an immediate, addr and src
// store to memory, dst and addr load from memory.
package program

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JacquesLucke/i64lang/x64"
	"github.com/JacquesLucke/i64lang/x64/lookup"
)

var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrUnknownOp          = errors.New("unknown op")
	ErrEmptyProgram       = errors.New("program has no instructions")
)

// Program is a named instruction sequence.
type Program struct {
	Name         string        `yaml:"name"`
	Instructions []Instruction `yaml:"instructions"`
}

// Instruction describes a single instruction. Unused operand fields are left empty.
type Instruction struct {
	Op   string     `yaml:"op"`
	Dst  string     `yaml:"dst,omitempty"`
	Src  string     `yaml:"src,omitempty"`
	Addr string     `yaml:"addr,omitempty"`
	Imm  *Immediate `yaml:"imm,omitempty"`
}

// Immediate is an integer operand of any size. It is written as a YAML scalar in decimal,
// or with a 0x, 0o or 0b prefix.
type Immediate struct {
	x64.Imm
}

func (i *Immediate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: immediate must be a scalar", value.Line)
	}
	imm, err := x64.ParseImm(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	i.Imm = imm
	return nil
}

func (i Immediate) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: i.Imm.String()}, nil
}

// Parse decodes a program from YAML. Unknown fields are rejected.
func Parse(data []byte) (*Program, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a program from a YAML stream.
func Read(r io.Reader) (*Program, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	p := &Program{}
	if err := dec.Decode(p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyProgram
		}
		return nil, fmt.Errorf("parse program: %w", err)
	}
	if len(p.Instructions) == 0 {
		return nil, ErrEmptyProgram
	}
	return p, nil
}

// Load reads and decodes the program at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Marshal encodes p as YAML.
func (p *Program) Marshal() ([]byte, error) { return yaml.Marshal(p) }

// Insts resolves every instruction. The first failure is returned with its index.
func (p *Program) Insts() ([]x64.Inst, error) {
	insts := make([]x64.Inst, 0, len(p.Instructions))
	for idx, in := range p.Instructions {
		inst, err := in.Inst()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", idx, err)
		}
		insts = append(insts, inst)
	}
	return insts, nil
}

// Assemble resolves and encodes every instruction. The returned assembler holds the code
// and its listing.
func (p *Program) Assemble() (*x64.Assembler, error) {
	insts, err := p.Insts()
	if err != nil {
		return nil, err
	}
	asm := x64.NewAssembler(make([]byte, 0, 16*len(insts)))
	for idx, inst := range insts {
		if err := asm.Inst(inst); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", idx, err)
		}
	}
	return asm, nil
}

// Inst resolves the described instruction.
func (in Instruction) Inst() (x64.Inst, error) {
	if strings.EqualFold(in.Op, "mov") {
		return in.mov()
	}
	if op, ok := lookup.ALUOp(in.Op); ok {
		if err := in.operands(true, true, false, false); err != nil {
			return nil, err
		}
		dst, src, err := in.regs(in.Dst, in.Src)
		if err != nil {
			return nil, err
		}
		return x64.ALU{Op: op, Dst: dst, Src: src}, nil
	}
	if len(in.Op) > 3 && strings.EqualFold(in.Op[:3], "set") {
		if cc, ok := lookup.Condition(in.Op); ok {
			if err := in.operands(true, false, false, false); err != nil {
				return nil, err
			}
			dst, _, err := in.regs(in.Dst, "")
			if err != nil {
				return nil, err
			}
			return x64.SetCC{Cond: cc, Dst: dst}, nil
		}
	}
	if strings.EqualFold(in.Op, "ret") {
		if err := in.operands(false, false, false, false); err != nil {
			return nil, err
		}
		return x64.Ret{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownOp, in.Op)
}

func (in Instruction) mov() (x64.Inst, error) {
	switch {
	case in.Imm != nil:
		if err := in.operands(true, false, false, true); err != nil {
			return nil, err
		}
		dst, _, err := in.regs(in.Dst, "")
		if err != nil {
			return nil, err
		}
		return x64.MovImmToReg{Dst: dst, Value: in.Imm.Imm}, nil
	case in.Src != "":
		if err := in.operands(false, true, true, false); err != nil {
			return nil, err
		}
		addr, src, err := in.regs(in.Addr, in.Src)
		if err != nil {
			return nil, err
		}
		return x64.MovRegToMem{Addr: addr, Src: src}, nil
	default:
		if err := in.operands(true, false, true, false); err != nil {
			return nil, err
		}
		dst, addr, err := in.regs(in.Dst, in.Addr)
		if err != nil {
			return nil, err
		}
		return x64.MovMemToReg{Dst: dst, Addr: addr}, nil
	}
}

// Check that exactly the wanted operand fields are set.
func (in Instruction) operands(dst, src, addr, imm bool) error {
	check := func(name string, want, have bool) error {
		switch {
		case want && !have:
			return fmt.Errorf("%w: %s requires %s", ErrInvalidInstruction, in.Op, name)
		case !want && have:
			return fmt.Errorf("%w: %s does not take %s", ErrInvalidInstruction, in.Op, name)
		}
		return nil
	}
	if err := check("dst", dst, in.Dst != ""); err != nil {
		return err
	}
	if err := check("src", src, in.Src != ""); err != nil {
		return err
	}
	if err := check("addr", addr, in.Addr != ""); err != nil {
		return err
	}
	return check("imm", imm, in.Imm != nil)
}

// Resolve up to two register names; an empty name resolves to the zero Reg.
func (in Instruction) regs(a, b string) (ra, rb x64.Reg, err error) {
	resolve := func(name string) (x64.Reg, error) {
		if name == "" {
			return 0, nil
		}
		r, ok := lookup.Reg(name)
		if !ok {
			return 0, fmt.Errorf("%w: %q", x64.ErrInvalidRegister, name)
		}
		return r, nil
	}
	if ra, err = resolve(a); err != nil {
		return
	}
	rb, err = resolve(b)
	return
}
