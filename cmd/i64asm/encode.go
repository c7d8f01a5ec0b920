package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/arch/x86/x86asm"

	"github.com/JacquesLucke/i64lang/program"
	"github.com/JacquesLucke/i64lang/x64"
	"github.com/JacquesLucke/i64lang/x64/disasm"
)

const (
	formatHex     = "hex"
	formatListing = "listing"
	formatRaw     = "raw"

	formatEnv = "I64ASM_FORMAT"
)

type encodeParams struct {
	format  *enumFlag
	output  string
	verify  bool
	verbose bool
}

var configuredEncodeParams = encodeParams{
	format: newEnumFlag(formatHex, []string{formatHex, formatListing, formatRaw}),
}

var encodeCommand = &cobra.Command{
	Use:   "encode <path>",
	Short: "Encode a program into machine code",
	Long: `Encode a YAML instruction program into x86-64 machine code.

The code is printed as a hex string, as a listing of every instruction with its
offset and bytes, or written as raw bytes. The default format may be set with the
` + formatEnv + ` environment variable.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("specify exactly one program file")
		}
		return flagFromEnv(cmd, "format", formatEnv)
	},
	Run: func(_ *cobra.Command, args []string) {
		configuredEncodeParams.verbose = configuredRootParams.verbose
		os.Exit(encode(args, &configuredEncodeParams, os.Stdout, os.Stderr))
	},
}

func init() {
	encodeCommand.Flags().VarP(configuredEncodeParams.format, "format", "f", "set output format")
	encodeCommand.Flags().StringVarP(&configuredEncodeParams.output, "output", "o", "", "write raw output to a file instead of stdout")
	encodeCommand.Flags().BoolVar(&configuredEncodeParams.verify, "verify", false, "check the encoding against the disassembler")
	RootCommand.AddCommand(encodeCommand)
}

func encode(args []string, params *encodeParams, stdout, stderr io.Writer) int {
	logger := newLogger(stderr, params.verbose)

	p, err := program.Load(args[0])
	if err != nil {
		logger.WithError(err).Error("load failed")
		return 1
	}
	asm, err := p.Assemble()
	if err != nil {
		logger.WithError(err).WithField("program", p.Name).Error("encoding failed")
		return 1
	}
	lines := asm.Listing()
	for _, line := range lines {
		logger.WithFields(logrus.Fields{
			"pc":    line.PC,
			"bytes": hex.EncodeToString(line.Code),
			"inst":  line.Inst.String(),
		}).Debug("encoded")
	}

	if params.verify {
		if err := verify(lines); err != nil {
			logger.WithError(err).Error("verification failed")
			return 1
		}
		logger.WithField("instructions", len(lines)).Debug("verified")
	}

	switch params.format.String() {
	case formatListing:
		printListing(stdout, lines)
	case formatRaw:
		if err := writeRaw(params.output, stdout, asm.Code()); err != nil {
			logger.WithError(err).Error("write failed")
			return 1
		}
	default:
		fmt.Fprintln(stdout, hex.EncodeToString(asm.Code()))
	}
	return 0
}

func printListing(out io.Writer, lines []x64.Line) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"PC", "Bytes", "Instruction"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, line := range lines {
		table.Append([]string{fmt.Sprintf("%04x", line.PC), hex.EncodeToString(line.Code), line.Inst.String()})
	}
	table.Render()
}

func writeRaw(path string, stdout io.Writer, code []byte) error {
	if path == "" {
		_, err := stdout.Write(code)
		return err
	}
	return os.WriteFile(path, code, 0o644)
}

var (
	decodedALU = map[x64.ALUOp]x86asm.Op{x64.ADD: x86asm.ADD, x64.SUB: x86asm.SUB, x64.CMP: x86asm.CMP}

	decodedSetcc = map[x64.ConditionCode]x86asm.Op{
		x64.CCEq:        x86asm.SETE,
		x64.CCNeq:       x86asm.SETNE,
		x64.CCSignedLT:  x86asm.SETL,
		x64.CCSignedGTE: x86asm.SETGE,
		x64.CCSignedLTE: x86asm.SETLE,
		x64.CCSignedGT:  x86asm.SETG,
	}
)

// Get the machine instructions inst is expected to decode into.
func expectedOps(inst x64.Inst) []x86asm.Op {
	switch i := inst.(type) {
	case x64.MovImmToReg, x64.MovRegToMem, x64.MovMemToReg:
		return []x86asm.Op{x86asm.MOV}
	case x64.ALU:
		return []x86asm.Op{decodedALU[i.Op]}
	case x64.SetCC:
		return []x86asm.Op{x86asm.MOV, decodedSetcc[i.Cond]}
	case x64.Ret:
		return []x86asm.Op{x86asm.RET}
	}
	return nil
}

// Decode every encoded instruction and check that its bytes decode completely into the
// expected machine instructions.
func verify(lines []x64.Line) error {
	for _, line := range lines {
		var decoded []x86asm.Op
		err := disasm.Code(line.Code, func(_ int, inst x86asm.Inst) bool {
			decoded = append(decoded, inst.Op)
			return true
		})
		if err != nil {
			return fmt.Errorf("%v at %#x: %w", line.Inst, line.PC, err)
		}
		want := expectedOps(line.Inst)
		if !slices.Equal(decoded, want) {
			return fmt.Errorf("%v at %#x: decoded as %v, expected %v", line.Inst, line.PC, decoded, want)
		}
	}
	return nil
}
