package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JacquesLucke/i64lang/jit"
	"github.com/JacquesLucke/i64lang/program"
)

type runParams struct {
	verbose bool
}

var configuredRunParams runParams

var runCommand = &cobra.Command{
	Use:   "run <path>",
	Short: "Execute a program and print RAX",
	Long: `Encode a YAML instruction program, map it into executable memory and call it.

The program must end with ret and must not modify rsp, rbp, r14 or r15. The final
value of rax is printed. Only supported on linux/amd64.`,
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("specify exactly one program file")
		}
		return nil
	},
	Run: func(_ *cobra.Command, args []string) {
		configuredRunParams.verbose = configuredRootParams.verbose
		os.Exit(run(args, &configuredRunParams, os.Stdout, os.Stderr))
	},
}

func init() {
	RootCommand.AddCommand(runCommand)
}

func run(args []string, params *runParams, stdout, stderr io.Writer) int {
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
	fn, err := jit.Compile(asm.Code())
	if err != nil {
		logger.WithError(err).Error("compile failed")
		return 1
	}
	defer fn.Close()

	logger.WithField("bytes", len(asm.Code())).Debug("calling")
	fmt.Fprintln(stdout, fn.Call())
	return 0
}
