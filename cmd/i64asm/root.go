package main

import (
	"io"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootParams struct {
	verbose bool
}

var configuredRootParams rootParams

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   path.Base(os.Args[0]),
	Short: "Miniature x86-64 assembler",
	Long:  "Encode instruction programs described in YAML into x86-64 machine code.",
}

func init() {
	RootCommand.PersistentFlags().BoolVarP(&configuredRootParams.verbose, "verbose", "v", false, "log every encoded instruction")
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	logger := &logrus.Logger{
		Out:       out,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
