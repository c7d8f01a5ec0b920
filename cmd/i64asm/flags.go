package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*enumFlag)(nil)

// enumFlag implements the pflag.Value interface for a fixed set of values.
type enumFlag struct {
	defaultValue string
	vs           []string
	i            int
}

func newEnumFlag(defaultValue string, vs []string) *enumFlag {
	return &enumFlag{defaultValue: defaultValue, vs: vs, i: -1}
}

func (f *enumFlag) Type() string { return "{" + strings.Join(f.vs, ",") + "}" }

func (f *enumFlag) String() string {
	if f.i == -1 {
		return f.defaultValue
	}
	return f.vs[f.i]
}

func (f *enumFlag) Set(s string) error {
	for i := range f.vs {
		if f.vs[i] == s {
			f.i = i
			return nil
		}
	}
	return fmt.Errorf("must be one of %v", f.Type())
}

// Apply the value of the environment variable env to flag name unless it was set on the
// command line.
func flagFromEnv(cmd *cobra.Command, name, env string) error {
	if cmd.Flags().Changed(name) {
		return nil
	}
	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return nil
	}
	if err := cmd.Flags().Set(name, v); err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	return nil
}
