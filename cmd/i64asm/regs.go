package main

import (
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JacquesLucke/i64lang/x64"
)

var regsCommand = &cobra.Command{
	Use:   "regs",
	Short: "Print the register table",
	Long:  "Print every supported register with its group, number and encoded bits.",
	Run: func(_ *cobra.Command, _ []string) {
		os.Exit(regs(os.Stdout))
	},
}

func init() {
	RootCommand.AddCommand(regsCommand)
}

func regs(stdout io.Writer) int {
	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Name", "Group", "Number", "Bits"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range x64.Regs() {
		table.Append([]string{r.Name(), strconv.Itoa(int(r.Group())), strconv.Itoa(int(r.Num())), r.Bits().Bin()})
	}
	table.Render()
	return 0
}
