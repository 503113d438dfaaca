package cmd

import (
	"fmt"

	"github.com/cottand/tyrel/internal/scenario"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

var DumpCmd = &cobra.Command{
	Use:          "dump report.msgpack",
	Short:        "Print a report written by check --report",
	RunE:         runDump,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var dumpFailures *bool

func init() {
	dumpFailures = DumpCmd.Flags().BoolP("failures", "f", false, "only print failed cases")
}

func runDump(cmd *cobra.Command, args []string) error {
	report, err := scenario.ReadReport(args[0])
	if err != nil {
		return fmt.Errorf("could not read %s: %w", args[0], err)
	}
	if *dumpFailures {
		_, err = pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", report.Failures())
		return err
	}
	_, err = pretty.Fprintf(cmd.OutOrStdout(), "%# v\n", report)
	return err
}
