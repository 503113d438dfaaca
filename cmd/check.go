package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/cottand/tyrel/internal/log"
	"github.com/cottand/tyrel/internal/scenario"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check file.toml...",
	Short:        "Check the comparison cases of scenario files",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	checkJobs   *int
	checkReport *string
	checkColor  *string
	logLevel    *string
)

func init() {
	checkJobs = CheckCmd.Flags().IntP("jobs", "j", 0, "cases checked at once, 0 for the scenario setting or GOMAXPROCS")
	checkReport = CheckCmd.Flags().StringP("report", "r", "", "write a msgpack report of the last file to this path")
	checkColor = CheckCmd.Flags().String("color", "auto", "colour output: auto, always or never")
	logLevel = CheckCmd.Flags().StringP("log-level", "l", "warn", "log level")
}

func runCheck(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())

	opts := checkOptions{jobs: *checkJobs, report: *checkReport}
	switch *checkColor {
	case "auto":
	case "always":
		opts.color = new(bool)
		*opts.color = true
	case "never":
		opts.color = new(bool)
	default:
		return fmt.Errorf("unknown colour mode %q", *checkColor)
	}

	failed := 0
	for _, path := range args {
		f, err := scenario.Load(path)
		if err != nil {
			return err
		}
		report, err := checkFile(cmd, f, opts)
		if err != nil {
			return err
		}
		failed += report.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d case(s) failed", failed)
	}
	return nil
}

type checkOptions struct {
	jobs   int
	report string
	// color overrides both the scenario setting and terminal detection
	color *bool
}

func checkFile(cmd *cobra.Command, f *scenario.File, opts checkOptions) (*scenario.Report, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := scenario.Run(ctx, f, opts.jobs)
	if err != nil {
		return nil, err
	}
	useColor := opts.color
	if useColor == nil {
		useColor = f.Settings.Color
	}
	printReport(cmd.OutOrStdout(), report, useColor)
	if opts.report != "" {
		if err := scenario.WriteReport(opts.report, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func printReport(w io.Writer, report *scenario.Report, useColor *bool) {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)
	if useColor != nil {
		for _, c := range []*color.Color{pass, fail, faint} {
			if *useColor {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}

	for _, o := range report.Outcomes {
		if o.Passed {
			_, _ = pass.Fprint(w, "PASS")
		} else {
			_, _ = fail.Fprint(w, "FAIL")
		}
		_, _ = fmt.Fprintf(w, " %s: %s %s %s", o.Case, o.A, o.Relation, o.B)
		if o.Result != "" {
			_, _ = faint.Fprintf(w, " = %s", o.Result)
		}
		_, _ = fmt.Fprintln(w)
		if !o.Passed {
			_, _ = fmt.Fprintf(w, "    expected %s, got %s\n", o.Expect, o.Got)
			if o.Error != "" {
				_, _ = fmt.Fprintf(w, "    %s\n", o.Error)
			}
		}
	}
	summary := pass
	if !report.OK() {
		summary = fail
	}
	_, _ = summary.Fprintf(w, "%s: %d passed, %d failed\n", report.Path, report.Passed, report.Failed)
}
