package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-declaration/pkg/renderers/tui"
	"github.com/goliatone/go-declaration/pkg/report"
)

var errIncomplete = errors.New("declaration has outstanding errors")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill in the declaration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}

		format := outputFlag
		if !cmd.Flags().Changed("output") && config.Output != "" {
			format = config.Output
		}
		renderer, err := tui.New(
			tui.WithOutputFormat(tui.OutputFormat(format)),
			tui.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		out, err := renderer.Render(ctx, s.wizard)
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		return s.close()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a draft without prompting",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		d := s.wizard
		d.TouchAll()

		out := cmd.OutOrStdout()
		failed := false
		for _, page := range d.VisiblePages() {
			for _, msg := range d.ValidatePage(page, false) {
				failed = true
				fmt.Fprintf(out, "%s: %s\n", page.Code, msg)
			}
		}
		fmt.Fprintf(out, "progress: %d%%\n", d.Progress())
		if failed {
			return errIncomplete
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a summary of the draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := s.wizard.LoadStatistics(ctx); err != nil {
			logger.Warn("statistics unavailable", "error", err)
		}

		tpl := templateArg
		if !cmd.Flags().Changed("template") && config.Template != "" {
			tpl = config.Template
		}
		var options []report.Option
		if tpl != "" {
			options = append(options,
				report.WithBaseDir(filepath.Dir(tpl)),
				report.WithTemplate(filepath.Base(tpl)),
			)
		}
		renderer, err := report.New(options...)
		if err != nil {
			return err
		}
		return renderer.Render(s.wizard, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", string(tui.OutputFormatJSON), "Answer output format: json, yaml or pretty")
	reportCmd.Flags().StringVarP(&templateArg, "template", "t", "", "pongo2 template file replacing the built-in summary")
	checkCmd.SetErr(os.Stderr)
}
