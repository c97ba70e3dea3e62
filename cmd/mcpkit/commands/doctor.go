package commands

import (
	"context"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/doctor"
	"github.com/thoreinstein/mcpkit/internal/errors"
)

type doctorOptions struct {
	project    string
	quiet      bool
	verbose    bool
	configPath string
}

var doctorOpts doctorOptions

func init() {
	doctorCmd.Flags().StringVarP(&doctorOpts.project, "project", "p", "", "check project-level documents in this directory")
	doctorCmd.Flags().BoolVarP(&doctorOpts.quiet, "quiet", "q", false, "suppress output, exit code only")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Check the mcpkit config file, every agent's MCP document, the backup
directory and the catalog cache.

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  mcpkit doctor
  mcpkit doctor --project . -v
  mcpkit doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		opts := doctorOpts
		opts.verbose = verbosity > 0
		opts.configPath = config.FilePath()
		return runDoctor(cmd.Context(), a, opts)
	},
}

var (
	// errDoctorWarnings is returned for exit code 1.
	errDoctorWarnings = errors.Wrap(errAlreadyReported, "doctor found warnings")

	// errDoctorErrors is returned for exit code 2.
	errDoctorErrors = errors.Wrap(errAlreadyReported, "doctor found errors")
)

func runDoctor(ctx context.Context, a *app, opts doctorOptions) error {
	runner := doctor.NewRunner(
		&doctor.ConfigCheck{FS: a.fs, Path: opts.configPath},
	)
	for _, c := range doctor.AgentChecks(a.fs, a.resolver, a.projectRoot(opts.project)) {
		runner.AddCheck(c)
	}
	runner.AddCheck(&doctor.BackupCheck{FS: a.fs, Store: a.store})
	runner.AddCheck(&doctor.CatalogCacheCheck{FS: a.fs, Dir: a.cacheDir})

	report := runner.Run(ctx)

	switch {
	case opts.quiet:
	case a.json:
		if err := a.emit(report); err != nil {
			return err
		}
	default:
		useColor := cli.ColorProfile(a.out) != termenv.Ascii
		doctor.NewReporter(a.out, useColor, opts.verbose).Report(report)
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}
