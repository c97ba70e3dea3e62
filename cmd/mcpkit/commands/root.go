// Package commands implements the CLI commands for mcpkit.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	build "github.com/thoreinstein/mcpkit/cmd"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// jsonOutput holds the value of the --json flag.
var jsonOutput bool

// githubToken holds the value of the --github-token flag.
var githubToken string

// catalogVersion holds the value of the --catalog-version flag.
var catalogVersion string

// configFile holds the value of the --config flag.
var configFile string

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"machine-readable output; never prompts")
	rootCmd.PersistentFlags().StringVar(&githubToken, "github-token", "",
		"GitHub token for catalog downloads (default: $GH_TOKEN or $GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&catalogVersion, "catalog-version", "",
		`catalog release tag to download (default from config, usually "latest")`)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: $XDG_CONFIG_HOME/mcpkit/config.yaml)")

	rootCmd.Version = build.Version
	rootCmd.SetVersionTemplate("mcpkit version {{.Version}}\n")

	// Errors are printed by Execute so --json can shape them.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	_, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "mcpkit",
	Short: "Set up MCP servers for AI coding agents",
	Long: `mcpkit picks MCP servers from a published catalog and merges them into
the configuration file of your AI coding agent (Claude Code, Cursor,
GitHub Copilot, Gemini CLI and others).

Existing entries in the agent's file are kept; every write is preceded by
a backup that "mcpkit backup restore" can put back.`,
	Example: `  # Configure a project interactively
  mcpkit init my-project

  # Configure the global Cursor settings
  mcpkit init --agent cursor

  # Add servers by name
  mcpkit add fetch git --agent claude --project .

  # Remove a server
  mcpkit remove fetch --agent claude

  See Also: mcpkit agents, mcpkit list, mcpkit config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if configLoadErr != nil && !toleratesConfigError(cmd) {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !jsonOutput {
			newPrinter(cmd.OutOrStdout()).Println(bannerFor(cmd.OutOrStdout()))
		}
		return cmd.Help()
	},
}

// toleratesConfigError reports whether cmd can run with an invalid config
// file. The config commands must, so the file can be repaired, and doctor
// reports the problem itself.
func toleratesConfigError(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "config", "doctor":
			return true
		}
	}
	return false
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	v := verbosity

	// CLI flags take precedence, but if not set, check env var
	if v == 0 {
		if val, ok := os.LookupEnv("MCPKIT_DEBUG"); ok {
			switch val {
			case "1", "true":
				v = 2 // Debug
			case "2":
				v = 3 // Trace
			}
		}
	}

	format := logging.Format(logFormat)
	switch format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.NewUserError(
			errors.Newf("invalid log format %q", logFormat),
			"Use --log-format text or --log-format json")
	}

	logger := logging.New(logging.Config{
		Level:  logging.LevelFromVerbosity(v),
		Format: format,
		Output: cmd.ErrOrStderr(),
		File:   logFile,
	})
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	reportError(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), err)
	return errors.ExitCode(err)
}

// errAlreadyReported marks failures whose details the command printed
// itself; only the exit code remains.
var errAlreadyReported = errors.New("already reported")

// reportError prints err as a JSON envelope on stdout in --json mode, or as
// a message plus suggestion on stderr otherwise.
func reportError(stdout, stderr io.Writer, err error) {
	if err == nil || errors.Is(err, errAlreadyReported) {
		return
	}
	if jsonOutput {
		fmt.Fprintln(stdout, string(errors.Structured(err)))
		return
	}

	p := newPrinter(stderr)
	p.Fail("Error: %v", err)
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		p.Dim("%s", exitErr.Suggestion)
	}
}
