package commands

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpkit/internal/cli"
	"github.com/thoreinstein/mcpkit/internal/config"
	"github.com/thoreinstein/mcpkit/internal/editor"
	"github.com/thoreinstein/mcpkit/internal/errors"
	"github.com/thoreinstein/mcpkit/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd, configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpkit configuration",
	Long: `Manage mcpkit configuration stored in config.yaml under the XDG config
directory (~/.config/mcpkit by default, MCPKIT_CONFIG_DIR overrides it).

Every key can also be set through the environment: catalog.version is
MCPKIT_CATALOG_VERSION, default_agent is MCPKIT_DEFAULT_AGENT, and so on.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  mcpkit config

  # Always configure Cursor unless --agent says otherwise
  mcpkit config set default_agent cursor

  # Pin the catalog release
  mcpkit config set catalog.version v1.4.0

  See Also: mcpkit agents`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runConfigList(a)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runConfigGet(a, args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write config.yaml.

The resulting configuration is validated before it is written; an invalid
value leaves the file untouched.`,
	Example: `  mcpkit config set selector.page_size 15
  mcpkit config set backup.disabled true
  mcpkit config set default_agent ""`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runConfigSet(a, args[0], args[1])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return runConfigList(a)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config.yaml in your editor",
	Long: `Open config.yaml in $MCPKIT_EDITOR, $EDITOR or $VISUAL, falling back to
nano or vi. The file is created with the current values if it does not
exist yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if a.json {
			return interactionRequired("editing the config file", "Use: mcpkit config set <key> <value>")
		}
		path, err := ensureConfigFile(a)
		if err != nil {
			return err
		}
		a.printer.Dim("Location: %s", path)
		return editor.Open(cmd.Context(), path, editor.Streams{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
	},
}

// checkKey rejects keys that are not configuration settings.
func checkKey(key string) error {
	if slices.Contains(config.Keys(), key) {
		return nil
	}
	suggestion := cli.DidYouMean(key, config.Keys())
	if suggestion == "" {
		suggestion = "Valid keys: " + strings.Join(config.Keys(), ", ")
	}
	return errors.NewUserError(errors.Newf("unknown config key %q", key), suggestion)
}

func runConfigGet(a *app, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if a.json {
		return a.emit(map[string]any{key: viper.Get(key)})
	}
	a.printer.Println(viper.GetString(key))
	return nil
}

func runConfigSet(a *app, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, value)
	cfg := config.Current()
	if errs := config.Validate(cfg); len(errs) > 0 {
		viper.Set(key, previous)
		return errors.NewConfigError(errors.Wrapf(errs[0], "setting %s", key))
	}

	path, err := writeConfig(a, cfg)
	if err != nil {
		return err
	}
	a.printer.Success("Set %s = %s", key, value)
	a.printer.Dim("Saved to %s", path)

	if a.json {
		return a.emit(map[string]any{"key": key, "value": viper.Get(key), "path": path})
	}
	return nil
}

func runConfigList(a *app) error {
	if a.json {
		values := make(map[string]any, len(config.Keys()))
		for _, key := range config.Keys() {
			values[key] = viper.Get(key)
		}
		return a.emit(values)
	}

	data, err := yaml.Marshal(config.Current())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	a.printer.Printf("%s", data)
	return nil
}

// writeConfig writes cfg to the config file and returns its path.
func writeConfig(a *app, cfg *config.Config) (string, error) {
	path := config.FilePath()
	if err := a.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "creating config directory"), "")
	}
	if err := fileutil.AtomicWriteYAML(a.fs, path, cfg); err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "writing config"), fmt.Sprintf("Check permissions of %s", filepath.Dir(path)))
	}
	return path, nil
}

// ensureConfigFile writes the current configuration if no file exists yet.
func ensureConfigFile(a *app) (string, error) {
	path := config.FilePath()
	exists, err := fileExists(a, path)
	if err != nil || exists {
		return path, err
	}
	return writeConfig(a, config.Current())
}
