// Package config provides CLI commands for managing webfactory configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/webfactory/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify webfactory configuration",
	Long: `View or modify webfactory configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  webfactory config set api.url http://factory.internal:8000
  webfactory config set poll.interval 5s
  webfactory config set tui.theme nord

Valid keys:
  api.url              - Backend base URL
  api.timeout          - Per-request timeout, 0 for none (e.g. 30s)
  poll.interval        - Pipeline poll interval, at least 100ms
  tui.gallery_columns  - Fixed gallery columns 1-3, 0 for responsive
  tui.alt_screen       - Use the alternate screen (true/false)
  tui.theme            - Color theme (see 'webfactory config theme list')
  logging.enabled      - Write debug.log (true/false)
  logging.level        - debug, info, warn or error
  logging.dir          - Log directory, empty for the config directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/webfactory/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var initForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyDocs is the comment written above each key by config init.
var keyDocs = map[string]string{
	"api.url":             "Backend base URL",
	"api.timeout":         "Per-request timeout (0 disables it)",
	"poll.interval":       "How often the selected pipeline is polled (min 100ms)",
	"tui.gallery_columns": "Gallery columns 1-3, or 0 to follow the terminal width",
	"tui.alt_screen":      "Run the dashboard in the alternate screen",
	"tui.theme":           "Color theme: default, dracula, nord, monokai or a custom theme",
	"logging.enabled":     "Write debug.log",
	"logging.level":       "Minimum level: debug, info, warn or error",
	"logging.dir":         "Log directory (empty means the config directory)",
}

// currentValue returns key's effective value in the type its default has.
// Durations are rendered as strings so they read back the same way.
func currentValue(key string) any {
	switch appconfig.DefaultValues()[key].(type) {
	case time.Duration:
		return viper.GetDuration(key).String()
	case bool:
		return viper.GetBool(key)
	case int:
		return viper.GetInt(key)
	default:
		return viper.GetString(key)
	}
}

// settingsNode renders values as a YAML document grouped by section, in
// Keys order. With docs, every key carries its description as a comment.
func settingsNode(value func(key string) any, docs bool) (*yaml.Node, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	sections := map[string]*yaml.Node{}

	for _, key := range appconfig.Keys() {
		section, name, _ := strings.Cut(key, ".")
		body, ok := sections[section]
		if !ok {
			body = &yaml.Node{Kind: yaml.MappingNode}
			sections[section] = body
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: section},
				body)
		}

		var v yaml.Node
		if err := v.Encode(value(key)); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		if docs {
			k.HeadComment = keyDocs[key]
		}
		body.Content = append(body.Content, k, &v)
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}, nil
}

func writeYAML(w io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Fprintf(out, "# Config file: %s\n", file)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}
	if _, err := appconfig.Load(); err != nil {
		fmt.Fprintf(out, "# Warning: %s\n", strings.ReplaceAll(strings.TrimSpace(err.Error()), "\n", "\n# "))
	}

	node, err := settingsNode(currentValue, false)
	if err != nil {
		return err
	}
	return writeYAML(out, node)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if file := viper.ConfigFileUsed(); file != "" {
		fmt.Fprintln(out, file)
		return nil
	}
	fmt.Fprintln(out, appconfig.ConfigFile())
	if _, err := os.Stat(appconfig.ConfigFile()); os.IsNotExist(err) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Note: This file does not exist yet.")
		fmt.Fprintln(out, "Run 'webfactory config init' to create it.")
	}
	return nil
}

// parseValue converts raw into the type of key's default.
func parseValue(key, raw string) (any, error) {
	def, ok := appconfig.DefaultValues()[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'webfactory config set --help' to see valid keys", key)
	}

	switch def.(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected a duration such as 3s or 500ms", key)
		}
		return d.String(), nil
	default:
		return raw, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	value, err := parseValue(key, raw)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, value)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		var verrs appconfig.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid value for %s: %w", key, verrs)
		}
		return err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, value)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()

	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("config file already exists at %s\nUse 'webfactory config set' to modify values, or --force to overwrite", configFile)
	}
	if err := os.MkdirAll(appconfig.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := appconfig.DefaultValues()
	node, err := settingsNode(func(key string) any {
		if d, ok := defaults[key].(time.Duration); ok {
			return d.String()
		}
		return defaults[key]
	}, true)
	if err != nil {
		return err
	}
	node.HeadComment = "webfactory configuration\nEnvironment variables override these, e.g. WEBFACTORY_API_URL"

	f, err := os.Create(configFile)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := writeYAML(f, node); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}
