package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/tui/styles"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage color themes",
	Long: `Manage color themes for the webfactory dashboard.

webfactory supports both built-in themes and custom user-defined themes.
Custom themes are stored in ~/.config/webfactory/themes/ as YAML files.

Use 'theme list' to see all available themes.
Use 'theme export' to create a template for custom themes.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	Args:  cobra.NoArgs,
	RunE:  runThemeList,
}

var themeExportCmd = &cobra.Command{
	Use:   "export <theme-name> [output-file]",
	Short: "Export a theme to YAML",
	Long: `Export a theme to YAML format for customization or sharing.

If no output file is specified, the YAML is printed to stdout.

Examples:
  webfactory config theme export default               # Print default theme to stdout
  webfactory config theme export nord my-theme.yaml    # Save nord theme to file`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runThemeExport,
}

var themePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the custom themes directory path",
	Args:  cobra.NoArgs,
	RunE:  runThemePath,
}

var themeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new custom theme from the default palette",
	Long: `Create a new custom theme file in your themes directory.

The file starts as a copy of the default palette. Edit it, then select it with:
  webfactory config set tui.theme <name>`,
	Args: cobra.ExactArgs(1),
	RunE: runThemeCreate,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeExportCmd)
	themeCmd.AddCommand(themePathCmd)
	themeCmd.AddCommand(themeCreateCmd)
	configCmd.AddCommand(themeCmd)
}

// discoverThemes registers the custom themes, printing load errors to w.
func discoverThemes(w io.Writer) []error {
	_, loadErrs := styles.DiscoverCustomThemes(appconfig.ThemesDir())
	if len(loadErrs) > 0 {
		fmt.Fprintln(w, "Warning: Some themes failed to load:")
		for _, err := range loadErrs {
			fmt.Fprintf(w, "  - %v\n", err)
		}
		fmt.Fprintln(w)
	}
	return loadErrs
}

func runThemeList(cmd *cobra.Command, args []string) error {
	discoverThemes(cmd.ErrOrStderr())
	out := cmd.OutOrStdout()
	current := appconfig.Get().TUI.Theme

	fmt.Fprintln(out, "Built-in themes:")
	for _, name := range styles.BuiltinThemes() {
		fmt.Fprintln(out, themeLine(name, current))
	}

	if custom := styles.CustomThemeNames(); len(custom) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Custom themes:")
		for _, name := range custom {
			line := themeLine(name, current)
			if theme := styles.GetCustomTheme(styles.ThemeName(name)); theme != nil && theme.Description != "" {
				line += " - " + theme.Description
			}
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Custom themes directory: %s\n", appconfig.ThemesDir())
	return nil
}

func themeLine(name, current string) string {
	if name == current {
		return "  * " + name
	}
	return "  - " + name
}

// unknownThemeError explains why name is not available, pointing at its
// load error when the file exists but is broken.
func unknownThemeError(name string, loadErrs []error) error {
	for _, err := range loadErrs {
		msg := err.Error()
		if strings.HasPrefix(msg, name+".yaml:") || strings.HasPrefix(msg, name+".yml:") {
			return fmt.Errorf("theme '%s' exists but failed to load: %v\n\nFix the errors in your theme file and try again", name, err)
		}
	}
	return fmt.Errorf("unknown theme: %s\n\nRun 'webfactory config theme list' to see available themes.\nCustom themes should be placed in: %s", name, appconfig.ThemesDir())
}

func runThemeExport(cmd *cobra.Command, args []string) error {
	name := args[0]
	loadErrs := discoverThemes(cmd.ErrOrStderr())
	if !styles.IsValidTheme(name) {
		return unknownThemeError(name, loadErrs)
	}

	data, err := styles.ExportTheme(styles.ThemeName(name))
	if err != nil {
		return fmt.Errorf("exporting theme: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) > 1 {
		outputPath := args[1]
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("writing to %s: %w", outputPath, err)
		}
		fmt.Fprintf(out, "Theme exported to: %s\n", outputPath)
		return nil
	}
	_, err = out.Write(data)
	return err
}

func runThemePath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	themesDir := appconfig.ThemesDir()
	fmt.Fprintln(out, themesDir)

	if _, err := os.Stat(themesDir); os.IsNotExist(err) {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Note: This directory does not exist yet.")
		fmt.Fprintln(out, "It will be created when you add your first custom theme.")
	}
	return nil
}

func runThemeCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	if name == "" || strings.ContainsAny(name, "/\\:*?\"<>|. ") {
		return fmt.Errorf("invalid theme name %q", name)
	}
	if styles.IsBuiltinTheme(name) {
		return fmt.Errorf("cannot create custom theme with built-in name '%s'", name)
	}

	themesDir := appconfig.ThemesDir()
	themePath := filepath.Join(themesDir, name+".yaml")
	if _, err := os.Stat(themePath); err == nil {
		return fmt.Errorf("theme '%s' already exists at %s", name, themePath)
	}

	p := styles.DefaultPalette()
	theme := &styles.ThemeFile{
		Name:        name,
		Description: "A custom webfactory theme",
		Version:     "1",
		Colors: styles.ThemeColors{
			Primary: string(p.Primary),
			Success: string(p.Success),
			Warning: string(p.Warning),
			Error:   string(p.Error),
			Muted:   string(p.Muted),
			Surface: string(p.Surface),
			Text:    string(p.Text),
			Border:  string(p.Border),
			Blue:    string(p.Blue),
			Yellow:  string(p.Yellow),
		},
	}

	path, err := styles.SaveTheme(themesDir, name, theme)
	if err != nil {
		return fmt.Errorf("creating theme: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created new theme: %s\n", path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit this file to customize your theme colors.")
	fmt.Fprintln(out, "To use your new theme, run:")
	fmt.Fprintf(out, "  webfactory config set tui.theme %s\n", name)
	return nil
}
