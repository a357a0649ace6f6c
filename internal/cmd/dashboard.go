package cmd

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/Iron-Ham/webfactory/internal/poller"
	"github.com/Iron-Ham/webfactory/internal/tui"
	"github.com/Iron-Ham/webfactory/internal/tui/styles"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive dashboard. This is also what running webfactory
without a subcommand does.

Changes to poll.interval in the config file apply to the running dashboard.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	_, themeErrs := styles.DiscoverCustomThemes(appconfig.ThemesDir())
	for _, err := range themeErrs {
		s.Logger.Warn("theme skipped", "error", err.Error())
	}
	styles.ApplyTheme(s.Config.TUI.Theme)

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			applyConfigChange(s.Poller, s.Logger, e)
		})
		viper.WatchConfig()
	}

	app := tui.New(cmd.Context(), s)
	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// applyConfigChange reloads the configuration after the file changes and
// hands a new poll.interval to the running poller. Invalid files are
// ignored.
func applyConfigChange(p *poller.Poller, logger *logging.Logger, e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := appconfig.Load()
	if err != nil {
		logger.Warn("ignoring invalid config change", "file", e.Name, "error", err.Error())
		return
	}
	if cfg.Poll.Interval != p.Interval() {
		p.SetInterval(cfg.Poll.Interval)
		logger.Info("config reloaded", "file", e.Name, "poll_interval", cfg.Poll.Interval.String())
	}
}
