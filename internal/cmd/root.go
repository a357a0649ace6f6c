// Package cmd implements the webfactory command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/webfactory/internal/cmd/config"
	appconfig "github.com/Iron-Ham/webfactory/internal/config"
	"github.com/Iron-Ham/webfactory/internal/logging"
	"github.com/Iron-Ham/webfactory/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "webfactory",
	Short: "Terminal dashboard for the agentic web factory",
	Long: `webfactory turns a prompt into a deployed web app by handing it to a
pipeline of agents: orchestrator, design, frontend, backend and deploy.

Without a subcommand it opens the dashboard, where you can describe an app,
follow its pipeline and browse earlier projects. The subcommands expose the
same operations for scripts.`,
	SilenceUsage: true,
	RunE:         runDashboard,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/webfactory/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "backend base URL (overrides api.url)")

	config.Register(rootCmd)
}

func initConfig() {
	// Defaults first so they're available even without a config file
	appconfig.SetDefaults()

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(appconfig.EnvPrefix)
	// e.g. WEBFACTORY_API_URL for api.url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newSession loads and validates the configuration and wires a session.
// The caller must Close it.
func newSession() (*session.Session, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
	}
	return session.New(cfg, session.WithLogger(logger)), nil
}
