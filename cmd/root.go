/*
Copyright © 2026 The GiziSehat Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gizisehat/gizi/internal/iofs"
	"github.com/gizisehat/gizi/internal/iologger"
	app "github.com/gizisehat/gizi/pkg"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config

	// jsonOutput prints command results as JSON instead of text.
	jsonOutput bool
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "gizi",
		Short:   "Growth and nutrition monitoring for young children",
		Long: `Gizi assesses growth measurements of children under five against
WHO reference tables, tracks daily nutrient intake, recommends local
foods and answers caregiver questions.

Data is kept in SQLite by default (~/.cache/gizi/gizi.sqlite), or in
PostgreSQL when database.driver is "postgres".

Configuration precedence (highest to lowest):
  1. Environment variables (GIZI_*)
  2. Config file (~/.config/gizi/config.yaml)
  3. Built-in defaults

Environment variables use underscores for nesting, for example
GIZI_DATABASE_DRIVER, GIZI_PHOTO_URL, GIZI_SERVER_PORT, GIZI_LOG_LEVEL.`,
		PersistentPreRunE: bootstrap,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gizi version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Use -V for version, like other gn tools
	rootCmd.Flags().BoolP("version", "V", false, "version for gizi")

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false,
		"print results as JSON")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getOptimizeCmd(),
		getChildCmd(),
		getAssessCmd(),
		getHistoryCmd(),
		getChartCmd(),
		getIntakeCmd(),
		getAskCmd(),
		getFacilitiesCmd(),
		getImportCmd(),
		getServeCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Defaults until the config file is read
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, true); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
		"driver", cfg.Database.Driver,
	)
	return nil
}

// reconfigureLogging reinitializes the logger with the loaded
// configuration.
func reconfigureLogging(cfg *config.Config) error {
	return iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log, true)
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Allowed variables are bound one by one, they match the persistent
	// fields of config.ToOptions().
	v.SetEnvPrefix("GIZI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Storage
	v.BindEnv("database.driver", "GIZI_DATABASE_DRIVER")
	v.BindEnv("database.path", "GIZI_DATABASE_PATH")
	v.BindEnv("database.host", "GIZI_DATABASE_HOST")
	v.BindEnv("database.port", "GIZI_DATABASE_PORT")
	v.BindEnv("database.user", "GIZI_DATABASE_USER")
	v.BindEnv("database.password", "GIZI_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GIZI_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GIZI_DATABASE_SSL_MODE")

	// Photo analysis gateway
	v.BindEnv("photo.url", "GIZI_PHOTO_URL")
	v.BindEnv("photo.api_key", "GIZI_PHOTO_API_KEY")
	v.BindEnv("photo.model", "GIZI_PHOTO_MODEL")
	v.BindEnv("photo.timeout_sec", "GIZI_PHOTO_TIMEOUT_SEC")

	// Tool server
	v.BindEnv("server.host", "GIZI_SERVER_HOST")
	v.BindEnv("server.port", "GIZI_SERVER_PORT")

	v.BindEnv("reference.file", "GIZI_REFERENCE_FILE")

	v.BindEnv("log.level", "GIZI_LOG_LEVEL")
	v.BindEnv("log.format", "GIZI_LOG_FORMAT")
	v.BindEnv("log.destination", "GIZI_LOG_DESTINATION")

	v.BindEnv("jobs_number", "GIZI_JOBS_NUMBER")

	v.AutomaticEnv()
}
