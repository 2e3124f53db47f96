package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"schema-mend/internal/logging"
)

var (
	cfgFile    string
	dsn        string
	driverName string
	verbose    bool
)

var RootCmd = &cobra.Command{
	Use:   "schema-mend",
	Short: "Detect and heal schema drift",
	Long: `
           _                                                   _
  ___  ___| |__   ___ _ __ ___   __ _       _ __ ___   ___ _ __   __| |
 / __|/ __| '_ \ / _ \ '_ ' _ \ / _' |_____| '_ ' _ \ / _ \ '_ \ / _' |
 \__ \ (__| | | |  __/ | | | | | (_| |_____| | | | | |  __/ | | | (_| |
 |___/\___|_| |_|\___|_| |_| |_|\__,_|     |_| |_| |_|\___|_| |_|\__,_|

SCHEMA MEND - compares a live database against a declared schema and adds
the columns it is missing. Existing columns are never dropped or altered.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindSettingsFlags(cmd)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./schema-mend.yaml)")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database Source Name (DSN or URL); overrides the active database in the config")
	RootCmd.PersistentFlags().StringVar(&driverName, "driver", "", "database/sql driver name for --dsn (detected from URL DSNs)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("schema-mend")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("settings.log_level", "info")
	viper.SetDefault("settings.lock_key", "schema_mend")

	// SCHEMA_MEND_SETTINGS_CATALOG overrides settings.catalog, and so on.
	viper.SetEnvPrefix("SCHEMA_MEND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// settingsFlags maps command flags to the config keys they override.
var settingsFlags = map[string]string{
	"dsn":               "database.dsn",
	"driver":            "database.driver",
	"schema":            "settings.schema_file",
	"catalog":           "settings.catalog",
	"commit-mode":       "settings.commit_mode",
	"statement-timeout": "settings.statement_timeout",
}

// bindSettingsFlags binds the flags of the command being run. Several
// commands share flag names and viper keeps one flag per key, so binding
// happens per run instead of in init.
func bindSettingsFlags(cmd *cobra.Command) error {
	for name, key := range settingsFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// newLogger builds the zap logger for a command from settings.log_level,
// or debug when --verbose is set.
func newLogger() (*zap.Logger, error) {
	level := viper.GetString("settings.log_level")
	if verbose {
		level = "debug"
	}
	return logging.New(level, os.Stderr)
}
