// File: cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Oktaliem/ragproof/internal/config"
	"github.com/Oktaliem/ragproof/internal/observability"
)

var (
	cfgFile string
	cfg     config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "ragproof",
	Short:   "ragproof drives the Mini-RAG document assistant UI end to end.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}
		if err := viper.Unmarshal(&cfg); err != nil {
			observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ragproof"})
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
		observability.InitializeLogger(cfg.Logger)
		if err := cfg.Validate(); err != nil {
			return err
		}
		observability.GetLogger().Info("Starting ragproof",
			zap.String("version", Version),
			zap.String("target", cfg.Target.BaseURL))
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./ragproof.yaml)")
	rootCmd.PersistentFlags().String("target", "", "base URL of the deployment under test")
	rootCmd.PersistentFlags().Bool("headless", true, "run the browser headless")
	_ = viper.BindPFlag("target.base_url", rootCmd.PersistentFlags().Lookup("target"))
	_ = viper.BindPFlag("browser.headless", rootCmd.PersistentFlags().Lookup("headless"))
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// initializeConfig reads in the config file and environment variables.
func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("ragproof")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RAGPROOF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults, flags, and env vars carry the run.
	}
	return nil
}
