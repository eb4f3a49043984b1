package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/config"
)

var (
	// Global flags
	profile    string
	region     string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "stratus",
	Short: "Stratus - Deploy a demo web stack on AWS",
	Long: `Stratus provisions a small, self-contained web stack on AWS and tears
it down again. One command deploys an SSH key pair, security groups, an
EC2 instance serving a static site, and an application load balancer in
front of it. Every resource is created only if it does not already
exist, so re-running after a failure resumes where the last run stopped.

Commands:
  stratus deploy             # Provision the full stack
  stratus destroy            # Tear everything down, newest dependency first
  stratus status             # Show which resources currently exist

Configuration is read from stratus.yaml in the working directory; every
field has a default, so no config file is required.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")
	rootCmd.PersistentFlags().StringVarP(&region, "region", "r", "", "AWS region to use")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the deployment config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("region", rootCmd.PersistentFlags().Lookup("region"))
}

func initEnv() {
	// Read from environment variables
	viper.SetEnvPrefix("STRATUS")
	viper.AutomaticEnv()
}

// loadConfig reads the config file and layers the global flags on top.
// Resolution order: flag > config file > AWS_PROFILE/AWS_REGION env.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if profile != "" {
		cfg.Profile = profile
	}
	if region != "" {
		cfg.Region = region
	}

	// Environment only fills what neither flag nor config set.
	if cfg.Profile == "" {
		cfg.Profile = os.Getenv("AWS_PROFILE")
	}
	if cfg.Region == "" {
		cfg.Region = os.Getenv("AWS_REGION")
		if cfg.Region == "" {
			cfg.Region = os.Getenv("AWS_DEFAULT_REGION")
		}
	}
	return cfg, nil
}

// newLogger returns a debug logger with --verbose, a no-op otherwise so
// the progress output stays clean.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
