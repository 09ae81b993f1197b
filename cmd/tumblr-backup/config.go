package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tumblrbackup/pkg/config"
)

const defaultConfigPath = ".tumblr-backup.yaml"

func newConfigCmd(c *cli) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage tumblr-backup configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables (TUMBLR_BACKUP_*)
  - .env files
  - Configuration file
  - Default values`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with the default values",
		Long: `Create a configuration file holding every option at its default value.

The file is written to ./.tumblr-backup.yaml unless --config names another path.
An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile
			if path == "" {
				path = defaultConfigPath
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("configuration file already exists: %s", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the configuration after files and environment are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := cfg.LoadFromFile(c.configFile); err != nil {
				return err
			}
			if err := cfg.LoadFromEnv(); err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
