package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/config"
)

// newConfigInitCmd creates the config init command for initializing configuration.
func newConfigInitCmd(a *app) *cobra.Command {
	var (
		force bool
		path  string
		input string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Writes a configuration file built from the defaults and, when --profile is
given, that profile's column layout.`,
		Example: `  # Starter file for the cik profile
  enrichr config init --profile cik --input companies.csv

  # Overwrite an existing file
  enrichr config init --force --path jobs/parent.yaml --profile parent`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = a.flags.configPath
			}
			if path == "" {
				path = config.DefaultConfigFile
			}

			if !force {
				_, err := os.Stat(path)
				if err == nil {
					return errors.New("configuration file already exists, use --force to overwrite")
				}
				if !os.IsNotExist(err) {
					return fmt.Errorf("cannot access config path %s: %w", path, err)
				}
			}

			cfg := config.Default()
			if a.flags.profile != "" {
				if err := cfg.ApplyProfile(a.flags.profile); err != nil {
					return err
				}
			}
			cfg.Job.Input = input

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Configuration initialized at %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().StringVar(&path, "path", "", "file to write (default --config or ./enrichr.yaml)")
	cmd.Flags().StringVar(&input, "input", "", "input table to record in the file")
	return cmd
}
