package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigValidateCmd creates the config validate command for validating configuration.
func newConfigValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Example: `  enrichr config validate --config enrichr.yaml
  ENRICHR_INPUT=companies.csv enrichr config validate --profile cik`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Printf("Configuration is valid\n")
			return nil
		},
	}
}
