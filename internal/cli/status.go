package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newStatusCmd(a *app) *cobra.Command {
	var f jobFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Count processed and unprocessed rows",
		Long: `Counts the rows whose target column is filled (processed) and empty
(unprocessed). The output file is inspected when it exists, the input
otherwise or with --fresh.`,
		Example: `  enrichr status --profile cik --input companies.csv
  enrichr status --profile cik --input companies.csv --output enriched.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.jobConfig(cmd, &f)
			if err != nil {
				return err
			}
			tbl, path, err := loadTable(cmd.Context(), cfg.Job, f.fresh)
			if err != nil {
				return err
			}

			stats := tbl.Stats(cfg.Job.TargetColumn)
			percent := 0.0
			if stats.Rows > 0 {
				percent = float64(stats.Processed) / float64(stats.Rows) * 100 //nolint:mnd // Percentage.
			}

			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()
			p.Fprintf(out, "Table:        %s\n", path)
			p.Fprintf(out, "Target:       %s\n", cfg.Job.TargetColumn)
			p.Fprintf(out, "Rows:         %d\n", stats.Rows)
			p.Fprintf(out, "Processed:    %d (%.1f%%)\n", stats.Processed, percent)
			p.Fprintf(out, "Unprocessed:  %d\n", stats.Unprocessed)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}
