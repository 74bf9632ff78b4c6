package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/engine"
	"github.com/rshade/enrichr/internal/tui"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		f       jobFlags
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how the unprocessed rows would be chunked, without looking anything up",
		Example: `  enrichr plan --profile cik --input companies.csv
  enrichr plan --profile cik --input companies.csv --chunk-size 10 --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.jobConfig(cmd, &f)
			if err != nil {
				return err
			}
			tbl, _, err := loadTable(cmd.Context(), cfg.Job, f.fresh)
			if err != nil {
				return err
			}

			eng, err := engine.New(tbl, noLookup(), engine.Options{
				KeyColumn:    cfg.Job.KeyColumn,
				TargetColumn: cfg.Job.TargetColumn,
				ResponseKey:  cfg.Job.ResponseKey,
				Fields:       cfg.Job.Fields,
				ChunkSize:    cfg.Job.ChunkSize,
				MaxWorkers:   cfg.Job.MaxWorkers,
				OutputPath:   cfg.Job.OutputPath(),
			})
			if err != nil {
				return err
			}

			chunks := eng.Plan()
			keys := 0
			for _, c := range chunks {
				keys += len(c.Items)
			}
			rows := tbl.Stats(cfg.Job.TargetColumn).Unprocessed
			_, err = fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlan(chunks, rows, keys, verbose))
			return err
		},
	}

	f.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list every key of every chunk")
	return cmd
}
