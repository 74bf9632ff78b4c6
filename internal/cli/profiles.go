package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/enrichr/internal/config"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // Column padding.
			_, _ = fmt.Fprintln(w, "NAME\tKEY COLUMN\tWRITES\tCHUNK\tWORKERS\tDESCRIPTION")
			for _, p := range config.Profiles() {
				cols := make([]string, 0, len(p.Job.Fields))
				for _, f := range p.Job.Fields {
					cols = append(cols, f.Column)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					p.Name, p.Job.KeyColumn, strings.Join(cols, ","), p.Job.ChunkSize, p.Job.MaxWorkers, p.Description)
			}
			return w.Flush()
		},
	}
}
