package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/checkvolume/internal/runlog"
)

func newHistoryCommand() *cobra.Command {
	var (
		configPath string
		problem    string
		runID      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the output directory's run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(newLogger(cmd, false), configPath, problem, "")
			if err != nil {
				return err
			}

			entries, err := runlog.Read(settings.OutputDir)
			if err != nil {
				return err
			}
			runs := runlog.Runs(entries)

			out := cmd.OutOrStdout()
			if runID != "" {
				for _, r := range runs {
					if r.ID != runID {
						continue
					}
					for _, e := range r.Entries {
						fmt.Fprintf(out, "%-10s %-24s %-12s %s\n", e.Status, e.File, e.Account, e.Details)
					}
					return nil
				}
				return fmt.Errorf("run %s not found in %s", runID, runlog.FileName)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  processed=%d skipped=%d failed=%d dropped=%d\n",
					r.Started.Local().Format(time.DateTime), r.ID,
					r.Count(runlog.StatusProcessed), r.Count(runlog.StatusSkipped),
					r.Count(runlog.StatusFailed), r.Count(runlog.StatusDropped))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "rule document (default $"+configEnv+", then rule.json or rule.yaml)")
	cmd.Flags().StringVar(&problem, "problem", "", "problem key in inputPath/outputPath")
	cmd.Flags().StringVar(&runID, "run", "", "list the files of one run")
	cmd.Flags().IntVar(&limit, "limit", 10, "show at most this many recent runs (0 for all)")

	return cmd
}
