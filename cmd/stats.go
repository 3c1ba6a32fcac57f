package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newStatsCmd creates the 'stats' subcommand, which prints the process
// counters plus derived rates.
func newStatsCmd() *cobra.Command {
	var showActivity bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Prints scraping statistics for this process",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			snapshot := appInstance.Service.Statistics()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total requests:      %d\n", snapshot.TotalRequests)
			fmt.Fprintf(out, "Successful scrapes:  %d (%s)\n", snapshot.SuccessfulScrapes, percentage(snapshot.SuccessfulScrapes, snapshot.TotalRequests))
			fmt.Fprintf(out, "Failed scrapes:      %d (%s)\n", snapshot.FailedScrapes, percentage(snapshot.FailedScrapes, snapshot.TotalRequests))
			fmt.Fprintf(out, "Cache hits:          %d (%s)\n", snapshot.CacheHits, percentage(snapshot.CacheHits, snapshot.TotalRequests))
			fmt.Fprintf(out, "Rate limit hits:     %d\n", snapshot.RateLimitHits)
			if showActivity {
				fmt.Fprintln(out, "\nRecent activity:")
				for _, entry := range appInstance.Service.RecentActivity() {
					line := fmt.Sprintf("  %s  %-12s %s", entry.TS.Format("15:04:05"), entry.Outcome, entry.URL)
					if entry.Error != "" {
						line += "  (" + entry.Error + ")"
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showActivity, "activity", false, "include the recent activity list")
	return cmd
}

func percentage(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}
