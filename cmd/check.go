package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

// newCheckCmd creates the 'check' subcommand, which scrapes a single URL and
// prints a human-readable summary.
func newCheckCmd() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Scrapes a single URL and prints the extracted metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			record, err := appInstance.Service.Scrape(cmd.Context(), args[0], !noCache)
			if err != nil {
				return err
			}
			printRecord(cmd, record)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	return cmd
}

func printRecord(cmd *cobra.Command, r scraper.VideoRecord) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Video ID:     %s\n", r.VideoID)
	fmt.Fprintf(out, "Author:       @%s (%s)\n", r.Username, r.DisplayName)
	fmt.Fprintf(out, "Description:  %s\n", r.Description)
	fmt.Fprintf(out, "Views:        %s\n", r.FormattedViews())
	fmt.Fprintf(out, "Likes:        %s\n", r.FormattedLikes())
	fmt.Fprintf(out, "Comments:     %s\n", scraper.FormatCount(r.Comments))
	fmt.Fprintf(out, "Shares:       %s\n", scraper.FormatCount(r.Shares))
	fmt.Fprintf(out, "Favorites:    %s\n", scraper.FormatCount(r.Favorites))
	fmt.Fprintf(out, "Engagement:   %.2f%%\n", r.EngagementRate())
	if r.MusicTitle != "" {
		fmt.Fprintf(out, "Music:        %s - %s\n", r.MusicTitle, r.MusicAuthor)
	}
	if r.DurationSec > 0 {
		fmt.Fprintf(out, "Duration:     %ds\n", r.DurationSec)
	}
	fmt.Fprintf(out, "Profile:      %s\n", r.ProfileURL())
	fmt.Fprintf(out, "Embed:        %s\n", r.EmbedURL())
}
