package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

// newClearCacheCmd creates the 'clear-cache' subcommand. With a URL it
// forgets that entry; without one it flushes the whole cache.
func newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache [url]",
		Short: "Clears cached video details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			if !appInstance.Service.ClearCache(cmd.Context(), url) {
				if url == "" {
					return errors.New("cache is disabled")
				}
				return errors.New("nothing cleared: url invalid, cache disabled, or entry not present")
			}
			if url == "" {
				cmd.Println("cache flushed")
			} else {
				cmd.Println("cache entry cleared")
			}
			return nil
		},
	}
}
