package cmd

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haianibrahim/tiktok-scraper/internal/scraper"
)

type scrapeOptions struct {
	file    string
	output  string
	format  string
	noCache bool
}

// newScrapeCmd creates the 'scrape' subcommand for one or more URLs,
// supplied as arguments or via --file.
func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape [urls...]",
		Short: "Scrapes one or more TikTok video URLs",
		Long: `Scrapes the given video URLs concurrently and writes the extracted
metadata as JSON or CSV. URLs can be passed as arguments or listed one per
line in a file via --file. URLs that fail are skipped; the remaining results
keep their input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrapeCommand(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file with one URL per line")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or csv")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the result cache for this run")
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, args []string, opts *scrapeOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	urls, err := collectURLs(args, opts.file)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return errors.New("at least one URL is required")
	}

	records := appInstance.Service.ScrapeMultiple(cmd.Context(), urls, !opts.noCache)

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch opts.format {
	case "json":
		if err := writeRecordsJSON(out, records); err != nil {
			return err
		}
	case "csv":
		if err := writeRecordsCSV(out, records); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", opts.format)
	}

	if len(records) < len(urls) {
		fmt.Fprintf(cmd.ErrOrStderr(), "scraped %d of %d URLs\n", len(records), len(urls))
	}
	return nil
}

func collectURLs(args []string, file string) ([]string, error) {
	urls := append([]string(nil), args...)
	if file == "" {
		return urls, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open url file: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url file: %w", err)
	}
	return urls, nil
}

func writeRecordsJSON(w io.Writer, records []scraper.VideoRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func writeRecordsCSV(w io.Writer, records []scraper.VideoRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"url", "video_id", "username", "display_name", "description",
		"views", "likes", "comments", "shares", "favorites",
		"music_title", "music_author", "duration_sec", "engagement_rate",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.CanonicalURL,
			r.VideoID,
			r.Username,
			r.DisplayName,
			r.Description,
			strconv.FormatInt(r.Views, 10),
			strconv.FormatInt(r.Likes, 10),
			strconv.FormatInt(r.Comments, 10),
			strconv.FormatInt(r.Shares, 10),
			strconv.FormatInt(r.Favorites, 10),
			r.MusicTitle,
			r.MusicAuthor,
			strconv.FormatInt(r.DurationSec, 10),
			strconv.FormatFloat(r.EngagementRate(), 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
