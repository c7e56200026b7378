package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelscraper/pkg/scraper"
)

var feedLimit int

// feedCmd crawls a user's reels feed
var feedCmd = &cobra.Command{
	Use:   "feed <username>",
	Short: "Crawl a user's reels feed",
	Long: `Crawl a user's public reels feed with a headless browser and print
the collected reels as JSON.

Private, missing and rate-limited accounts are reported through the
result status instead of an error.`,
	Example: `  # Crawl the default number of reels
  reelscraper feed natgeo

  # Crawl up to 50 reels
  reelscraper feed natgeo --limit 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := scraper.NewService(cfg, nil)
		defer service.Close()

		result, err := service.FetchUserFeed(cmd.Context(), args[0], feedLimit)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().IntVarP(&feedLimit, "limit", "l", scraper.DefaultFeedLimit,
		fmt.Sprintf("maximum reels to collect (1-%d)", scraper.MaxFeedLimit))
}
