package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelscraper/pkg/scraper"
)

// fetchCmd resolves a single reel URL
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a single reel's data by URL",
	Long: `Fetch one reel directly over HTTP and print its data as JSON.

The fetch goes through the configured proxy pool when one is set, and
recently fetched reels are served from cache while Instagram is rate
limiting.`,
	Example: `  # Fetch a reel
  reelscraper fetch https://www.instagram.com/reel/CxYz123/

  # Fetch through proxies from the environment
  REELSCRAPER_PROXIES=http://p1:8080,http://p2:8080 reelscraper fetch https://www.instagram.com/reel/CxYz123/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := scraper.NewService(cfg, nil)
		defer service.Close()

		reel, err := service.FetchItem(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(reel); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
