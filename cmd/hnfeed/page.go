package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlundgren/hnfeed/pkg/feed"
)

var (
	pageCursor string
	pageCount  int
)

// pageCmd fetches one page and prints it as JSON, for scripting and
// debugging without a running server.
var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Fetch one feed page and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		defer app.close()

		result, err := app.assembler.GetPage(cmd.Context(), feed.Cursor(pageCursor), pageCount)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	pageCmd.Flags().StringVar(&pageCursor, "cursor", "", "continuation cursor from a previous page")
	pageCmd.Flags().IntVar(&pageCount, "n", 0, "page size (default from config)")
	rootCmd.AddCommand(pageCmd)
}
