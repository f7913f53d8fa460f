// Command hnfeed serves tier-annotated Hacker News frontpage pages over
// HTTP and provides small operational subcommands.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
