// Package main implements the docsearchd CLI: a hybrid document
// retrieval daemon with ingest and search commands for manual
// operations.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file.
	configPath string
	// useMemoryStore swaps Qdrant for the embedded in-memory index,
	// for local development without external services.
	useMemoryStore bool
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docsearchd",
	Short: "Multi-tenant hybrid document retrieval daemon",
	Long: `docsearchd ingests business documents, splits them into retrievable
chunks, embeds each chunk in a dense and a sparse vector space, and
answers free-text queries with rank-fused results.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMemoryStore, "memory", false, "use the embedded in-memory index instead of Qdrant")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
}
