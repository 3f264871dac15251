package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/docsearchd/internal/search"
)

var (
	// search command flags
	searchOrgID       int64
	searchLimit       int
	searchFileID      string
	searchContentType string
	searchThreshold   float32
	searchOutputJSON  bool
)

func init() {
	searchCmd.Flags().Int64Var(&searchOrgID, "org", 0, "Querying tenant ID (required)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (0 uses the configured default)")
	searchCmd.Flags().StringVar(&searchFileID, "file", "", "Restrict to one document ID")
	searchCmd.Flags().StringVar(&searchContentType, "content-type", "", "Restrict to one chunk content type")
	searchCmd.Flags().Float32Var(&searchThreshold, "threshold", 0, "Minimum fused score (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchOutputJSON, "json", false, "Output results as JSON")
	_ = searchCmd.MarkFlagRequired("org")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search a tenant's documents",
	Long: `Run a hybrid search against a tenant's indexed documents.

The query is embedded in both vector spaces and the dense and sparse
result lists are rank-fused. Degraded responses are flagged when a
retrieval path was unavailable.

Examples:
  # Basic search
  docsearchd search "data retention policy" --org 42

  # Restrict to one document
  docsearchd search "encryption at rest" --org 42 --file f-security

  # More results, as JSON
  docsearchd search "onboarding" --org 42 --limit 25 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.engine.Search(context.Background(), search.Request{
		OrgID:          searchOrgID,
		Query:          strings.Join(args, " "),
		Limit:          searchLimit,
		FileID:         searchFileID,
		ContentType:    searchContentType,
		ScoreThreshold: searchThreshold,
	})
	if err != nil {
		return err
	}

	if searchOutputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Degraded != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: degraded response (%s)\n", resp.Degraded)
	}
	if resp.Total == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no results")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tFILE\tPAGE\tCHUNK\tCONTENT")
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%.3f\t%s\t%d\t%s\t%s\n",
			r.Score, r.FileID, r.PageNumber, r.ChunkID, snippet(r.Content, 80))
	}
	return w.Flush()
}

// snippet truncates content to a single display line.
func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
