package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/docsearchd/internal/ingest"
)

var (
	// ingest command flags
	ingestOrgID      int64
	ingestFileID     string
	ingestDocURL     string
	ingestMaxChunk   int
	ingestOutputJSON bool
)

func init() {
	ingestCmd.Flags().Int64Var(&ingestOrgID, "org", 0, "Owning tenant ID (required)")
	ingestCmd.Flags().StringVar(&ingestFileID, "file-id", "", "Document ID (defaults to the filename; single file only)")
	ingestCmd.Flags().StringVar(&ingestDocURL, "url", "", "Source URL stored with the document")
	ingestCmd.Flags().IntVar(&ingestMaxChunk, "max-chunk-size", 0, "Chunk size override in characters")
	ingestCmd.Flags().BoolVar(&ingestOutputJSON, "json", false, "Output results as JSON")
	_ = ingestCmd.MarkFlagRequired("org")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file> [file...]",
	Short: "Ingest documents into the index",
	Long: `Extract, chunk, embed, and index one or more documents.

Each file is chunked, embedded in both vector spaces, and upserted into
the tenant's index. Re-ingesting the same file ID overwrites the
previous chunks in place.

Examples:
  # Ingest one document
  docsearchd ingest handbook.pdf --org 42

  # Ingest with an explicit document ID and source URL
  docsearchd ingest notes.md --org 42 --file-id f-notes --url https://wiki.example.com/notes

  # Ingest a batch
  docsearchd ingest docs/*.md --org 42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestFileID != "" && len(args) > 1 {
		return fmt.Errorf("--file-id cannot be combined with multiple files")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	jobs := make([]ingest.Job, 0, len(args))
	files := make([]*os.File, 0, len(args))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		files = append(files, f)

		fileID := ingestFileID
		if fileID == "" {
			fileID = filepath.Base(path)
		}
		jobs = append(jobs, ingest.Job{
			Source: f,
			Request: ingest.Request{
				FileID:       fileID,
				OrgID:        ingestOrgID,
				Filename:     filepath.Base(path),
				DocURL:       ingestDocURL,
				MaxChunkSize: ingestMaxChunk,
			},
		})
	}

	batch := app.ingest.IngestAll(ctx, jobs)

	if ingestOutputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return err
		}
	} else {
		for _, res := range batch.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s: %d chunks, %d pages, %d words (%s, %v)\n",
				res.FileID, res.ChunksIndexed, res.TotalPages, res.TotalWords, res.Format, res.Duration.Round(time.Millisecond))
		}
		for _, fail := range batch.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %v\n", fail.FileID, fail.Err)
		}
	}

	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(batch.Failed), len(jobs))
	}
	return nil
}
