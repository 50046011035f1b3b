package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

var (
	ingestBusinessID string
	ingestTable      string
	ingestMaxTokens  int
	ingestMinWords   int
	ingestCrawl      bool
	ingestMaxDepth   int
	ingestCategory   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [sources...]",
	Short: "Ingest documents into the knowledge base",
	Long: `Fetches the given URLs or local files, chunks their content and
stores the embedded chunks. With --crawl, same-site links are discovered
from the seed pages up to --max-depth.

One source failing never aborts the run; failures are reported at the end.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestBusinessID, "business-id", "b", "", "tenant identifier (required)")
	ingestCmd.Flags().StringVarP(&ingestTable, "table", "t", "", "target table (auto-generated when omitted)")
	ingestCmd.Flags().IntVar(&ingestMaxTokens, "max-tokens", 0, "maximum tokens per chunk (default 512)")
	ingestCmd.Flags().IntVar(&ingestMinWords, "min-words", 0, "minimum words per chunk (default 15)")
	ingestCmd.Flags().BoolVar(&ingestCrawl, "crawl", false, "follow same-site links from seeds")
	ingestCmd.Flags().IntVar(&ingestMaxDepth, "max-depth", 1, "link discovery depth with --crawl")
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "", "tag stored with every chunk")
	_ = ingestCmd.MarkFlagRequired("business-id")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	result, err := ingestService.Ingest(cmd.Context(), driving.IngestRequest{
		Sources:       args,
		BusinessID:    ingestBusinessID,
		TableName:     ingestTable,
		MaxTokens:     ingestMaxTokens,
		MinWords:      ingestMinWords,
		CrawlInternal: ingestCrawl,
		MaxDepth:      ingestMaxDepth,
		Category:      ingestCategory,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Table: %s\n", result.TableName)
	cmd.Printf("Stored %d chunks from %d source(s)\n", result.ChunkCount, len(result.Stored))
	if len(result.Failed) > 0 {
		cmd.Printf("%d source(s) failed:\n", len(result.Failed))
		for _, f := range result.Failed {
			cmd.Printf("  %s [%s]: %s\n", f.SourceID, f.Stage, f.Reason)
		}
	}
	return nil
}
