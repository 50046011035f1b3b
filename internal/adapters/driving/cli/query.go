package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/quarry/internal/core/domain"
	"github.com/veldtlabs/quarry/internal/core/ports/driving"
)

var (
	queryBusinessID string
	queryTable      string
	queryThreshold  float64
	queryCount      int
	queryJSON       bool
)

var (
	answerStyle  = lipgloss.NewStyle().Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	sourceStyle  = lipgloss.NewStyle().Faint(true)
	contextStyle = lipgloss.NewStyle().PaddingLeft(2)
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Embeds the question, retrieves the most similar chunks scoped to the
tenant, filters them by the similarity threshold and prints the ranked
context set with the composed answer when a completion model is
configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryBusinessID, "business-id", "b", "", "tenant identifier (required)")
	queryCmd.Flags().StringVarP(&queryTable, "table", "t", "", "table to search (required)")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "minimum similarity score 0-1 (default 0.7)")
	queryCmd.Flags().IntVarP(&queryCount, "count", "n", 0, "maximum context chunks (default 3)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	_ = queryCmd.MarkFlagRequired("business-id")
	_ = queryCmd.MarkFlagRequired("table")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	result, err := queryService.Query(cmd.Context(), driving.QueryRequest{
		Question:       args[0],
		BusinessID:     queryBusinessID,
		TableName:      queryTable,
		MatchThreshold: queryThreshold,
		MatchCount:     queryCount,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printQueryResult(cmd, result)
	return nil
}

func printQueryResult(cmd *cobra.Command, result *domain.QueryResult) {
	if result.ContextCount == 0 {
		cmd.Println("No matching context found.")
		return
	}

	if result.Answer != "" {
		cmd.Println(answerStyle.Render(result.Answer))
		cmd.Println()
	}

	cmd.Printf("Sources (%d):\n", result.ContextCount)
	for i, src := range result.Sources {
		title := ""
		if t, ok := src.Metadata["title"].(string); ok && t != "" {
			title = " - " + t
		}
		cmd.Printf("%d. %s%s\n", i+1,
			scoreStyle.Render(fmt.Sprintf("%.3f", src.Similarity)),
			sourceStyle.Render(title))
		cmd.Println(contextStyle.Render(truncate(src.Text, 300)))
	}
}

// truncate shortens s to at most n runes, cutting on a rune boundary.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
