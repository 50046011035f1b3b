package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/veldtlabs/quarry/internal/core/ports/driving"
	"github.com/veldtlabs/quarry/internal/logger"
)

var (
	watchBusinessID string
	watchTable      string
	watchCategory   string
)

// watchedExtensions are the file types re-ingested on change.
var watchedExtensions = []string{".txt", ".md", ".html", ".htm"}

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest changed files",
	Long: `Monitors a directory and re-ingests files as they are created or
modified. Requires a stable --table so repeated ingests target the same
knowledge base.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchBusinessID, "business-id", "b", "", "tenant identifier (required)")
	watchCmd.Flags().StringVarP(&watchTable, "table", "t", "", "target table (required)")
	watchCmd.Flags().StringVar(&watchCategory, "category", "", "tag stored with every chunk")
	_ = watchCmd.MarkFlagRequired("business-id")
	_ = watchCmd.MarkFlagRequired("table")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	dir := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	cmd.Printf("Watching %s (table %s). Ctrl-C to stop.\n", dir, watchTable)
	ctx := cmd.Context()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !watchedExtension(event.Name) {
				continue
			}

			logger.Info("Change detected: %s", event.Name)
			result, err := ingestService.Ingest(ctx, driving.IngestRequest{
				Sources:    []string{event.Name},
				BusinessID: watchBusinessID,
				TableName:  watchTable,
				Category:   watchCategory,
			})
			if err != nil {
				cmd.Printf("ingest %s: %v\n", event.Name, err)
				continue
			}
			cmd.Printf("Ingested %s: %d chunks\n", event.Name, result.ChunkCount)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func watchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range watchedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
