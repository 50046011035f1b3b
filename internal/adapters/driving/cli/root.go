// Package cli provides the cobra command tree for the quarry binary.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veldtlabs/quarry/internal/core/ports/driving"
	"github.com/veldtlabs/quarry/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set by wiring in cmd/quarry before Execute.
var (
	ingestService driving.Ingestor
	queryService  driving.QueryService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Ingest documents into a searchable knowledge base",
	Long: `Quarry ingests web pages and local documents into a tenant-scoped
vector knowledge base and answers natural-language questions against it.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the driving ports before command execution.
func SetServices(ingest driving.Ingestor, query driving.QueryService) {
	ingestService = ingest
	queryService = query
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
