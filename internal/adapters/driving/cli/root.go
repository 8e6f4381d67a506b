// Package cli provides the cobra command-line interface: serve,
// ingest, bootstrap and version.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/core/ports/driving"
	"github.com/askdocs/ragserver/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// App bundles the wired services a command needs. Built lazily so the
// --config flag is parsed before any adapter touches the network.
type App struct {
	Query  driving.QueryService
	Ingest driving.IngestionService
	Index  driven.VectorIndex

	// Listen is the HTTP listen address for serve.
	Listen string

	// SnapshotPath is the local snapshot file, used by serve at
	// startup and by ingest --snapshot.
	SnapshotPath string

	// BootstrapURI is the default remote snapshot for bootstrap.
	BootstrapURI string

	// Close releases adapter resources. May be nil.
	Close func()
}

// AppBuilder constructs the application from the config file path.
type AppBuilder func(configPath string) (*App, error)

var (
	buildApp   AppBuilder
	configPath string
	verbose    bool
)

// SetAppBuilder installs the application constructor. Must be called
// before Execute.
func SetAppBuilder(b AppBuilder) {
	buildApp = b
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragserver",
	Short: "Question answering over your own documents",
	Long: `ragserver ingests PDF documents, indexes them for semantic
retrieval, and answers questions with cited sources over an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app builds the application, or returns the error that should abort
// the command.
func app() (*App, error) {
	if buildApp == nil {
		return nil, fmt.Errorf("application builder not configured")
	}
	return buildApp(configPath)
}
