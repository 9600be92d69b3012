package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextdocs/mcp-server/internal/indexing"
	"github.com/nextdocs/mcp-server/internal/runtime"
)

var rootCmd = &cobra.Command{
	Use:   "indexer <docs-dir> <out-dir>",
	Short: "Build a documentation snapshot from an MDX docs tree",
	Long: `Extract every .md and .mdx page under <docs-dir> and write the
snapshot and build stats into <out-dir>.

Without --version the default snapshot (docs-metadata.json) is written.
With --version 14 the output is docs-metadata-14.json and page URLs point
at the v14 documentation.`,
	Example:      "  indexer docs/ data/\n  indexer --version 14 docs-v14/ data/",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runIndexer,
}

func init() {
	rootCmd.Flags().String("version", "", "Documentation version label (e.g. 14, 15, latest)")
	rootCmd.Flags().String("base-url", indexing.DefaultBaseURL, "Documentation site root used for page URLs")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, args []string) error {
	docsDir, outDir := args[0], args[1]

	version, _ := cmd.Flags().GetString("version")
	baseURL, _ := cmd.Flags().GetString("base-url")

	label := version
	if label == "" {
		label = runtime.LatestVersion
	}

	log.Printf("Documentation Indexer (snapshot schema v%d)", indexing.SnapshotSchemaVersion)
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	start := time.Now()

	// Step 1: Extract pages
	log.Printf("Extracting documentation: %s (version %s)", docsDir, label)
	records, err := indexing.LoadCorpus(cmd.Context(), docsDir, indexing.ExtractOptions{
		Version: label,
		BaseURL: runtime.VersionedBaseURL(baseURL, version),
	})
	if errors.Is(err, indexing.ErrEmptyCorpus) {
		return fmt.Errorf("%w in %s", err, docsDir)
	}
	if err != nil {
		return fmt.Errorf("failed to extract documentation: %w", err)
	}
	log.Printf("✓ Extracted %d pages", len(records))

	// Step 2: Write snapshot and stats
	stats := indexing.NewBuildStats(records, label, time.Since(start))
	if err := indexing.WriteSnapshot(outDir, version, records, stats); err != nil {
		return err
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✓ Indexing complete!")
	log.Printf("")
	log.Printf("Snapshot details:")
	log.Printf("  Location:      %s/%s", outDir, indexing.SnapshotFileName(version))
	log.Printf("  Total docs:    %d", stats.TotalDocs)
	log.Printf("  Code examples: %d", stats.TotalCodeExamples)
	for _, category := range indexing.Categories {
		log.Printf("  %-14s %d", category+":", stats.Categories[category])
	}
	log.Printf("  Duration:      %s", stats.BuildDuration)

	return nil
}
