// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daveshawley/familytree/internal/storage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load YAML record files into the tree",
	Long: `Ingest reads every record file from the records directory and stores
its source, people, facts, and relations. Files unchanged since the
last run are skipped, so re-running after edits is cheap.

With --watch, ingest keeps running and re-ingests whenever a record
file changes. Stop it with Ctrl-C.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := treeConfig(cmd)
	if recordsDir, _ := cmd.Flags().GetString("records-dir"); recordsDir != "" {
		cfg.Ingest.RecordsDir = recordsDir
	}
	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		cfg.Ingest.Concurrency = concurrency
	}

	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	summary, err := layer.IngestRecords(ctx, cfg.Ingest, os.Stdout)
	if err != nil {
		return err
	}
	printIngestSummary(summary)

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		if summary.Failed > 0 {
			return fmt.Errorf("%d record file(s) failed", summary.Failed)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for changes...\n", cfg.Ingest.RecordsDir)
	if err := layer.WatchRecords(ctx, cfg.Ingest, 0, os.Stdout, printIngestSummary); err != nil {
		return err
	}
	fmt.Println("Stopped.")
	return nil
}

func printIngestSummary(summary storage.IngestSummary) {
	fmt.Printf("Ingested %d, skipped %d, failed %d (batch %s)\n",
		summary.Ingested, summary.Skipped, summary.Failed, summary.Batch)
}

func init() {
	ingestCmd.Flags().String("records-dir", "", "directory of YAML record files (default: ./records)")
	ingestCmd.Flags().Int("concurrency", 0, "record files processed in parallel")
	ingestCmd.Flags().Bool("watch", false, "keep running and re-ingest on changes")
	rootCmd.AddCommand(ingestCmd)
}
