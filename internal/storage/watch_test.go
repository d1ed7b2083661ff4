package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daveshawley/familytree/pkg/types"
)

func startWatch(t *testing.T, layer *Layer, recordsDir string) chan IngestSummary {
	t.Helper()
	summaries := make(chan IngestSummary, 8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- layer.WatchRecords(ctx, types.IngestConfig{RecordsDir: recordsDir},
			5*time.Millisecond, io.Discard, func(s IngestSummary) { summaries <- s })
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watch returned %v", err)
		}
	})
	return summaries
}

func TestWatchRecordsReingestsOnChange(t *testing.T) {
	layer, _, _ := testSetup(t)
	recordsDir := t.TempDir()

	summaries := startWatch(t, layer, recordsDir)

	// The watcher starts asynchronously, so keep rewriting the record
	// file until a run is observed.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var summary IngestSummary
waiting:
	for {
		select {
		case summary = <-summaries:
			break waiting
		case <-deadline:
			t.Fatal("no ingest observed after record file changes")
		case <-tick.C:
			writeRecordFile(t, recordsDir, "census-1901.yaml", sampleRecord())
		}
	}

	if summary.Ingested != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}

	people, err := layer.Store().SearchPeople(context.Background(), "shaw")
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 2 {
		t.Errorf("found %d people after re-ingest, want 2", len(people))
	}
}

func TestWatchRecordsIgnoresUnrelatedFiles(t *testing.T) {
	layer, _, _ := testSetup(t)
	recordsDir := t.TempDir()

	summaries := startWatch(t, layer, recordsDir)

	// Give the watcher a moment to register before writing.
	time.Sleep(300 * time.Millisecond)
	path := filepath.Join(recordsDir, "notes.txt")
	if err := os.WriteFile(path, []byte("not a record"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case summary := <-summaries:
		t.Fatalf("unexpected ingest %+v", summary)
	case <-time.After(700 * time.Millisecond):
	}
}
