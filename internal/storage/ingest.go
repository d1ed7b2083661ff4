// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/daveshawley/familytree/pkg/types"
)

// IngestSummary reports the outcome of one ingest run.
type IngestSummary struct {
	Ingested int
	Skipped  int
	Failed   int
	Batch    string
}

// IngestRecords loads every YAML record file under cfg.RecordsDir into
// both backends. Files whose modification time has not changed since
// the last run are skipped. Person identifiers inside a record file are
// local aliases; they are rewritten to content-derived identifiers
// before anything is stored, so facts and relations inside the file can
// reference people by alias.
//
// A failing file is reported and skipped rather than aborting the run.
func (l *Layer) IngestRecords(ctx context.Context, cfg types.IngestConfig, progress io.Writer) (IngestSummary, error) {
	if progress == nil {
		progress = io.Discard
	}

	files, err := recordFiles(cfg.RecordsDir)
	if err != nil {
		return IngestSummary{}, err
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	batch := uuid.NewString()
	summary := IngestSummary{Batch: batch}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, file := range files {
		g.Go(func() error {
			status, err := l.ingestFile(gctx, file, batch)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				fmt.Fprintf(progress, "FAIL %s: %v\n", filepath.Base(file), err)
				l.log.Warn("record file failed",
					zap.String("file", file), zap.Error(err))
			case status == ingestSkipped:
				summary.Skipped++
			default:
				summary.Ingested++
				fmt.Fprintf(progress, "ok   %s\n", filepath.Base(file))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

type ingestOutcome int

const (
	ingestDone ingestOutcome = iota
	ingestSkipped
)

func (l *Layer) ingestFile(ctx context.Context, path, batch string) (ingestOutcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ingestDone, fmt.Errorf("inspecting record file: %w", err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	recordID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	previous, err := l.store.ingestStatus(ctx, recordID)
	if err != nil {
		return ingestDone, err
	}
	if previous == modTime {
		return ingestSkipped, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ingestDone, fmt.Errorf("reading record file: %w", err)
	}

	var record types.RecordFile
	if err := yaml.Unmarshal(raw, &record); err != nil {
		return ingestDone, fmt.Errorf("parsing record file: %w", err)
	}

	if err := l.applyRecord(ctx, record, batch); err != nil {
		return ingestDone, err
	}

	if err := l.store.setIngestStatus(ctx, recordID, modTime); err != nil {
		return ingestDone, err
	}
	return ingestDone, nil
}

// applyRecord stores one record file. Aliases resolve in declaration
// order: the source first, then people, then facts and relations that
// reference them.
func (l *Layer) applyRecord(ctx context.Context, record types.RecordFile, batch string) error {
	sourceID := record.SourceID
	if record.Source != nil {
		id, err := l.AddSource(ctx, *record.Source)
		if err != nil {
			return fmt.Errorf("adding source: %w", err)
		}
		sourceID = id
	}

	aliases := make(map[string]string, len(record.Persons))
	for _, person := range record.Persons {
		alias := person.ID
		person.ID = ""
		id, err := l.AddPerson(ctx, person)
		if err != nil {
			return fmt.Errorf("adding person %q: %w", person.DisplayName(), err)
		}
		if alias != "" {
			aliases[alias] = id
		}
	}

	resolve := func(ref string) string {
		if id, ok := aliases[ref]; ok {
			return id
		}
		return ref
	}

	for _, fact := range record.Facts {
		fact.PersonID = resolve(fact.PersonID)
		if fact.SourceID == "" {
			fact.SourceID = sourceID
		}
		fact.Batch = batch
		if _, err := l.AssertFact(ctx, fact); err != nil {
			return fmt.Errorf("asserting fact: %w", err)
		}
	}

	for _, rel := range record.Relations {
		err := l.Relate(ctx, resolve(rel.FromID), resolve(rel.ToID), rel.Type, sourceID)
		if err != nil {
			return fmt.Errorf("relating %s to %s: %w", rel.FromID, rel.ToID, err)
		}
	}

	return nil
}

func recordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading records directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) ingestStatus(ctx context.Context, recordID string) (string, error) {
	var modTime string
	err := s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM ingest_status WHERE record_id = ?`, recordID,
	).Scan(&modTime)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading ingest status: %w", err)
	}
	return modTime, nil
}

func (s *Store) setIngestStatus(ctx context.Context, recordID, modTime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingest_status (record_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(record_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		recordID, modTime)
	if err != nil {
		return fmt.Errorf("recording ingest status: %w", err)
	}
	return nil
}
