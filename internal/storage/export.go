// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a fact with the person and source names joined in,
// so exports read without a second lookup.
type ExportEntry struct {
	ID         string  `json:"id" yaml:"id"`
	Type       string  `json:"type" yaml:"type"`
	Person     string  `json:"person" yaml:"person"`
	PersonID   string  `json:"person_id" yaml:"person_id"`
	Content    string  `json:"content" yaml:"content"`
	Date       string  `json:"date,omitempty" yaml:"date,omitempty"`
	Place      string  `json:"place,omitempty" yaml:"place,omitempty"`
	Source     string  `json:"source,omitempty" yaml:"source,omitempty"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Origin     string  `json:"origin" yaml:"origin"`
	Rule       string  `json:"rule,omitempty" yaml:"rule,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes matching facts to export.yaml in the data
// directory. It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching facts to export.json in the data
// directory. It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			ID:         r.Fact.ID,
			Type:       string(r.Fact.Type),
			Person:     r.PersonName,
			PersonID:   r.Fact.PersonID,
			Content:    r.Fact.Content,
			Date:       r.Fact.Date,
			Place:      r.Fact.Place,
			Source:     r.SourceTitle,
			Confidence: r.Fact.Confidence,
			Origin:     string(r.Fact.Origin),
			Rule:       r.Fact.Rule,
		}
	}
	return entries, nil
}
