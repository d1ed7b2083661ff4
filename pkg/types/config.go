// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StorageConfig holds settings for the relational store.
type StorageConfig struct {
	// DataDir is the base directory for the tree (contains the database
	// file, records/, and export output).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GraphConfig holds settings for the Neo4j graph backend.
type GraphConfig struct {
	// BaseURL is the Neo4j REST service root
	// (default "http://localhost:7474/db/data").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// RequestsPerSecond caps the request rate against the graph server.
	// Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries bounds retry attempts on HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Username and Password authenticate against the graph server.
	// Both empty means unauthenticated access.
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// IngestConfig holds settings for record-file ingestion.
type IngestConfig struct {
	// RecordsDir is the directory scanned for record YAML files.
	RecordsDir string `json:"records_dir" yaml:"records_dir"`

	// Concurrency is the number of record files processed in parallel
	// (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// TreeConfig groups all configuration for the familytree CLI.
type TreeConfig struct {
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Graph   GraphConfig   `json:"graph" yaml:"graph"`
	Ingest  IngestConfig  `json:"ingest" yaml:"ingest"`
}
