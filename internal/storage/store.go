// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists the family tree and unifies its two
// backends: a relational store for people, sources, and facts, and a
// graph store for the relationships between people.
//
// Identifiers returned by this layer are opaque strings. They can be
// compared safely for equality and nothing else; callers must not peek
// into or manipulate them.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/daveshawley/familytree/pkg/types"
)

const dbFile = "familytree.db"

// ErrNotFound reports a lookup for an identifier the store does not hold.
var ErrNotFound = errors.New("not found")

// Store manages the relational half of the tree in SQLite.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the SQLite database under cfg.DataDir,
// creating the schema when it does not exist.
func NewStore(cfg types.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS people (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			middle_name TEXT,
			last_name TEXT NOT NULL,
			gender TEXT,
			birth_date TEXT,
			death_date TEXT,
			created TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS source (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			authority TEXT,
			author TEXT,
			title TEXT NOT NULL,
			created TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS facts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			person_id TEXT NOT NULL REFERENCES people(id),
			content TEXT NOT NULL,
			date TEXT,
			place TEXT,
			source_id TEXT REFERENCES source(id),
			confidence REAL,
			origin TEXT NOT NULL DEFAULT 'asserted',
			rule TEXT,
			batch TEXT,
			created TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_person_id ON facts(person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_type ON facts(type)`,
		`CREATE INDEX IF NOT EXISTS idx_facts_origin ON facts(origin)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			record_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='facts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE facts_fts USING fts5(content, content=facts, content_rowid=rowid)`,
			`CREATE TRIGGER facts_ai AFTER INSERT ON facts BEGIN
				INSERT INTO facts_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER facts_ad AFTER DELETE ON facts BEGIN
				INSERT INTO facts_fts(facts_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER facts_au AFTER UPDATE ON facts BEGIN
				INSERT INTO facts_fts(facts_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO facts_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SavePerson inserts or updates a person record. The ID must already be
// assigned; the storage layer does that before calling here.
func (s *Store) SavePerson(ctx context.Context, p types.Person) error {
	if p.ID == "" {
		return errors.New("person has no identifier")
	}
	created := p.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, first_name, middle_name, last_name, gender, birth_date, death_date, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			first_name=excluded.first_name, middle_name=excluded.middle_name,
			last_name=excluded.last_name, gender=excluded.gender,
			birth_date=excluded.birth_date, death_date=excluded.death_date`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, string(p.Gender),
		p.BirthDate, p.DeathDate, created.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving person %s: %w", p.ID, err)
	}
	return nil
}

// GetPerson retrieves a person by identifier.
func (s *Store) GetPerson(ctx context.Context, id string) (types.Person, error) {
	var (
		p       types.Person
		gender  sql.NullString
		middle  sql.NullString
		birth   sql.NullString
		death   sql.NullString
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, first_name, middle_name, last_name, gender, birth_date, death_date, created
		 FROM people WHERE id = ?`, id,
	).Scan(&p.ID, &p.FirstName, &middle, &p.LastName, &gender, &birth, &death, &created)
	if err == sql.ErrNoRows {
		return types.Person{}, fmt.Errorf("person %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Person{}, fmt.Errorf("looking up person %s: %w", id, err)
	}

	p.MiddleName = middle.String
	p.Gender = types.Gender(gender.String)
	p.BirthDate = birth.String
	p.DeathDate = death.String
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		p.Created = t
	}
	return p, nil
}

// SearchPeople finds people whose name parts contain the given term,
// case-insensitively.
func (s *Store) SearchPeople(ctx context.Context, term string) ([]types.Person, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_name, middle_name, last_name, gender, birth_date, death_date
		 FROM people
		 WHERE first_name LIKE ? OR middle_name LIKE ? OR last_name LIKE ?
		 ORDER BY last_name, first_name
		 LIMIT ?`,
		pattern, pattern, pattern, s.maxResults,
	)
	if err != nil {
		return nil, fmt.Errorf("searching people: %w", err)
	}
	defer rows.Close()

	var people []types.Person
	for rows.Next() {
		var (
			p      types.Person
			middle sql.NullString
			gender sql.NullString
			birth  sql.NullString
			death  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.FirstName, &middle, &p.LastName, &gender, &birth, &death); err != nil {
			return nil, fmt.Errorf("scanning person row: %w", err)
		}
		p.MiddleName = middle.String
		p.Gender = types.Gender(gender.String)
		p.BirthDate = birth.String
		p.DeathDate = death.String
		people = append(people, p)
	}
	return people, rows.Err()
}

// SaveSource inserts or updates a source record.
func (s *Store) SaveSource(ctx context.Context, src types.Source) error {
	if src.ID == "" {
		return errors.New("source has no identifier")
	}
	created := src.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source (id, type, authority, author, title, created)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type=excluded.type, authority=excluded.authority,
			author=excluded.author, title=excluded.title`,
		src.ID, string(src.Type), src.Authority, src.Author, src.Title,
		created.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving source %s: %w", src.ID, err)
	}
	return nil
}

// GetSource retrieves a source by identifier.
func (s *Store) GetSource(ctx context.Context, id string) (types.Source, error) {
	var (
		src       types.Source
		authority sql.NullString
		author    sql.NullString
		created   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, type, authority, author, title, created FROM source WHERE id = ?`, id,
	).Scan(&src.ID, &src.Type, &authority, &author, &src.Title, &created)
	if err == sql.ErrNoRows {
		return types.Source{}, fmt.Errorf("source %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Source{}, fmt.Errorf("looking up source %s: %w", id, err)
	}
	src.Authority = authority.String
	src.Author = author.String
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		src.Created = t
	}
	return src, nil
}

// ListSources returns all recorded sources ordered by title.
func (s *Store) ListSources(ctx context.Context) ([]types.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, authority, author, title FROM source ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		var (
			src       types.Source
			authority sql.NullString
			author    sql.NullString
		)
		if err := rows.Scan(&src.ID, &src.Type, &authority, &author, &src.Title); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		src.Authority = authority.String
		src.Author = author.String
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// SaveFact inserts a fact. Existing facts with the same identifier are
// left untouched: fact identity is content-derived, so a duplicate
// insert is the same statement being recorded twice.
func (s *Store) SaveFact(ctx context.Context, f types.Fact) error {
	if f.ID == "" {
		return errors.New("fact has no identifier")
	}
	created := f.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO facts
			(id, type, person_id, content, date, place, source_id, confidence, origin, rule, batch, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, string(f.Type), f.PersonID, f.Content, f.Date, f.Place,
		nullable(f.SourceID), f.Confidence, string(f.Origin), nullable(f.Rule),
		nullable(f.Batch), created.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving fact %s: %w", f.ID, err)
	}
	return nil
}

// HasFactContent reports whether any fact of the given type and person
// already records the statement, regardless of origin. The inference
// materializer uses this to avoid shadowing assertions.
func (s *Store) HasFactContent(ctx context.Context, factType types.FactType, personID, content string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM facts WHERE type = ? AND person_id = ? AND content = ?`,
		string(factType), personID, content,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for fact: %w", err)
	}
	return count > 0, nil
}

// DeleteDerivedFacts removes all derived facts, leaving assertions
// untouched. Re-running inference after edits starts from a clean slate.
func (s *Store) DeleteDerivedFacts(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM facts WHERE origin = ?`, string(types.OriginDerived))
	if err != nil {
		return 0, fmt.Errorf("deleting derived facts: %w", err)
	}
	return result.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
