// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/daveshawley/familytree/pkg/types"
)

// QueryOptions narrows a fact retrieval. Zero-valued fields do not
// filter. Query, when set, runs a full-text match against fact content.
type QueryOptions struct {
	Query      string
	Type       types.FactType
	PersonID   string
	SourceID   string
	Origin     types.FactOrigin
	MaxResults int
}

// IsEmpty reports whether the options select everything.
func (o QueryOptions) IsEmpty() bool {
	return o.Query == "" && o.Type == "" && o.PersonID == "" &&
		o.SourceID == "" && o.Origin == ""
}

// QueryResult is one retrieved fact joined with the names it cites.
type QueryResult struct {
	Fact        types.Fact
	PersonName  string
	SourceTitle string
}

// Retrieve returns facts matching the options, newest first. Full-text
// queries rank by relevance instead.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		query strings.Builder
		args  []any
	)

	query.WriteString(`SELECT f.id, f.type, f.person_id, f.content, f.date, f.place,
		f.source_id, f.confidence, f.origin, f.rule, f.batch,
		p.first_name, p.last_name, coalesce(src.title, '')
		FROM facts f
		JOIN people p ON p.id = f.person_id
		LEFT JOIN source src ON src.id = f.source_id`)

	var conditions []string
	if opts.Query != "" {
		query.WriteString(` JOIN facts_fts ON facts_fts.rowid = f.rowid`)
		conditions = append(conditions, `facts_fts MATCH ?`)
		args = append(args, ftsQuery(opts.Query))
	}
	if opts.Type != "" {
		conditions = append(conditions, `f.type = ?`)
		args = append(args, string(opts.Type))
	}
	if opts.PersonID != "" {
		conditions = append(conditions, `f.person_id = ?`)
		args = append(args, opts.PersonID)
	}
	if opts.SourceID != "" {
		conditions = append(conditions, `f.source_id = ?`)
		args = append(args, opts.SourceID)
	}
	if opts.Origin != "" {
		conditions = append(conditions, `f.origin = ?`)
		args = append(args, string(opts.Origin))
	}

	if len(conditions) > 0 {
		query.WriteString(` WHERE `)
		query.WriteString(strings.Join(conditions, ` AND `))
	}

	if opts.Query != "" {
		query.WriteString(` ORDER BY facts_fts.rank`)
	} else {
		query.WriteString(` ORDER BY f.created DESC, f.rowid DESC`)
	}
	query.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("retrieving facts: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			r         QueryResult
			date      nullString
			place     nullString
			sourceID  nullString
			rule      nullString
			batch     nullString
			firstName string
			lastName  string
		)
		err := rows.Scan(&r.Fact.ID, &r.Fact.Type, &r.Fact.PersonID, &r.Fact.Content,
			&date, &place, &sourceID, &r.Fact.Confidence, &r.Fact.Origin, &rule, &batch,
			&firstName, &lastName, &r.SourceTitle)
		if err != nil {
			return nil, fmt.Errorf("scanning fact row: %w", err)
		}
		r.Fact.Date = date.value
		r.Fact.Place = place.value
		r.Fact.SourceID = sourceID.value
		r.Fact.Rule = rule.value
		r.Fact.Batch = batch.value
		r.PersonName = strings.TrimSpace(firstName + " " + lastName)
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes each term so punctuation in user input does not reach
// the FTS5 query parser as syntax.
func ftsQuery(input string) string {
	terms := strings.Fields(input)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, ``)+`"`)
	}
	return strings.Join(quoted, " ")
}

// nullString scans a nullable TEXT column into a plain string.
type nullString struct {
	value string
}

func (n *nullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.value = ""
	case string:
		n.value = v
	case []byte:
		n.value = string(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	return nil
}
