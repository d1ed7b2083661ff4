// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daveshawley/familytree/internal/ident"
	"github.com/daveshawley/familytree/internal/inference"
	"github.com/daveshawley/familytree/pkg/types"
)

// Graph is the relationship backend. The Neo4j client satisfies it;
// tests substitute an in-memory implementation.
type Graph interface {
	EnsureIndexed(ctx context.Context, label string) error
	HasNode(ctx context.Context, label, externalID string) (bool, error)
	CreateNode(ctx context.Context, label, externalID string, properties map[string]any) error
	Relate(ctx context.Context, label, fromID, toID string, relation types.RelationType) error
	Relations(ctx context.Context, externalID string) ([]types.Relation, error)
	AllRelations(ctx context.Context) ([]types.Relation, error)
}

// Node labels used in the graph backend.
const (
	LabelPerson = "Person"
	LabelSource = "Source"
)

// Layer coordinates the relational and graph backends so that callers
// see a single tree. Writes go to both stores; the relational store is
// authoritative for attributes and the graph store for relationships.
type Layer struct {
	store *Store
	graph Graph
	log   *zap.Logger
}

// NewLayer builds a storage layer over an open store and graph client.
func NewLayer(store *Store, graph Graph, log *zap.Logger) *Layer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layer{store: store, graph: graph, log: log}
}

// Store exposes the relational backend for read-only query helpers.
func (l *Layer) Store() *Store {
	return l.store
}

// AddPerson records a person in both backends and returns the assigned
// identifier. When the person carries no identifier one is derived from
// its identifying attributes, so re-adding the same person is a no-op.
func (l *Layer) AddPerson(ctx context.Context, p types.Person) (string, error) {
	if p.FirstName == "" && p.LastName == "" {
		return "", errors.New("person needs at least one name part")
	}
	if p.ID == "" {
		p.ID = ident.GenerateHash("person", p.IdentifyingData())
	}

	exists, err := l.graph.HasNode(ctx, LabelPerson, p.ID)
	if err != nil {
		return "", fmt.Errorf("checking graph for person: %w", err)
	}

	if err := l.store.SavePerson(ctx, p); err != nil {
		return "", err
	}

	if !exists {
		props := map[string]any{"name": p.DisplayName()}
		if err := l.graph.CreateNode(ctx, LabelPerson, p.ID, props); err != nil {
			return "", fmt.Errorf("creating person node: %w", err)
		}
		l.log.Debug("created person node", zap.String("id", p.ID))
	}

	return p.ID, nil
}

// AddSource records a documentary source in both backends and returns
// the assigned identifier. Identity is derived from title, type, and
// creation day, so citing the same source twice yields one record.
func (l *Layer) AddSource(ctx context.Context, src types.Source) (string, error) {
	if src.Title == "" {
		return "", errors.New("source needs a title")
	}
	if src.Created.IsZero() {
		src.Created = time.Now().UTC()
	}
	if src.ID == "" {
		src.ID = ident.SourceID(src.Title, string(src.Type), src.Created)
	}

	exists, err := l.graph.HasNode(ctx, LabelSource, src.ID)
	if err != nil {
		return "", fmt.Errorf("checking graph for source: %w", err)
	}

	if err := l.store.SaveSource(ctx, src); err != nil {
		return "", err
	}

	if !exists {
		props := map[string]any{"title": src.Title}
		if err := l.graph.CreateNode(ctx, LabelSource, src.ID, props); err != nil {
			return "", fmt.Errorf("creating source node: %w", err)
		}
	}

	return src.ID, nil
}

// AssertFact records a fact about a person. The person must already be
// stored, and the source, when cited, must be too. Returns the fact
// identifier.
func (l *Layer) AssertFact(ctx context.Context, f types.Fact) (string, error) {
	if f.PersonID == "" {
		return "", errors.New("fact needs a person")
	}
	if f.Content == "" {
		return "", errors.New("fact needs content")
	}
	if _, err := l.store.GetPerson(ctx, f.PersonID); err != nil {
		return "", fmt.Errorf("resolving fact subject: %w", err)
	}
	if f.SourceID != "" {
		if _, err := l.store.GetSource(ctx, f.SourceID); err != nil {
			return "", fmt.Errorf("resolving fact source: %w", err)
		}
	}

	if f.Origin == "" {
		f.Origin = types.OriginAsserted
	}
	if f.Confidence == 0 {
		f.Confidence = 1.0
	}
	if f.ID == "" {
		f.ID = ident.GenerateHash("fact", f.IdentifyingData())
	}

	if err := l.store.SaveFact(ctx, f); err != nil {
		return "", err
	}
	return f.ID, nil
}

// Relate records a direct relationship between two stored people. Only
// assertable relation kinds are accepted; everything else is the
// inference engine's business. A provenance fact is recorded alongside
// the graph edge so the relationship can be queried and cited like any
// other statement.
func (l *Layer) Relate(ctx context.Context, fromID, toID string, kind types.RelationType, sourceID string) error {
	if !kind.Assertable() {
		return fmt.Errorf("relation %q cannot be asserted directly", kind)
	}
	if fromID == toID {
		return errors.New("a person cannot relate to themselves")
	}

	from, err := l.store.GetPerson(ctx, fromID)
	if err != nil {
		return fmt.Errorf("resolving relation subject: %w", err)
	}
	to, err := l.store.GetPerson(ctx, toID)
	if err != nil {
		return fmt.Errorf("resolving relation object: %w", err)
	}

	if err := l.graph.Relate(ctx, LabelPerson, fromID, toID, kind); err != nil {
		return fmt.Errorf("recording relationship: %w", err)
	}

	_, err = l.AssertFact(ctx, types.Fact{
		Type:     types.FactRelation,
		PersonID: fromID,
		Content:  fmt.Sprintf("%s %s %s", from.DisplayName(), relationPhrase(kind), to.DisplayName()),
		SourceID: sourceID,
	})
	if err != nil {
		return fmt.Errorf("recording relation fact: %w", err)
	}

	l.log.Debug("related people",
		zap.String("from", fromID),
		zap.String("to", toID),
		zap.String("kind", string(kind)))
	return nil
}

// Relations returns the direct relationships a person participates in.
func (l *Layer) Relations(ctx context.Context, personID string) ([]types.Relation, error) {
	if _, err := l.store.GetPerson(ctx, personID); err != nil {
		return nil, err
	}
	return l.graph.Relations(ctx, personID)
}

// InferResult summarizes one inference run.
type InferResult struct {
	BaseRelations    int
	DerivedRelations int
	NewFacts         int
	Removed          int64
}

// Infer runs the kinship rules over every asserted relationship and
// materializes the derived relations as facts. Previously derived facts
// are discarded first so the run reflects the current assertions, and a
// derived fact never shadows a matching assertion.
func (l *Layer) Infer(ctx context.Context) (InferResult, error) {
	base, err := l.graph.AllRelations(ctx)
	if err != nil {
		return InferResult{}, fmt.Errorf("loading asserted relations: %w", err)
	}

	derived, err := inference.DeriveFrom(base)
	if err != nil {
		return InferResult{}, fmt.Errorf("running inference: %w", err)
	}

	removed, err := l.store.DeleteDerivedFacts(ctx)
	if err != nil {
		return InferResult{}, err
	}

	result := InferResult{
		BaseRelations:    len(base),
		DerivedRelations: len(derived),
		Removed:          removed,
	}

	for _, rel := range derived {
		written, err := l.materialize(ctx, rel)
		if err != nil {
			return result, err
		}
		if written {
			result.NewFacts++
		}
	}

	l.log.Info("inference complete",
		zap.Int("base", result.BaseRelations),
		zap.Int("derived", result.DerivedRelations),
		zap.Int("facts", result.NewFacts))
	return result, nil
}

// materialize writes one derived relation as a fact unless an equal
// statement already exists.
func (l *Layer) materialize(ctx context.Context, rel types.Relation) (bool, error) {
	from, err := l.store.GetPerson(ctx, rel.FromID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The graph can hold people the relational store never saw,
			// for example after a partial ingest. Skip rather than fail.
			l.log.Warn("skipping relation for unknown person", zap.String("id", rel.FromID))
			return false, nil
		}
		return false, err
	}
	to, err := l.store.GetPerson(ctx, rel.ToID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.log.Warn("skipping relation for unknown person", zap.String("id", rel.ToID))
			return false, nil
		}
		return false, err
	}

	content := fmt.Sprintf("%s %s %s", from.DisplayName(), relationPhrase(rel.Type), to.DisplayName())
	exists, err := l.store.HasFactContent(ctx, types.FactRelation, rel.FromID, content)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	_, err = l.AssertFact(ctx, types.Fact{
		Type:       types.FactRelation,
		PersonID:   rel.FromID,
		Content:    content,
		Confidence: 0.9,
		Origin:     types.OriginDerived,
		Rule:       rel.Rule,
	})
	if err != nil {
		return false, fmt.Errorf("materializing %s: %w", rel.Type, err)
	}
	return true, nil
}

// relationPhrase renders a relation kind as the connective of an
// English sentence, "Ada is the parent of Babbage" style without the
// leading copula.
func relationPhrase(kind types.RelationType) string {
	noun := strings.ReplaceAll(strings.TrimSuffix(string(kind), "_of"), "_", " ")
	return fmt.Sprintf("is the %s of", noun)
}

// SortRelations orders relations deterministically for display.
func SortRelations(rels []types.Relation) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].Type != rels[j].Type {
			return rels[i].Type < rels[j].Type
		}
		if rels[i].FromID != rels[j].FromID {
			return rels[i].FromID < rels[j].FromID
		}
		return rels[i].ToID < rels[j].ToID
	})
}
