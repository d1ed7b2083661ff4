// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference derives new genealogical facts from recorded ones.
//
// Recorded parent and spouse relationships become base facts for a
// Datalog program that computes siblinghood, grandparenthood, ancestry,
// aunts and uncles, cousins, and in-law relations to a fixed point.
// Every conclusion carries the name of the rule that produced it, so
// derived facts remain distinguishable from user assertions.
package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/daveshawley/familytree/pkg/types"
)

// Engine evaluates the kinship rules over a set of recorded relations.
type Engine struct {
	store factstore.FactStore
	info  *analysis.ProgramInfo

	// asserted tracks the loaded base edges so conclusions that merely
	// restate an assertion are not reported as derived.
	asserted map[types.Relation]struct{}
}

// NewEngine parses and analyzes the kinship rule program.
func NewEngine() (*Engine, error) {
	unit, err := parse.Unit(strings.NewReader(kinshipRules))
	if err != nil {
		return nil, fmt.Errorf("parsing kinship rules: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyzing kinship rules: %w", err)
	}
	return &Engine{
		store:    factstore.NewSimpleInMemoryStore(),
		info:     info,
		asserted: map[types.Relation]struct{}{},
	}, nil
}

// LoadRelations adds recorded relations as base facts. Relations of
// non-assertable kinds are ignored; they are conclusions, not evidence.
func (e *Engine) LoadRelations(relations []types.Relation) {
	for _, rel := range relations {
		var predicate string
		switch rel.Type {
		case types.RelParentOf:
			predicate = "parent"
		case types.RelSpouseOf:
			predicate = "spouse"
		default:
			continue
		}
		e.store.Add(ast.NewAtom(predicate, ast.String(rel.FromID), ast.String(rel.ToID)))
		e.asserted[types.Relation{FromID: rel.FromID, ToID: rel.ToID, Type: rel.Type}] = struct{}{}
	}
}

// Derive evaluates the rules to a fixed point and returns the derived
// relations, sorted for deterministic output. Conclusions that restate
// an asserted edge (a parent is trivially an ancestor, a spouse is
// trivially married) are filtered out.
func (e *Engine) Derive() ([]types.Relation, error) {
	if _, err := engine.EvalProgramWithStats(e.info, e.store); err != nil {
		return nil, fmt.Errorf("evaluating kinship rules: %w", err)
	}

	seen := map[types.Relation]struct{}{}
	var derived []types.Relation

	for predicate, relType := range derivedPredicates {
		query := ast.NewQuery(ast.PredicateSym{Symbol: predicate, Arity: 2})
		err := e.store.GetFacts(query, func(atom ast.Atom) error {
			from, ok1 := stringTerm(atom.Args[0])
			to, ok2 := stringTerm(atom.Args[1])
			if !ok1 || !ok2 || from == to {
				return nil
			}

			rel := types.Relation{FromID: from, ToID: to, Type: relType, Rule: predicate}
			if e.restatesAssertion(rel) {
				return nil
			}
			if _, dup := seen[rel]; dup {
				return nil
			}
			seen[rel] = struct{}{}
			derived = append(derived, rel)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("querying %s conclusions: %w", predicate, err)
		}
	}

	sort.Slice(derived, func(i, j int) bool {
		a, b := derived[i], derived[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.FromID != b.FromID {
			return a.FromID < b.FromID
		}
		return a.ToID < b.ToID
	})
	return derived, nil
}

// restatesAssertion reports whether a conclusion only repeats a loaded
// base edge.
func (e *Engine) restatesAssertion(rel types.Relation) bool {
	switch rel.Rule {
	case "married":
		_, ok := e.asserted[types.Relation{FromID: rel.FromID, ToID: rel.ToID, Type: types.RelSpouseOf}]
		return ok
	case "ancestor":
		_, ok := e.asserted[types.Relation{FromID: rel.FromID, ToID: rel.ToID, Type: types.RelParentOf}]
		return ok
	}
	return false
}

// stringTerm extracts the string value of a constant term.
func stringTerm(term ast.BaseTerm) (string, bool) {
	constant, ok := term.(ast.Constant)
	if !ok {
		return "", false
	}
	switch constant.Type {
	case ast.StringType, ast.NameType:
		return constant.Symbol, true
	}
	return "", false
}

// DeriveFrom is a convenience that builds an engine, loads the
// relations, and returns the derived conclusions in one call.
func DeriveFrom(relations []types.Relation) ([]types.Relation, error) {
	eng, err := NewEngine()
	if err != nil {
		return nil, err
	}
	eng.LoadRelations(relations)
	return eng.Derive()
}
