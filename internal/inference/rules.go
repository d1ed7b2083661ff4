// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import "github.com/daveshawley/familytree/pkg/types"

// kinshipRules is the Datalog program evaluated over the recorded
// parent/spouse edges. parent and spouse are the base predicates loaded
// from the graph; every other predicate is derived.
const kinshipRules = `
Decl parent(X, Y).
Decl spouse(X, Y).

Decl married(X, Y).
Decl sibling(X, Y).
Decl grandparent(X, Y).
Decl ancestor(X, Y).
Decl aunt_uncle(X, Y).
Decl cousin(X, Y).
Decl parent_in_law(X, Y).
Decl sibling_in_law(X, Y).

married(X, Y) :- spouse(X, Y).
married(X, Y) :- spouse(Y, X).

sibling(X, Y) :- parent(P, X), parent(P, Y), X != Y.

grandparent(X, Y) :- parent(X, Z), parent(Z, Y).

ancestor(X, Y) :- parent(X, Y).
ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).

aunt_uncle(X, Y) :- sibling(X, P), parent(P, Y).

cousin(X, Y) :- parent(P, X), parent(Q, Y), sibling(P, Q).

parent_in_law(X, Y) :- parent(X, S), married(S, Y), X != Y.

sibling_in_law(X, Y) :- sibling(X, S), married(S, Y), X != Y.
`

// derivedPredicates maps each derived predicate to the relation type
// reported for its conclusions. married is handled separately because
// it overlaps the asserted spouse edges.
var derivedPredicates = map[string]types.RelationType{
	"sibling":        types.RelSiblingOf,
	"grandparent":    types.RelGrandparentOf,
	"ancestor":       types.RelAncestorOf,
	"aunt_uncle":     types.RelAuntUncleOf,
	"cousin":         types.RelCousinOf,
	"parent_in_law":  types.RelParentInLawOf,
	"sibling_in_law": types.RelSiblingInLawOf,
	"married":        types.RelSpouseOf,
}
