// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daveshawley/familytree/internal/validate"
	"github.com/daveshawley/familytree/pkg/types"
)

var relateCmd = &cobra.Command{
	Use:   "relate <from-id> <to-id>",
	Short: "Assert a direct relationship between two people",
	Long: `Relate records a parent_of or spouse_of edge between two stored
people, given either --kind or the familial shorthand --as.

The shorthand reads as "<from> is the <relation> of <to>" and accepts
the usual genealogical abbreviations: "d/o" (daughter of), "s/o" (son
of), "w/o" (wife of), and "h/o" (husband of). Daughter and son
relations are stored as the reversed parent_of edge.

Everything beyond parent and spouse (siblings, grandparents, cousins,
in-laws) is derived by the infer command, not asserted here.`,
	Args: cobra.ExactArgs(2),
	RunE: runRelate,
}

func runRelate(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("kind")
	asFlag, _ := cmd.Flags().GetString("as")
	sourceID, _ := cmd.Flags().GetString("source")

	fromID, toID := args[0], args[1]

	var kind types.RelationType
	switch {
	case kindFlag != "" && asFlag != "":
		return fmt.Errorf("--kind and --as are mutually exclusive")
	case kindFlag != "":
		normalized, err := validate.RelationKind(kindFlag)
		if err != nil {
			return err
		}
		kind = normalized
	case asFlag != "":
		resolved, swap, err := resolveFamilial(asFlag)
		if err != nil {
			return err
		}
		kind = resolved
		if swap {
			fromID, toID = toID, fromID
		}
	default:
		return fmt.Errorf("either --kind or --as is required")
	}

	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := layer.Relate(context.Background(), fromID, toID, kind, sourceID); err != nil {
		return err
	}
	fmt.Printf("%s %s %s\n", fromID, kind, toID)
	return nil
}

// resolveFamilial maps a familial phrase to a relation kind. The swap
// result reports that the edge runs opposite to the phrase, as with
// "daughter of": the second person is the parent.
func resolveFamilial(phrase string) (types.RelationType, bool, error) {
	relation, err := validate.FamilialRelation(phrase)
	if err != nil {
		return "", false, err
	}

	switch relation {
	case "daughter", "son":
		return types.RelParentOf, true, nil
	case "wife", "husband":
		return types.RelSpouseOf, false, nil
	default:
		return "", false, fmt.Errorf("relation %q cannot be asserted directly: only parent and spouse relations are recorded", relation)
	}
}

func init() {
	relateCmd.Flags().String("kind", "", "relation kind (parent_of or spouse_of)")
	relateCmd.Flags().String("as", "", `familial shorthand ("d/o", "s/o", "w/o", "h/o", ...)`)
	relateCmd.Flags().String("source", "", "source identifier citing the relationship")
	rootCmd.AddCommand(relateCmd)
}
