// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daveshawley/familytree/internal/storage"
	"github.com/daveshawley/familytree/pkg/types"
)

var factCmd = &cobra.Command{
	Use:   "fact",
	Short: "Assert and query facts",
}

// --- add subcommand ---

var factAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Assert a fact about a person",
	Long: `Add records a statement about a person, optionally citing a source.
Asserting the same statement twice stores it once.`,
	RunE: runFactAdd,
}

func runFactAdd(cmd *cobra.Command, args []string) error {
	personID, _ := cmd.Flags().GetString("person")
	factType, _ := cmd.Flags().GetString("type")
	content, _ := cmd.Flags().GetString("content")
	date, _ := cmd.Flags().GetString("date")
	place, _ := cmd.Flags().GetString("place")
	sourceID, _ := cmd.Flags().GetString("source")
	confidence, _ := cmd.Flags().GetFloat64("confidence")

	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := layer.AssertFact(context.Background(), types.Fact{
		Type:       types.FactType(factType),
		PersonID:   personID,
		Content:    content,
		Date:       date,
		Place:      place,
		SourceID:   sourceID,
		Confidence: confidence,
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

// --- query subcommand ---

var factQueryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Query facts with full-text search and filters",
	Long: `Query searches stored facts using full-text search, structured
filters (type, person, source, origin), or a combination of both.
Results cite the person and source they concern.`,
	RunE: runFactQuery,
}

func runFactQuery(cmd *cobra.Command, args []string) error {
	_, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --person, --source, or --origin")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []storage.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-20s  %-50s  %-8s  %s\n",
		"Rank", "Type", "Person", "Content", "Origin", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		content := r.Fact.Content
		if len(content) > 50 {
			content = content[:47] + "..."
		}
		person := r.PersonName
		if len(person) > 20 {
			person = person[:17] + "..."
		}
		citation := r.SourceTitle
		if r.Fact.Origin == types.OriginDerived {
			citation = "rule:" + r.Fact.Rule
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-20s  %-50s  %-8s  %s\n",
			i+1, r.Fact.Type, person, content, r.Fact.Origin, citation)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// queryOptsFromFlags assembles retrieval options shared by the query
// and export commands.
func queryOptsFromFlags(cmd *cobra.Command, args []string) storage.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	factType, _ := cmd.Flags().GetString("type")
	personID, _ := cmd.Flags().GetString("person")
	sourceID, _ := cmd.Flags().GetString("source")
	origin, _ := cmd.Flags().GetString("origin")
	limit, _ := cmd.Flags().GetInt("limit")

	return storage.QueryOptions{
		Query:      queryText,
		Type:       types.FactType(factType),
		PersonID:   personID,
		SourceID:   sourceID,
		Origin:     types.FactOrigin(origin),
		MaxResults: limit,
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text query")
	cmd.Flags().String("type", "", "filter by fact type")
	cmd.Flags().String("person", "", "filter by person identifier")
	cmd.Flags().String("source", "", "filter by source identifier")
	cmd.Flags().String("origin", "", "filter by origin (asserted or derived)")
	cmd.Flags().Int("limit", 0, "maximum results")
}

func init() {
	factAddCmd.Flags().String("person", "", "person identifier (required)")
	factAddCmd.Flags().String("type", "", "fact type (birth, death, marriage, residence, occupation)")
	factAddCmd.Flags().String("content", "", "the statement itself (required)")
	factAddCmd.Flags().String("date", "", "date the fact concerns")
	factAddCmd.Flags().String("place", "", "place the fact concerns")
	factAddCmd.Flags().String("source", "", "source identifier")
	factAddCmd.Flags().Float64("confidence", 0, "confidence between 0.0 and 1.0 (default 1.0)")
	factAddCmd.MarkFlagRequired("person")
	factAddCmd.MarkFlagRequired("content")

	addQueryFlags(factQueryCmd)
	factQueryCmd.Flags().Bool("json", false, "emit JSON instead of a table")

	factCmd.AddCommand(factAddCmd)
	factCmd.AddCommand(factQueryCmd)
	rootCmd.AddCommand(factCmd)
}
