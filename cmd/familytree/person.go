// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daveshawley/familytree/internal/storage"
	"github.com/daveshawley/familytree/internal/validate"
	"github.com/daveshawley/familytree/pkg/types"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Record and look up people",
}

// --- add subcommand ---

var personAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a person",
	Long: `Add records a person in both stores and prints the assigned
identifier. Adding the same person twice returns the same identifier.`,
	RunE: runPersonAdd,
}

func runPersonAdd(cmd *cobra.Command, args []string) error {
	first, _ := cmd.Flags().GetString("first")
	middle, _ := cmd.Flags().GetString("middle")
	last, _ := cmd.Flags().GetString("last")
	gender, _ := cmd.Flags().GetString("gender")
	birth, _ := cmd.Flags().GetString("birth")
	death, _ := cmd.Flags().GetString("death")

	var personGender types.Gender
	if gender != "" {
		normalized, err := validate.Gender(gender)
		if err != nil {
			return err
		}
		personGender = normalized
	}
	checkDate := validate.Date("2006-01-02")
	for _, date := range []string{birth, death} {
		if date == "" {
			continue
		}
		if _, err := checkDate(date); err != nil {
			return err
		}
	}

	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := layer.AddPerson(context.Background(), types.Person{
		FirstName:  first,
		MiddleName: middle,
		LastName:   last,
		Gender:     personGender,
		BirthDate:  birth,
		DeathDate:  death,
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

// --- find subcommand ---

var personFindCmd = &cobra.Command{
	Use:   "find <term>",
	Short: "Find people by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPersonFind,
}

func runPersonFind(cmd *cobra.Command, args []string) error {
	_, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	people, err := store.SearchPeople(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(people) == 0 {
		fmt.Println("No people found.")
		return nil
	}

	for _, p := range people {
		line := fmt.Sprintf("%s  %s", p.ID, p.DisplayName())
		if p.BirthDate != "" || p.DeathDate != "" {
			line += fmt.Sprintf("  (%s - %s)", p.BirthDate, p.DeathDate)
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}

// --- show subcommand ---

var personShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a person with their relationships",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonShow,
}

func runPersonShow(cmd *cobra.Command, args []string) error {
	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	person, err := store.GetPerson(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", person.DisplayName())
	if person.Gender != "" {
		fmt.Printf("  gender: %s\n", person.Gender)
	}
	if person.BirthDate != "" {
		fmt.Printf("  born:   %s\n", person.BirthDate)
	}
	if person.DeathDate != "" {
		fmt.Printf("  died:   %s\n", person.DeathDate)
	}

	relations, err := layer.Relations(ctx, person.ID)
	if err != nil {
		return err
	}
	if len(relations) > 0 {
		fmt.Println("  relationships:")
		storage.SortRelations(relations)
		for _, rel := range relations {
			fmt.Printf("    %s %s %s\n", rel.FromID, rel.Type, rel.ToID)
		}
	}
	return nil
}

func init() {
	personAddCmd.Flags().String("first", "", "first name")
	personAddCmd.Flags().String("middle", "", "middle name")
	personAddCmd.Flags().String("last", "", "last name")
	personAddCmd.Flags().String("gender", "", "gender (male or female, abbreviations accepted)")
	personAddCmd.Flags().String("birth", "", "birth date (YYYY-MM-DD)")
	personAddCmd.Flags().String("death", "", "death date (YYYY-MM-DD)")

	personCmd.AddCommand(personAddCmd)
	personCmd.AddCommand(personFindCmd)
	personCmd.AddCommand(personShowCmd)
	rootCmd.AddCommand(personCmd)
}
