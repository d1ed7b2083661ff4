// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daveshawley/familytree/pkg/types"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Record and list documentary sources",
}

var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a documentary source",
	Long: `Add records a source document and prints the assigned identifier.
Facts cite sources by this identifier. Recording the same source twice
on the same day returns the same identifier.`,
	RunE: runSourceAdd,
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	sourceType, _ := cmd.Flags().GetString("type")
	authority, _ := cmd.Flags().GetString("authority")
	author, _ := cmd.Flags().GetString("author")
	title, _ := cmd.Flags().GetString("title")

	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := layer.AddSource(context.Background(), types.Source{
		Type:      types.SourceType(sourceType),
		Authority: authority,
		Author:    author,
		Title:     title,
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sources",
	RunE:  runSourceList,
}

func runSourceList(cmd *cobra.Command, args []string) error {
	_, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sources, err := store.ListSources(context.Background())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No sources recorded.")
		return nil
	}

	for _, src := range sources {
		fmt.Fprintf(os.Stdout, "%s  %-12s  %s\n", src.ID, src.Type, src.Title)
	}
	return nil
}

func init() {
	sourceAddCmd.Flags().String("type", "", "source type (census, certificate, book, interview, website)")
	sourceAddCmd.Flags().String("authority", "", "issuing authority")
	sourceAddCmd.Flags().String("author", "", "author")
	sourceAddCmd.Flags().String("title", "", "title (required)")
	sourceAddCmd.MarkFlagRequired("title")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	rootCmd.AddCommand(sourceCmd)
}
