// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Derive relationships from the asserted ones",
	Long: `Infer runs the kinship rules over every asserted parent and spouse
edge and stores the conclusions as derived facts: siblings,
grandparents, ancestors, aunts and uncles, cousins, and in-laws.

Derived facts from earlier runs are replaced, so the output always
reflects the current assertions. A derived conclusion never overwrites
a fact you asserted yourself.`,
	RunE: runInfer,
}

func runInfer(cmd *cobra.Command, args []string) error {
	layer, store, err := openLayer(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := layer.Infer(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%d asserted relations, %d derived, %d facts written\n",
		result.BaseRelations, result.DerivedRelations, result.NewFacts)
	return nil
}

func init() {
	rootCmd.AddCommand(inferCmd)
}
