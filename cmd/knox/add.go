package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/cmd/knox/internal/attrs"
	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
	"github.com/apognu/knox/pwned"
)

var (
	addForce         bool
	addRandomLength  int
	addRandomSymbols bool
)

var addCmd = &cobra.Command{
	Use:   "add <path> key=value...",
	Short: "Add a new entry to the vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, pairs := args[0], args[1:]

		store, err := openStore()
		if err != nil {
			return err
		}
		if _, exists := store.Index()[path]; exists {
			return fmt.Errorf("an entry already exists at %q: %w", path, errs.ErrAlreadyExists)
		}

		attributes, err := attrs.Build(pairs, attrs.Options{
			RandomLength:  addRandomLength,
			RandomSymbols: addRandomSymbols,
		})
		if err != nil {
			return err
		}

		if err := guardAgainstBreaches(attributes, addForce); err != nil {
			return err
		}

		if err := store.WriteEntry(path, codec.Entry{Attributes: attributes}); err != nil {
			return err
		}

		fmt.Printf("entry %q was successfully added to the vault\n", path)
		return nil
	},
}

// guardAgainstBreaches aborts the caller's write if any newly-supplied
// confidential attribute is found in a data breach, unless force is set.
func guardAgainstBreaches(attributes map[string]codec.Attribute, force bool) error {
	checker := pwned.NewChecker()
	results := checker.CheckAttributes(context.Background(), attributes)

	var breached bool
	for name, outcome := range results {
		if outcome == pwned.Pwned {
			fmt.Printf("warning: the value for %q has been found in a data breach\n", name)
			breached = true
		}
	}

	if breached && !force {
		return fmt.Errorf("aborting because some confidential attributes were breached, use --force to override: %w", errs.ErrInput)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addForce, "force", false, "write the entry even if a breached value was found")
	addCmd.Flags().IntVar(&addRandomLength, "random-length", 16, "length of generated random values")
	addCmd.Flags().BoolVar(&addRandomSymbols, "random-symbols", false, "include symbols in generated random values")
}
