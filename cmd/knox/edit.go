package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/cmd/knox/internal/attrs"
	"github.com/apognu/knox/codec"
	"github.com/apognu/knox/errs"
)

var (
	editForce         bool
	editDelete        []string
	editRandomLength  int
	editRandomSymbols bool
)

var editCmd = &cobra.Command{
	Use:   "edit <path> [key=value...]",
	Short: "Edit an existing entry's attributes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, pairs := args[0], args[1:]

		store, err := openStore()
		if err != nil {
			return err
		}
		if _, exists := store.Index()[path]; !exists {
			return fmt.Errorf("no entry was found at %q: %w", path, errs.ErrNotFound)
		}

		attributes, err := attrs.Build(pairs, attrs.Options{
			RandomLength:  editRandomLength,
			RandomSymbols: editRandomSymbols,
		})
		if err != nil {
			return err
		}

		deletions, err := attrs.Deletions(editDelete)
		if err != nil {
			return err
		}

		if err := guardAgainstBreaches(attributes, editForce); err != nil {
			return err
		}

		entry, err := store.ReadEntry(path)
		if err != nil {
			return err
		}
		if entry.Attributes == nil {
			entry.Attributes = map[string]codec.Attribute{}
		}
		for name, attr := range attributes {
			entry.Attributes[name] = attr
		}
		for _, name := range deletions {
			delete(entry.Attributes, name)
		}

		if err := store.WriteEntry(path, entry); err != nil {
			return err
		}

		fmt.Printf("entry %q was successfully edited\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().BoolVar(&editForce, "force", false, "write the entry even if a breached value was found")
	editCmd.Flags().StringSliceVarP(&editDelete, "delete", "d", nil, "attribute names to remove")
	editCmd.Flags().IntVar(&editRandomLength, "random-length", 16, "length of generated random values")
	editCmd.Flags().BoolVar(&editRandomSymbols, "random-symbols", false, "include symbols in generated random values")
}
