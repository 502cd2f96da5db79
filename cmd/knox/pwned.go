package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/pwned"
)

var pwnedCmd = &cobra.Command{
	Use:   "pwned [path]",
	Short: "Check confidential attributes against known data breaches",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		checker := pwned.NewChecker()
		ctx := context.Background()

		paths := args
		if len(paths) == 0 {
			for path := range store.Index() {
				paths = append(paths, path)
			}
		}

		for _, path := range paths {
			entry, err := store.ReadEntry(path)
			if err != nil {
				return err
			}

			for name, outcome := range checker.CheckAttributes(ctx, entry.Attributes) {
				fmt.Printf("%s/%s: %s\n", path, name, outcome)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pwnedCmd)
}
