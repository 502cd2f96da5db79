package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/hierarchy"
)

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List entries under a virtual path, or the whole vault",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		var prefix *string
		if len(args) == 1 {
			prefix = &args[0]
		}

		tree, ok := hierarchy.Build(store.Index(), prefix)
		if !ok {
			fmt.Println("(no entries)")
			return nil
		}

		for _, line := range tree.Lines() {
			fmt.Println(line)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search entries by virtual path substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		for _, path := range hierarchy.Search(store.Index(), args[0]) {
			fmt.Println(path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
}
