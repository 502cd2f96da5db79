package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <src> <dst>",
	Short: "Rename an entry, preserving its content and salt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Rename(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("entry %q was successfully renamed to %q\n", args[0], args[1])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path>",
	Short: "Delete an entry from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.DeleteEntry(args[0]); err != nil {
			return err
		}
		fmt.Printf("entry %q was successfully deleted\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}
