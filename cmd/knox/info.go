package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the vault's base path, identities, and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		fmt.Printf("path:       %s\n", store.BasePath())
		fmt.Printf("identities: %s\n", strings.Join(store.Identities(), ", "))
		fmt.Printf("entries:    %d\n", store.EntryCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
