package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var identitiesForce bool

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage the vault's recipient identities",
}

var identitiesAddCmd = &cobra.Command{
	Use:   "add <identity>",
	Short: "Add a recipient identity, re-encrypting every entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.AddIdentity(args[0], identitiesForce); err != nil {
			return err
		}
		fmt.Printf("identity %q added\n", args[0])
		return nil
	},
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete <identity>",
	Short: "Remove a recipient identity, re-encrypting every entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.RemoveIdentity(args[0]); err != nil {
			return err
		}
		fmt.Printf("identity %q removed\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesAddCmd, identitiesDeleteCmd)
	identitiesAddCmd.Flags().BoolVar(&identitiesForce, "force", false, "re-add and re-sweep an already-present identity")
}
