package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox"
	"github.com/apognu/knox/vcs"
)

var initRepo bool

var initCmd = &cobra.Command{
	Use:   "init <identity>...",
	Short: "Create a new vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := vaultPath()
		if err != nil {
			return err
		}
		adapter, err := openAdapter()
		if err != nil {
			return err
		}

		store, err := knox.Create(base, args, adapter)
		if err != nil {
			return err
		}
		if err := store.Write(); err != nil {
			return err
		}

		if initRepo {
			if err := vcs.Open(base).Init(); err != nil {
				return err
			}
		}

		fmt.Printf("vault initialized at %s\n", base)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initRepo, "git", false, "also initialize a git repository in the vault directory")
}
