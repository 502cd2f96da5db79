package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apognu/knox/vcs"
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Manage the vault's git remote",
}

var gitRemoteCmd = &cobra.Command{
	Use:   "remote <url>",
	Short: "Set the vault repository's origin remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := vaultPath()
		if err != nil {
			return err
		}
		if err := vcs.Open(base).SetRemote(args[0]); err != nil {
			return err
		}
		fmt.Printf("git remote URL set to %q\n", args[0])
		return nil
	},
}

var gitPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push committed vault changes to the remote repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := vaultPath()
		if err != nil {
			return err
		}
		if err := vcs.Open(base).Push(); err != nil {
			return err
		}
		fmt.Println("vault modifications successfully pushed upstream")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gitCmd)
	gitCmd.AddCommand(gitRemoteCmd, gitPushCmd)
}
