// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the URL blacklist",
	Long: `Blacklist manages the list of URL fragments the frontier refuses.
A submitted or followed URL containing any listed fragment is dropped.`,
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add [fragments...]",
	Short: "Add URL fragments to the blacklist",
	RunE:  runBlacklistAdd,
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklisted URL fragments",
	RunE:  runBlacklistList,
}

func init() {
	blacklistCmd.AddCommand(blacklistAddCmd)
	blacklistCmd.AddCommand(blacklistListCmd)

	rootCmd.AddCommand(blacklistCmd)
}

func runBlacklistAdd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more URL fragments")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	for _, fragment := range args {
		added, err := s.AddBlacklistFragment(ctx, fragment)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("added:   %s\n", fragment)
		} else {
			fmt.Printf("skipped: %s (already listed)\n", fragment)
		}
	}
	return nil
}

func runBlacklistList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	fragments, err := s.BlacklistFragments(context.Background())
	if err != nil {
		return err
	}
	if len(fragments) == 0 {
		fmt.Println("Blacklist is empty.")
		return nil
	}
	for _, f := range fragments {
		fmt.Println(f)
	}
	return nil
}
