package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Run one team-generation cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			eng := newEngine(st)

			ok, err := eng.GenerateTeams()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no regeneration performed: polls or project answers are empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "teams generated")
			return nil
		},
	}
}
