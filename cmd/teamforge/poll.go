package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll-data operations",
	}
	cmd.AddCommand(newPollFillCmd())
	return cmd
}

func newPollFillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Generate default poll data for students without a submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			eng := newEngine(st)
			if err := eng.GeneratePollDataForStudentsWithoutPoll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "poll data filled")
			return nil
		},
	}
}
