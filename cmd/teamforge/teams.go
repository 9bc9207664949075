package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTeamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team roster operations",
	}
	cmd.AddCommand(newTeamsShowCmd())
	return cmd
}

func newTeamsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current team roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			eng := newEngine(st)

			view, err := eng.GetTeamsForView()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range view.Teams {
				fmt.Fprintf(out, "%s — %s\n", t.InstanceLabel, t.ProjectName)
				for _, m := range t.Members {
					tag := ""
					if m.IsInitialContact {
						tag = " (contact)"
					}
					if m.IsInactive {
						tag += " [inactive]"
					}
					fmt.Fprintf(out, "  - %s%s\n", m.Name, tag)
				}
			}
			fmt.Fprintf(out, "\nhappiness: project=%.2f poll=%.2f (%s)\n",
				view.Happiness.MeanHSProject, view.Happiness.MeanHSPoll, view.Happiness.Icon)
			return nil
		},
	}
}
