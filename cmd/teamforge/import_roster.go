package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opencampus/teamforge/csvimport"
	"github.com/opencampus/teamforge/engine"
	"github.com/opencampus/teamforge/store"
)

func newImportRosterCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import-roster <csv-file>",
		Short: "Import a student roster from CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := csvimport.ParseMode(mode)
			if !ok {
				return fmt.Errorf("invalid --mode %q: want add or new", mode)
			}

			st, err := openStore()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			existing := map[string]bool{}
			students, err := st.ListStudents()
			if err != nil {
				return err
			}
			for _, s := range students {
				existing[s.SNumber] = true
			}

			rows, err := csvimport.Parse(f, existing, m == csvimport.ModeAdd)
			if err != nil {
				return err
			}

			if m == csvimport.ModeNew {
				ids := make([]uint, len(students))
				for i, s := range students {
					ids[i] = s.ID
				}
				if err := st.DeleteStudents(ids); err != nil {
					if errors.Is(err, store.ErrProtected) {
						return engine.NewError("import-roster.wipeRoster", engine.ProtectedEntity, err)
					}
					return fmt.Errorf("wiping roster for new import: %w", err)
				}
			}

			created := csvimport.ToStudents(rows)
			if len(created) > 0 {
				if err := st.DB().Create(&created).Error; err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d students\n", len(created))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "add", "import mode: add or new")
	return cmd
}
