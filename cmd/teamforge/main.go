// Command teamforge is the external CLI adapter around the team-assignment
// engine: roster import, poll filling, team generation, and inspection.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opencampus/teamforge/engine"
	"github.com/opencampus/teamforge/store"
)

var (
	dbPath string
	log    = logrus.New()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "teamforge",
		Short: "Optimal team-assignment engine for classroom project allocation",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "teamforge.db", "path to the sqlite database")

	root.AddCommand(
		newMigrateCmd(),
		newGenerateCmd(),
		newImportRosterCmd(),
		newPollCmd(),
		newTeamsCmd(),
	)
	return root
}

func openStore() (*store.Store, error) {
	return store.Open(dbPath)
}

func newEngine(st *store.Store) *engine.Engine {
	return engine.NewEngine(st, 42, log)
}
