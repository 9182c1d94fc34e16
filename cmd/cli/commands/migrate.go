package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/db"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := app.Postgres()
			if err != nil {
				return err
			}

			applied, err := pg.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			if len(applied) == 0 {
				fmt.Println("\nDatabase schema is up to date.")
				return nil
			}
			fmt.Printf("\n✓ Applied %d migrations:\n", len(applied))
			for _, name := range applied {
				fmt.Printf("  ✓ %s\n", name)
			}
			fmt.Println()
			return nil
		},
	}
}

// ImportSessionsCmd creates the importSessions command
func ImportSessionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importSessions <file>",
		Short: "Import events and their castings from a JSON sessions file into PostgreSQL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := app.Postgres()
			if err != nil {
				return err
			}

			sessions, err := db.ReadSessionsFile(args[0])
			if err != nil {
				return err
			}

			for _, session := range sessions {
				name := fmt.Sprintf("Événement %d", session.EventID)
				app.Logger.Info("Importing event", zap.Int("event_id", session.EventID))
				if err := pg.ImportSession(app.Ctx, name, session); err != nil {
					return fmt.Errorf("failed to import event %d: %w", session.EventID, err)
				}
				fmt.Printf("  ✓ Event %d: %d roles, %d participants, %d proposals\n",
					session.EventID, len(session.Roles), session.Participants.Count(), len(session.Proposals))
			}
			fmt.Printf("\n✓ Imported %d events\n\n", len(sessions))
			return nil
		},
	}
}
