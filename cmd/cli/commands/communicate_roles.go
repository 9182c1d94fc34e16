package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnmanager/casting/pkg/core/services"
)

// CommunicateRolesCmd creates the communicateRoles command
func CommunicateRolesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "communicateRoles <event_id>",
		Short: "Email every cast participant their role once the casting is validated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			app.Logger.Debug("communicateRoles command", zap.Bool("dry_run", dryRun))

			var gmail services.GmailClient
			if !dryRun {
				client, err := app.GmailClient()
				if err != nil {
					return err
				}
				gmail = client
			}

			announcements, failedEmails, err := services.CommunicateRoles(
				app.Ctx,
				app.Database,
				gmail,
				app.Cfg,
				app.Logger,
				eventID,
				dryRun,
			)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\nDry run: %d participants would be told their role:\n", len(announcements))
			} else {
				fmt.Printf("\n✓ Roles communicated to %d participants:\n", len(announcements))
			}
			for _, a := range announcements {
				fmt.Printf("  ✓ %s (%s): %s\n", a.ParticipantName, a.Email, a.RoleName)
			}
			fmt.Println()

			if len(failedEmails) > 0 {
				fmt.Printf("⚠️  Failed to reach %d participants:\n", len(failedEmails))
				for _, fe := range failedEmails {
					fmt.Printf("  ✗ %s (%s): %s\n", fe.ParticipantName, fe.Email, fe.Error)
				}
				fmt.Println()
			}

			if len(announcements) == 0 && len(failedEmails) == 0 {
				fmt.Println("No new announcements - every cast participant already knows their role.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "List the pending announcements without sending anything")

	return cmd
}
