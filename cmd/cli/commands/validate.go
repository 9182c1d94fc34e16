package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnmanager/casting/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <event_id>",
		Short: "Lock the main casting of an event, or unlock it with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			off, _ := cmd.Flags().GetBool("off")

			validated, err := services.ToggleValidation(app.Ctx, app.Database, app.Logger, eventID, !off)
			if err != nil {
				return err
			}

			if validated {
				fmt.Printf("\n✓ Casting of event %d validated, the main casting is locked\n\n", eventID)
			} else {
				fmt.Printf("\n✓ Casting of event %d unlocked\n\n", eventID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("off", false, "Lift the validation lock")

	return cmd
}

// ResetMainCmd creates the resetMain command
func ResetMainCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resetMain <event_id>",
		Short: "Clear every assignment of the main casting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			count, err := services.ResetMain(app.Ctx, app.Database, app.Logger, eventID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Main casting reset, %d roles unassigned\n\n", count)
			return nil
		},
	}
}
