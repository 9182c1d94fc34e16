package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/services"
)

// AutoAssignCmd creates the autoAssign command
func AutoAssignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "autoAssign <event_id>",
		Short: "Replace the main casting with the best combination of the proposals",
		Long: `Runs the solver over every named proposal of the event and overwrites the main
casting with the maximum-score result. Manual edits to the main casting are lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			options := casting.Options{DropUnscoredPairs: app.Cfg.AutoAssign.DropUnscoredPairs}
			result, err := services.AutoAssign(app.Ctx, app.Database, options, app.Logger, eventID)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Auto-assign completed!\n\n")
			fmt.Printf("Assigned:    %d/%d roles\n", result.AssignedCount, result.TotalRoles)
			fmt.Printf("Total score: %d\n\n", result.TotalScore)
			for _, bucket := range result.Buckets {
				fmt.Printf("  %-14s %d/%d roles, %d participants, score %d\n",
					bucket.Type, bucket.AssignedCount, bucket.RoleCount, bucket.ParticipantCount, bucket.Score)
			}
			fmt.Println()

			return nil
		},
	}
}
