package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnmanager/casting/pkg/clients/sheetsclient"
	"github.com/gnmanager/casting/pkg/core/services"
)

// PublishCastingCmd creates the publishCasting command
func PublishCastingCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishCasting <event_id>",
		Short: "Publish the main casting and the proposals to Google Sheets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			if app.Cfg.Sheets.SpreadsheetID == "" {
				return fmt.Errorf("sheets.spreadsheetID is not configured")
			}

			published, err := services.PublishCasting(app.Ctx, app.Database, app.Logger, eventID)
			if err != nil {
				return err
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}
			if err := client.PublishCasting(app.Cfg.Sheets.SpreadsheetID, toCastingSheet(published)); err != nil {
				return fmt.Errorf("failed to publish casting: %w", err)
			}

			fmt.Printf("\n✓ Casting published to tab %q (%d roles, %d proposals)\n\n",
				sheetsclient.CastingTabTitle(eventID), len(published.Rows), len(published.ProposalNames))
			return nil
		},
	}
}

func toCastingSheet(published *services.PublishedCasting) *sheetsclient.CastingSheet {
	sheet := &sheetsclient.CastingSheet{
		EventID:       published.EventID,
		Validated:     published.Validated,
		ProposalNames: published.ProposalNames,
		Rows:          make([]sheetsclient.CastingSheetRow, 0, len(published.Rows)),
	}
	for _, row := range published.Rows {
		sheet.Rows = append(sheet.Rows, sheetsclient.CastingSheetRow{
			Role:      row.Role,
			Type:      row.Type,
			Group:     row.Group,
			Main:      row.Main,
			Proposals: row.Proposals,
		})
	}
	return sheet
}
