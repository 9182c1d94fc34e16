package sheetsclient

import (
	"fmt"
)

// CastingSheetRow represents a single role in the published casting
type CastingSheetRow struct {
	Role      string
	Type      string
	Group     string
	Main      string
	Proposals []string // One name per proposal column, blank if uncast
}

// CastingSheet represents the complete published casting of an event
type CastingSheet struct {
	EventID       int
	Validated     bool
	ProposalNames []string
	Rows          []CastingSheetRow
}

// CastingTabTitle returns the name of the tab holding an event's casting
func CastingTabTitle(eventID int) string {
	return fmt.Sprintf("Casting %d", eventID)
}

// PublishCasting writes the casting of an event to its own tab, creating the
// tab on first publication. Previous content of the tab is replaced.
func (c *Client) PublishCasting(spreadsheetID string, sheet *CastingSheet) error {
	tabTitle := CastingTabTitle(sheet.EventID)

	exists, err := c.hasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		if err := c.ClearRange(spreadsheetID, fmt.Sprintf("'%s'!A1:ZZ", tabTitle)); err != nil {
			return fmt.Errorf("failed to clear casting tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create casting tab: %w", err)
		}
	}

	if err := c.UpdateValues(spreadsheetID, fmt.Sprintf("'%s'!A1", tabTitle), CastingValues(sheet)); err != nil {
		return fmt.Errorf("failed to write casting tab: %w", err)
	}
	return nil
}

// CastingValues lays out a casting as sheet rows: a status line, a blank
// row, the header, then one row per role
func CastingValues(sheet *CastingSheet) [][]interface{} {
	status := "Casting provisoire"
	if sheet.Validated {
		status = "Casting validé"
	}

	header := []interface{}{"Rôle", "Type", "Groupe", "Principal"}
	for _, name := range sheet.ProposalNames {
		header = append(header, name)
	}

	values := make([][]interface{}, 0, len(sheet.Rows)+3)
	values = append(values, []interface{}{status}, []interface{}{}, header)

	for _, row := range sheet.Rows {
		sheetRow := []interface{}{row.Role, row.Type, row.Group, row.Main}
		for i := range sheet.ProposalNames {
			cast := ""
			if i < len(row.Proposals) {
				cast = row.Proposals[i]
			}
			sheetRow = append(sheetRow, cast)
		}
		values = append(values, sheetRow)
	}

	return values
}
