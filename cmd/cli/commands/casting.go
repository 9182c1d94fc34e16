package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnmanager/casting/pkg/core/casting"
	"github.com/gnmanager/casting/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

// CastingCmd creates the casting command
func CastingCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "casting <event_id>",
		Short: "Show the main casting of an event with its warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			data, err := services.CastingData(app.Ctx, app.Database, app.Logger, eventID)
			if err != nil {
				return err
			}
			warnings, err := services.Warnings(app.Ctx, app.Database, app.Logger, eventID, casting.MainProposal)
			if err != nil {
				return err
			}

			writeCasting(os.Stdout, data, warnings)
			return nil
		},
	}
}

// writeCasting prints one line per role with the participant cast in main.
// Roles with a warning are highlighted and the warnings are listed below.
func writeCasting(w io.Writer, data *casting.CastingData, warnings []casting.Warning) {
	const roleColWidth = 24
	const typeColWidth = 14

	status := colorYellow + "provisoire" + colorReset
	if data.IsCastingValidated {
		status = colorGreen + "validé" + colorReset
	}
	fmt.Fprintf(w, "\nCasting %s, %d propositions\n\n", status, len(data.Proposals))

	names := make(map[int]string)
	for _, bucket := range data.ParticipantsByType {
		for _, p := range bucket {
			names[p.ID] = p.Name
		}
	}
	warned := make(map[int]bool, len(warnings))
	for _, warning := range warnings {
		warned[warning.RoleID] = true
	}

	fmt.Fprintf(w, "%-*s %-*s %s\n", roleColWidth, "Rôle", typeColWidth, "Type", "Principal")
	assigned := 0
	for _, role := range data.Roles {
		fmt.Fprintf(w, "%-*s %-*s ", roleColWidth, role.Name, typeColWidth, role.Type)
		participantID, ok := data.Assignments[casting.MainProposal][role.ID]
		switch {
		case !ok:
			fmt.Fprintf(w, "%s%s%s\n", colorDim, "-", colorReset)
		case warned[role.ID]:
			assigned++
			fmt.Fprintf(w, "%s%s%s\n", colorYellow, names[participantID], colorReset)
		default:
			assigned++
			fmt.Fprintf(w, "%s\n", names[participantID])
		}
	}
	fmt.Fprintf(w, "\n%d/%d rôles attribués\n", assigned, len(data.Roles))

	if len(warnings) > 0 {
		fmt.Fprintf(w, "\n%s%d avertissements:%s\n", colorYellow, len(warnings), colorReset)
		for _, warning := range warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warning.Message)
		}
	}
	fmt.Fprintln(w)
}
