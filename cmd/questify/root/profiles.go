package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/questify/internal/ui"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List local session profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.store == nil {
				return errors.New("local session store unavailable")
			}
			names, err := state.store.Profiles()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("no profiles yet, run login first"))
				return nil
			}
			for _, name := range names {
				marker := "  "
				if name == state.profile {
					marker = ui.Key.Render("* ")
				}
				fmt.Fprintln(out, marker+name)
			}
			return nil
		},
	}
}
