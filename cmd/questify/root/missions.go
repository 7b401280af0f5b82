package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/questify/internal/ui"
)

func newMissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "Show this week's missions, generating them on first use",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}
			week, err := state.client.Missions(ctx, token)
			if err != nil {
				return state.apiError(err)
			}

			out := cmd.OutOrStdout()
			done := 0
			for _, m := range week.Missions {
				if m.Completed {
					done++
				}
			}
			fmt.Fprintln(out, ui.Heading(ui.IconQuest, "Week "+week.WeekID))
			fmt.Fprintln(out, ui.ProgressBar(done, len(week.Missions), 21), ui.Muted.Render(fmt.Sprintf("%d / %d", done, len(week.Missions))))
			if week.Generated {
				fmt.Fprintln(out, ui.Muted.Render("new missions generated"))
			}
			for _, m := range week.Missions {
				fmt.Fprintf(out, "%s %d. %s  %s\n", ui.CheckBox(m.Completed), m.Position, m.Title,
					ui.Muted.Render(fmt.Sprintf("%d XP, %d tokens  [%s]", m.XP, m.Tokens, m.ID)))
				if m.Description != "" {
					fmt.Fprintln(out, "     "+ui.Muted.Render(m.Description))
				}
			}
			return nil
		},
	}
	cmd.AddCommand(newMissionsCompleteCmd())
	return cmd
}

func newMissionsCompleteCmd() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a mission, or reopen it with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}
			outcome, err := state.client.CompleteMission(ctx, token, args[0], !undo)
			if err != nil {
				return state.apiError(err)
			}
			printOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the mission as not completed")
	return cmd
}
