package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/questify/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, XP, tokens and recent progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}
			snap, err := state.client.Profile(ctx, token)
			if err != nil {
				return state.apiError(err)
			}

			out := cmd.OutOrStdout()
			u := snap.User
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, fmt.Sprintf("Level %d", u.Level)))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%s %d / %d", ui.ProgressBar(u.XP, u.NextLevelXP, 24), u.XP, u.NextLevelXP)))
			fmt.Fprintln(out, ui.LabelValue("Tokens", ui.Gold.Render(fmt.Sprintf("%s %d", ui.IconCoin, u.Tokens))))

			info := state.session.SessionInfo()
			if info.TokenExpiry != nil {
				left := time.Until(*info.TokenExpiry).Round(time.Minute)
				fmt.Fprintln(out, ui.LabelValue("Session", ui.Muted.Render(fmt.Sprintf("%s (%s left)", info.UserEmail, left))))
			}

			if len(snap.RecentEvents) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Recent"))
			for _, ev := range snap.RecentEvents {
				line := fmt.Sprintf("%s  %-16s %+d XP %+d tokens", ev.CreatedAt.Local().Format("Jan 02 15:04"), ev.Kind, ev.XPDelta, ev.TokensDelta)
				if ev.LevelAfter > ev.LevelBefore {
					line += "  " + ui.BadgeLevelUp
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
