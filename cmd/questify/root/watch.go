package root

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fastygo/questify/internal/client/session"
	"github.com/fastygo/questify/internal/ui"
)

func newWatchCmd() *cobra.Command {
	var cfg session.MonitorConfig
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive and report when it expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !state.session.HasValidSession() {
				return fmt.Errorf("not logged in, run `questify login`")
			}
			out := cmd.OutOrStdout()

			mon := session.NewMonitor(state.session, func() {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconWarn+" session expired, please log in again"))
			}, state.logger, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(out, ui.Muted.Render("watching session for "+state.session.SessionInfo().UserEmail+", ctrl+c to stop"))
			mon.Start()
			defer mon.Stop()

			select {
			case <-mon.Done():
			case <-ctx.Done():
			}
			if mon.ExpiryWarned() {
				fmt.Fprintln(out, ui.Muted.Render("token was close to expiry, run any command to refresh it"))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&cfg.CheckInterval, "check", session.DefaultCheckInterval, "validity check interval")
	cmd.Flags().DurationVar(&cfg.ActivityInterval, "activity", session.DefaultActivityInterval, "activity refresh interval")
	return cmd
}
