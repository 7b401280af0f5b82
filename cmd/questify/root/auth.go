package root

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/internal/ui"
)

func newSignUpCmd() *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			ctx, cancel := state.context(cmd)
			defer cancel()

			result, err := state.client.SignUp(ctx, args[0], pw, name)
			if err != nil {
				return err
			}
			state.session.SaveSession(result.User, result.Token, false)
			printWelcome(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var (
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the session locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password)
			if err != nil {
				return err
			}
			ctx, cancel := state.context(cmd)
			defer cancel()

			result, err := state.client.SignIn(ctx, args[0], pw)
			if err != nil {
				return err
			}
			state.session.SaveSession(result.User, result.Token, remember)
			printWelcome(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session across inactivity")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear local data",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := state.session.Token()
			if token != "" {
				ctx, cancel := state.context(cmd)
				defer cancel()
				if err := state.client.SignOut(ctx, token); err != nil {
					state.logger.Debug("server sign-out failed", zap.Error(err))
				}
			}
			state.session.ClearSession()
			if forget && state.store != nil {
				if err := state.store.Profile(state.profile).Drop(); err != nil {
					return fmt.Errorf("forget profile %s: %w", state.profile, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("logged out"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "also delete everything stored for this profile")
	return cmd
}

func printWelcome(cmd *cobra.Command, result *domain.AuthResult) {
	out := cmd.OutOrStdout()
	name := result.User.Name
	if name == "" {
		name = result.User.Email
	}
	fmt.Fprintln(out, ui.Heading(ui.IconKey, "Welcome, "+name))
	if result.Message != "" {
		fmt.Fprintln(out, ui.Muted.Render(result.Message))
	}
}

func passwordFrom(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password is required")
	}
	return line, nil
}
