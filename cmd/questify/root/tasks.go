package root

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/questify/api/transport"
	"github.com/fastygo/questify/internal/ui"
	"github.com/fastygo/questify/usecase/gamification"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage quests",
	}
	cmd.AddCommand(newTasksListCmd(), newTasksAddCmd(), newTasksCompleteCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var (
		project string
		open    bool
		done    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}

			var completed *bool
			switch {
			case open && done:
				return fmt.Errorf("--open and --done are exclusive")
			case open:
				completed = new(bool)
			case done:
				v := true
				completed = &v
			}

			tasks, err := state.client.ListTasks(ctx, token, project, completed)
			if err != nil {
				return state.apiError(err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("no tasks"))
				return nil
			}
			for _, t := range tasks {
				line := fmt.Sprintf("%s %s  %s  %s %d XP",
					ui.CheckBox(t.Completed), ui.Muted.Render(t.ID), t.Title, ui.DifficultyText(t.Difficulty()), t.XP+t.BonusXP)
				if t.DueDate != nil && !t.Completed {
					line += ui.Muted.Render("  due " + t.DueDate.Local().Format(time.DateOnly))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "only tasks of this project")
	cmd.Flags().BoolVar(&open, "open", false, "only open tasks")
	cmd.Flags().BoolVar(&done, "done", false, "only completed tasks")
	return cmd
}

func newTasksAddCmd() *cobra.Command {
	var req transport.TaskRequest
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task; the reward is suggested by the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}
			req.Title = args[0]
			task, err := state.client.CreateTask(ctx, token, req)
			if err != nil {
				return state.apiError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %d XP, %d tokens\n",
				ui.IconQuest, task.Title, ui.DifficultyText(task.Difficulty()), task.XP, task.Tokens)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Description, "desc", "", "description")
	cmd.Flags().StringVar(&req.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&req.SkillID, "skill", "", "skill id")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	return cmd
}

func newTasksCompleteCmd() *cobra.Command {
	var (
		undo  bool
		bonus int
		focus time.Duration
	)
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a task, or reopen it with --undo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := state.context(cmd)
			defer cancel()

			token, err := state.token(ctx)
			if err != nil {
				return err
			}
			completed := !undo
			outcome, err := state.client.CompleteTask(ctx, token, args[0], transport.CompleteTaskRequest{
				Completed:    &completed,
				FocusSeconds: int(focus.Seconds()),
				BonusXP:      bonus,
			})
			if err != nil {
				return state.apiError(err)
			}
			printOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed")
	cmd.Flags().IntVar(&bonus, "bonus", 0, "bonus XP on completion")
	cmd.Flags().DurationVar(&focus, "focus", 0, "focus time spent, e.g. 25m")
	return cmd
}

func printOutcome(out io.Writer, o *gamification.Outcome) {
	style := ui.Good
	if o.XPDelta < 0 {
		style = ui.Warn
	}
	fmt.Fprintln(out, style.Render(fmt.Sprintf("%s %+d XP  %+d tokens", ui.IconBolt, o.XPDelta, o.TokensDelta)))
	if o.LevelUp {
		fmt.Fprintf(out, "%s reached level %d\n", ui.BadgeLevelUp, o.Level)
	}
	if o.SkillLevelUp && o.Skill != nil {
		fmt.Fprintf(out, "%s %s is now level %d\n", ui.IconTrophy, o.Skill.Name, o.Skill.Level)
	}
	if o.User != nil {
		fmt.Fprintln(out, ui.ProgressBar(o.User.XP, o.User.NextLevelXP, 24), ui.Muted.Render(fmt.Sprintf("%d / %d", o.User.XP, o.User.NextLevelXP)))
	}
}
