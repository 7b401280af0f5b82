package ai

import (
	"fmt"
	"strings"

	"github.com/fastygo/questify/domain"
	"github.com/fastygo/questify/usecase"
)

const taskSystemPrompt = `You rate personal productivity tasks for a role-playing style tracker.
Reply with a single JSON object {"xp": <integer>} and nothing else.
The xp is between 10 and 150: small chores near 10, multi-hour deep work near 150.`

const missionSystemPrompt = `You design weekly missions for a role-playing style productivity tracker.
Reply with a single JSON object {"missions": [...]} and nothing else.
Each mission has "title", "description", "xp" (50 to 300) and "tokens" (10 to 100).
Return exactly 7 missions.`

func buildTaskPrompt(req usecase.TaskXPRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n", req.Title)
	if req.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", req.Project)
	}
	return b.String()
}

func buildMissionPrompt(req usecase.MissionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Player level: %d\n", req.Level)
	if len(req.Skills) == 0 {
		b.WriteString("Skills: none yet\n")
	} else {
		b.WriteString("Skills:\n")
		for _, s := range req.Skills {
			fmt.Fprintf(&b, "- %s (level %d)\n", s.Name, s.Level)
		}
	}
	fmt.Fprintf(&b, "Generate %d missions for this week.\n", domain.MissionsPerWeek)
	return b.String()
}
