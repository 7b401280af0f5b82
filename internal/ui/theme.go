package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fastygo/questify/domain"
)

const (
	IconQuest  = "🗺️"
	IconDone   = "✅"
	IconOpen   = "⬜"
	IconTrophy = "🏆"
	IconBolt   = "⚡"
	IconCoin   = "🪙"
	IconWarn   = "⚠️"
	IconError  = "🧨"
	IconKey    = "🔑"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cWarn    = lipgloss.Color("214")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// ProgressBar renders value/total as a fixed-width bar.
func ProgressBar(value, total, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if total > 0 {
		filled = min(max(value*width/total, 0), width)
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}

// DifficultyText colours a task difficulty.
func DifficultyText(d domain.Difficulty) string {
	switch d {
	case domain.DifficultyEasy:
		return Good.Render(string(d))
	case domain.DifficultyMedium:
		return Key.Render(string(d))
	case domain.DifficultyHard:
		return Warn.Render(string(d))
	default:
		return Bad.Render(string(d))
	}
}

func CheckBox(done bool) string {
	if done {
		return IconDone
	}
	return IconOpen
}
