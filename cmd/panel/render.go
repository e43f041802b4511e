package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"techpanel/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderMarkdown renders markdown for the terminal; on renderer failure the
// raw text is still shown.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// feedbackMarkdown lays the final evaluation out as a markdown document.
func feedbackMarkdown(fb types.FinalFeedback) string {
	var b strings.Builder

	b.WriteString("# Итоговая оценка\n\n")
	fmt.Fprintf(&b, "**Грейд:** %s  \n", fb.Decision.Grade)
	fmt.Fprintf(&b, "**Рекомендация:** %s  \n", fb.Decision.Recommendation)
	fmt.Fprintf(&b, "**Уверенность:** %.0f%%\n\n", fb.Decision.ConfidenceScore*100)

	b.WriteString("## Сильные стороны\n\n")
	for _, c := range fb.Strengths {
		fmt.Fprintf(&b, "- %s *(ход %d)*\n", c.Statement, c.TurnID)
	}

	b.WriteString("\n## Зоны роста\n\n")
	for _, c := range fb.GrowthAreas {
		fmt.Fprintf(&b, "- %s *(ход %d)*\n  - Правильное направление: %s\n", c.Statement, c.TurnID, c.CorrectiveNote)
	}

	if len(fb.HardSkills.Confirmed) > 0 {
		b.WriteString("\n## Подтвержденные навыки\n\n")
		for _, skill := range fb.HardSkills.Confirmed {
			fmt.Fprintf(&b, "- %s\n", skill)
		}
	}
	if len(fb.HardSkills.GapsWithCorrectAnswers) > 0 {
		b.WriteString("\n## Пробелы\n\n")
		gaps := make([]string, 0, len(fb.HardSkills.GapsWithCorrectAnswers))
		for skill := range fb.HardSkills.GapsWithCorrectAnswers {
			gaps = append(gaps, skill)
		}
		sort.Strings(gaps)
		for _, skill := range gaps {
			fmt.Fprintf(&b, "- **%s**: %s\n", skill, fb.HardSkills.GapsWithCorrectAnswers[skill])
		}
	}

	b.WriteString("\n## Soft skills\n\n")
	fmt.Fprintf(&b, "- Ясность: %s\n", fb.SoftSkills.Clarity)
	fmt.Fprintf(&b, "- Честность: %s\n", fb.SoftSkills.Honesty)
	fmt.Fprintf(&b, "- Вовлеченность: %s\n", fb.SoftSkills.Engagement)

	if len(fb.Roadmap.NextSteps) > 0 {
		b.WriteString("\n## Что дальше\n\n")
		for i, step := range fb.Roadmap.NextSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	return b.String()
}
