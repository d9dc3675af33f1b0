package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

var (
	titleStyle   = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#47A359"))
	projectStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SuggestedRole is the first area of expertise, or the default role.
func SuggestedRole(s models.ProfileSummary) string {
	if len(s.AreasOfExpertise) == 0 || s.AreasOfExpertise[0] == "" {
		return analysis.DefaultRole
	}
	return s.AreasOfExpertise[0]
}

// SummaryView controls RenderSummary.
type SummaryView struct {
	Owner    string
	Producer string
	// Raw appends the summary as indented JSON.
	Raw bool
}

// RenderSummary writes a human-readable profile summary.
func RenderSummary(w io.Writer, s models.ProfileSummary, view SummaryView) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Analyzing: " + view.Owner))
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Suggested Role: " + SuggestedRole(s)))
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("Overall Summary"))
	b.WriteString("\n")
	if s.OverallSummary == "" {
		b.WriteString("(no summary returned)")
	} else {
		b.WriteString(s.OverallSummary)
	}
	b.WriteString("\n\n")

	writeList(&b, "Languages & Frameworks", s.KeyLanguagesAndFrameworks)
	writeList(&b, "Tools & Technologies", s.ToolsAndTechnologies)

	if len(s.TopProjects) > 0 {
		p := s.TopProjects[0]
		b.WriteString(headingStyle.Render("Top Project"))
		b.WriteString("\n")
		b.WriteString(projectStyle.Render(fmt.Sprintf("%s\n%s\n%s", p.Name, p.URL, p.WhyItStandsOut)))
		b.WriteString("\n\n")
	}

	if view.Producer != "" {
		b.WriteString(dimStyle.Render("Generated by " + view.Producer))
		b.WriteString("\n")
	}

	if view.Raw {
		raw, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding raw summary: %w", err)
		}
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Raw output (JSON)"))
		b.WriteString("\n")
		b.Write(raw)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString(headingStyle.Render(heading))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, item := range items {
		b.WriteString("  - ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
