// Package ui renders analysis results for the terminal and encodes them for
// files and pipes.
package ui

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

// RenderRepositories writes the selected repositories as a table.
func RenderRepositories(w io.Writer, repos []models.RepositoryRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Language", "Stars", "Forks", "Updated", "URL"})
	table.SetAutoWrapText(false)
	for _, r := range repos {
		table.Append([]string{
			r.Name,
			r.LanguageName(),
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			r.PushedAt,
			r.URL,
		})
	}
	table.Render()
}

// RenderHistory writes stored reports as a table, newest first.
func RenderHistory(w io.Writer, reports []models.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Created", "Producer", "Suggested Role"})
	table.SetAutoWrapText(false)
	for _, r := range reports {
		table.Append([]string{r.ID, r.CreatedAt, r.Producer, SuggestedRole(r.Summary)})
	}
	table.Render()
}
