package analysis

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
)

const (
	maxSummaryLanguages = 5
	maxKeyLanguages     = 8
	maxTools            = 15
	maxTopProjects      = 3

	// DefaultRole is used when no role rule matches.
	DefaultRole = "Software Engineer"
)

// ToolKeywords are matched as case-insensitive substrings of each entry's
// content. Short terms such as "aws" can match inside unrelated words.
var ToolKeywords = []string{
	"docker", "github actions", "circleci", "travis", "firebase", "aws", "gcp",
	"fastapi", "flask", "django", "react", "tailwind", "typescript",
	"pandas", "numpy", "scrapy",
}

// RoleRule maps a set of languages to a role label.
type RoleRule struct {
	Role      string
	Languages []string
}

// RoleRules are evaluated in order; the first rule sharing a language with
// the profile wins.
var RoleRules = []RoleRule{
	{Role: "Data Scientist / ML Engineer", Languages: []string{"Jupyter Notebook", "R", "Julia", "MATLAB"}},
	{Role: "Frontend Developer", Languages: []string{"JavaScript", "TypeScript", "HTML", "CSS", "SCSS", "Vue", "Svelte"}},
	{Role: "Backend Engineer", Languages: []string{"Go", "Java", "Rust", "C++", "C#", "Kotlin", "Scala", "C"}},
}

// SummaryOptions controls SummarizeLocally.
type SummaryOptions struct {
	// RoleInference reports a role label in AreasOfExpertise instead of
	// the two most frequent languages.
	RoleInference bool
}

// SummarizeLocally derives a ProfileSummary from keyword and star counts.
// The result depends only on entries.
func SummarizeLocally(entries []models.PreparedEntry, opts SummaryOptions) models.ProfileSummary {
	languages := rankLanguages(entries)
	tools := detectTools(entries)

	summaryLangs := "Unknown"
	if len(languages) > 0 {
		summaryLangs = strings.Join(languages[:min(len(languages), maxSummaryLanguages)], ", ")
	}

	areas := []string{}
	if len(languages) > 0 {
		if opts.RoleInference {
			areas = append(areas, InferRole(languages))
		} else {
			areas = append(areas, strings.Join(languages[:min(len(languages), 2)], "/"))
		}
	}

	s := models.ProfileSummary{
		OverallSummary:            fmt.Sprintf("Developer with %d public projects. Top languages: %s.", len(entries), summaryLangs),
		KeyLanguagesAndFrameworks: languages[:min(len(languages), maxKeyLanguages)],
		ToolsAndTechnologies:      tools[:min(len(tools), maxTools)],
		TopProjects:               topProjects(entries),
		AreasOfExpertise:          areas,
	}
	s.Normalize()
	return s
}

// rankLanguages orders languages by how many entries use them, most first.
// Equal counts keep first-seen order.
func rankLanguages(entries []models.PreparedEntry) []string {
	counts := map[string]int{}
	var order []string
	for _, e := range entries {
		if e.Language == "" {
			continue
		}
		if _, seen := counts[e.Language]; !seen {
			order = append(order, e.Language)
		}
		counts[e.Language]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if order == nil {
		return []string{}
	}
	return order
}

func detectTools(entries []models.PreparedEntry) []string {
	found := map[string]bool{}
	for _, e := range entries {
		blob := strings.ToLower(e.Content)
		for _, kw := range ToolKeywords {
			if strings.Contains(blob, kw) {
				found[kw] = true
			}
		}
	}

	tools := make([]string, 0, len(found))
	for kw := range found {
		tools = append(tools, kw)
	}
	sort.Strings(tools)
	return tools
}

func topProjects(entries []models.PreparedEntry) []models.TopProject {
	ranked := slices.Clone(entries)
	slices.SortStableFunc(ranked, func(a, b models.PreparedEntry) int {
		return b.Stars - a.Stars
	})

	out := make([]models.TopProject, 0, maxTopProjects)
	for _, e := range ranked[:min(len(ranked), maxTopProjects)] {
		// An unknown language renders as an empty name.
		out = append(out, models.TopProject{
			Name:           e.Name,
			URL:            e.URL,
			WhyItStandsOut: fmt.Sprintf("%d stars, language: %s", e.Stars, e.Language),
		})
	}
	return out
}

// InferRole returns the role of the first RoleRule that shares a language
// with languages, or DefaultRole.
func InferRole(languages []string) string {
	for _, rule := range RoleRules {
		for _, lang := range rule.Languages {
			if slices.Contains(languages, lang) {
				return rule.Role
			}
		}
	}
	return DefaultRole
}
