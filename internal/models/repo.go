package models

// RepositoryRecord is one public repository as returned by the GitHub
// listing. Readme and Snippets stay unset until the record is enriched;
// an unset README is nil, a fetched-but-empty README is a pointer to "".
type RepositoryRecord struct {
	Name        string
	URL         string
	Description string
	Language    *string
	Stars       int
	Forks       int
	Topics      []string
	License     *string
	PushedAt    string
	Fork        bool

	Readme          *string
	Snippets        []CodeSnippet
	SnippetsFetched bool
}

// CodeSnippet is the leading portion of one source file.
type CodeSnippet struct {
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

// SetReadme records a fetched README, even when it is empty.
func (r *RepositoryRecord) SetReadme(text string) {
	r.Readme = &text
}

// SetSnippets records fetched code snippets, even when there are none.
func (r *RepositoryRecord) SetSnippets(snippets []CodeSnippet) {
	r.Snippets = snippets
	r.SnippetsFetched = true
}

// LanguageName returns the primary language or "" when GitHub reported none.
func (r RepositoryRecord) LanguageName() string {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// PreparedEntry is the size-bounded view of a repository handed to a
// summary producer. Content is derived from Description, Readme and
// CodeSnippets and is never edited independently.
type PreparedEntry struct {
	Name         string        `json:"name"`
	URL          string        `json:"html_url"`
	Description  string        `json:"description"`
	Language     string        `json:"language"`
	Stars        int           `json:"stars"`
	Forks        int           `json:"forks"`
	Topics       []string      `json:"topics"`
	License      *string       `json:"license"`
	PushedAt     string        `json:"pushed_at"`
	Readme       string        `json:"readme"`
	CodeSnippets []CodeSnippet `json:"code_snippets,omitempty"`
	Content      string        `json:"content"`
}

// ProfileSummary is the structured profile produced by both the model and
// the heuristic producer. Field names are part of the model prompt.
type ProfileSummary struct {
	OverallSummary            string       `json:"overall_summary" yaml:"overall_summary"`
	KeyLanguagesAndFrameworks []string     `json:"key_languages_and_frameworks" yaml:"key_languages_and_frameworks"`
	ToolsAndTechnologies      []string     `json:"tools_and_technologies" yaml:"tools_and_technologies"`
	TopProjects               []TopProject `json:"top_projects" yaml:"top_projects"`
	AreasOfExpertise          []string     `json:"areas_of_expertise" yaml:"areas_of_expertise"`
}

// TopProject is one highlighted repository in a ProfileSummary.
type TopProject struct {
	Name           string `json:"name" yaml:"name"`
	URL            string `json:"url" yaml:"url"`
	WhyItStandsOut string `json:"why_it_stands_out" yaml:"why_it_stands_out"`
}

// Normalize replaces nil sequences with empty ones so that every summary
// serializes with the same shape.
func (s *ProfileSummary) Normalize() {
	if s.KeyLanguagesAndFrameworks == nil {
		s.KeyLanguagesAndFrameworks = []string{}
	}
	if s.ToolsAndTechnologies == nil {
		s.ToolsAndTechnologies = []string{}
	}
	if s.TopProjects == nil {
		s.TopProjects = []TopProject{}
	}
	if s.AreasOfExpertise == nil {
		s.AreasOfExpertise = []string{}
	}
}

// Report is a stored ProfileSummary.
type Report struct {
	ID        string         `json:"id"`
	Owner     string         `json:"owner"`
	Producer  string         `json:"producer"`
	Summary   ProfileSummary `json:"summary"`
	CreatedAt string         `json:"created_at"`
}
