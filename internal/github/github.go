package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "github-profile-analyzer"
	perPage        = 100
)

var (
	// ErrUserNotFound is returned when the owner does not exist.
	ErrUserNotFound = errors.New("GitHub user not found")
	// ErrAPI covers every other failure of the repository listing.
	ErrAPI = errors.New("GitHub API error")
)

// APIError carries the HTTP status of a failed listing call. StatusCode is
// zero for transport and decoding failures.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("GitHub API error: %v", e.Err)
	}
	return fmt.Sprintf("GitHub API error %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAPI}
	}
	return []error{ErrAPI, e.Err}
}

// SnippetOptions bounds what FetchCodeSnippets downloads.
type SnippetOptions struct {
	Extensions []string
	MaxFiles   int
	MaxLines   int
}

// DefaultSnippetOptions mirrors what the analyzer has always sampled.
func DefaultSnippetOptions() SnippetOptions {
	return SnippetOptions{
		Extensions: []string{".py", ".js", ".ts", ".html", ".ipynb", ".java"},
		MaxFiles:   3,
		MaxLines:   200,
	}
}

// Client is a thin wrapper around the GitHub REST API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    *url.URL
	snippets   SnippetOptions
}

func NewClient(token string) *Client {
	baseURL, _ := url.Parse(defaultBaseURL)
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		snippets:   DefaultSnippetOptions(),
	}
}

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise.
func (c *Client) WithBaseURL(raw string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	c.baseURL = u
	return c, nil
}

// ParseUsername extracts the owner from a username, an owner/repo path or
// a github.com URL.
func ParseUsername(input string) string {
	s := strings.TrimRight(strings.TrimSpace(input), "/")
	if i := strings.LastIndex(s, "github.com/"); i != -1 {
		rest := s[i+len("github.com/"):]
		owner, _, _ := strings.Cut(rest, "/")
		return owner
	}
	if i := strings.LastIndex(s, "/"); i != -1 {
		return s[i+1:]
	}
	return s
}

// --- listing ---

type repoResponse struct {
	Name            string   `json:"name"`
	HTMLURL         string   `json:"html_url"`
	Description     *string  `json:"description"`
	Language        *string  `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Topics          []string `json:"topics"`
	License         *struct {
		SPDXID *string `json:"spdx_id"`
	} `json:"license"`
	PushedAt string `json:"pushed_at"`
	Fork     bool   `json:"fork"`
}

// FetchRepositories returns every repository the owner owns, most recently
// updated first.
func (c *Client) FetchRepositories(ctx context.Context, owner string) ([]models.RepositoryRecord, error) {
	var repos []models.RepositoryRecord

	for page := 1; ; page++ {
		reqURL := c.resolve(fmt.Sprintf("/users/%s/repos", url.PathEscape(owner)))
		q := reqURL.Query()
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("type", "owner")
		q.Set("sort", "updated")
		reqURL.RawQuery = q.Encode()

		logger.Debug("Fetching repositories page",
			zap.String("owner", owner),
			zap.Int("page", page))

		status, body, err := c.get(ctx, reqURL.String())
		if err != nil {
			return nil, &APIError{Err: err}
		}
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, owner)
		}
		if status >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: status, Body: string(body)}
		}

		var data []repoResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, &APIError{StatusCode: status, Err: fmt.Errorf("parsing repository list: %w", err)}
		}
		if len(data) == 0 {
			break
		}

		for _, r := range data {
			repos = append(repos, toRecord(r))
		}

		if len(data) < perPage {
			break
		}
	}

	logger.Info("Fetched repositories",
		zap.String("owner", owner),
		zap.Int("count", len(repos)))
	return repos, nil
}

func toRecord(r repoResponse) models.RepositoryRecord {
	rec := models.RepositoryRecord{
		Name:     r.Name,
		URL:      r.HTMLURL,
		Language: r.Language,
		Stars:    max(r.StargazersCount, 0),
		Forks:    max(r.ForksCount, 0),
		Topics:   r.Topics,
		PushedAt: r.PushedAt,
		Fork:     r.Fork,
	}
	if r.Description != nil {
		rec.Description = *r.Description
	}
	if rec.Topics == nil {
		rec.Topics = []string{}
	}
	if r.License != nil {
		rec.License = r.License.SPDXID
	}
	return rec
}

// --- enrichment ---

type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FetchReadme returns the decoded README or "" when the repository has none
// or the call fails.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) string {
	reqURL := c.resolve(fmt.Sprintf("/repos/%s/%s/readme", url.PathEscape(owner), url.PathEscape(repo)))

	status, body, err := c.get(ctx, reqURL.String())
	if err != nil || status != http.StatusOK {
		logger.Debug("README unavailable",
			zap.String("repo", owner+"/"+repo),
			zap.Int("status_code", status),
			zap.Error(err))
		return ""
	}

	var data readmeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		// Raw media type responses are the README itself.
		return strings.ToValidUTF8(string(body), "�")
	}
	if data.Encoding != "base64" {
		return ""
	}

	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(data.Content)
	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		logger.Debug("README not valid base64", zap.String("repo", owner+"/"+repo), zap.Error(err))
		return ""
	}
	return strings.ToValidUTF8(string(decoded), "�")
}

type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// FetchCodeSnippets samples a few source files from the repository root.
// It never fails; errors yield an empty slice.
func (c *Client) FetchCodeSnippets(ctx context.Context, owner, repo string) []models.CodeSnippet {
	snippets := []models.CodeSnippet{}

	reqURL := c.resolve(fmt.Sprintf("/repos/%s/%s/contents", url.PathEscape(owner), url.PathEscape(repo)))
	status, body, err := c.get(ctx, reqURL.String())
	if err != nil || status != http.StatusOK {
		logger.Debug("Repository contents unavailable",
			zap.String("repo", owner+"/"+repo),
			zap.Int("status_code", status),
			zap.Error(err))
		return snippets
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return snippets
	}

	for _, e := range entries {
		if len(snippets) >= c.snippets.MaxFiles {
			break
		}
		if e.Type != "file" || e.DownloadURL == "" || !hasExtension(e.Name, c.snippets.Extensions) {
			continue
		}

		s, b, err := c.get(ctx, e.DownloadURL)
		if err != nil || s != http.StatusOK {
			continue
		}
		snippets = append(snippets, models.CodeSnippet{
			Name:    e.Name,
			Content: firstLines(strings.ToValidUTF8(string(b), "�"), c.snippets.MaxLines),
		})
	}
	return snippets
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// firstLines keeps at most n lines, dropping line terminators the way
// splitlines does.
func firstLines(s string, n int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// --- internal ---

func (c *Client) resolve(path string) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return &u
}

func (c *Client) get(ctx context.Context, rawURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logRateLimit(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// RateLimit is GitHub's quota as reported on each response.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

func parseRateLimit(resp *http.Response) (RateLimit, bool) {
	if resp.Header.Get("X-RateLimit-Limit") == "" {
		return RateLimit{}, false
	}
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return RateLimit{Limit: limit, Remaining: remaining, Reset: time.Unix(reset, 0)}, true
}

func logRateLimit(resp *http.Response) {
	rl, ok := parseRateLimit(resp)
	if !ok {
		return
	}
	logger.Debug("GitHub rate limit",
		zap.Int("limit", rl.Limit),
		zap.Int("remaining", rl.Remaining),
		zap.Time("reset", rl.Reset))
}
