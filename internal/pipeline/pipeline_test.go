package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/github"
	"github.com/kevinmichaelchen/profile-analyzer/internal/models"
	"github.com/kevinmichaelchen/profile-analyzer/internal/summary"
)

// MockSource is a mock implementation of Source
type MockSource struct {
	mock.Mock
}

func (m *MockSource) FetchRepositories(ctx context.Context, owner string) ([]models.RepositoryRecord, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RepositoryRecord), args.Error(1)
}

func (m *MockSource) FetchReadme(ctx context.Context, owner, repo string) string {
	args := m.Called(ctx, owner, repo)
	return args.String(0)
}

func (m *MockSource) FetchCodeSnippets(ctx context.Context, owner, repo string) []models.CodeSnippet {
	args := m.Called(ctx, owner, repo)
	return args.Get(0).([]models.CodeSnippet)
}

// MockStore is a mock implementation of ReportStore
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveReport(ctx context.Context, r models.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockProducer is a mock implementation of summary.SummaryProducer
type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Name() string { return "mock" }

func (m *MockProducer) Produce(ctx context.Context, entries []models.PreparedEntry) (models.ProfileSummary, error) {
	args := m.Called(ctx, entries)
	return args.Get(0).(models.ProfileSummary), args.Error(1)
}

func lang(s string) *string { return &s }

func listing() []models.RepositoryRecord {
	return []models.RepositoryRecord{
		{Name: "small", URL: "https://github.com/octocat/small", Language: lang("Go"), Stars: 10},
		{Name: "forked", URL: "https://github.com/octocat/forked", Stars: 500, Fork: true},
		{Name: "big", URL: "https://github.com/octocat/big", Description: "Big project", Language: lang("Python"), Stars: 200},
		{Name: "mid", URL: "https://github.com/octocat/mid", Language: lang("Go"), Stars: 50},
	}
}

func testOptions() Options {
	return Options{
		Strategy:    analysis.StrategyStars,
		Limit:       2,
		Corpus:      analysis.DefaultCorpusOptions(),
		Concurrency: 2,
	}
}

func TestAnalyze(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "octocat").Return(listing(), nil).Once()
	src.On("FetchReadme", mock.Anything, "octocat", "big").Return("Uses docker")
	src.On("FetchReadme", mock.Anything, "octocat", "mid").Return("")
	src.On("FetchCodeSnippets", mock.Anything, "octocat", "big").
		Return([]models.CodeSnippet{{Name: "main.py", Content: "import pandas"}})
	src.On("FetchCodeSnippets", mock.Anything, "octocat", "mid").Return([]models.CodeSnippet{})

	producer := summary.NewHeuristic(analysis.SummaryOptions{RoleInference: true})
	a := NewAnalyzer(src, NewCache(), producer, testOptions())

	res, err := a.Analyze(context.Background(), "octocat")
	require.NoError(t, err)

	require.Len(t, res.Selected, 2)
	assert.Equal(t, "big", res.Selected[0].Name)
	assert.Equal(t, "mid", res.Selected[1].Name)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Big project\n\nUses docker\n\nimport pandas", res.Entries[0].Content)
	assert.Equal(t, "\n\n", res.Entries[1].Content)

	assert.Equal(t, "local", res.Producer)
	assert.Equal(t, []string{"docker", "pandas"}, res.Summary.ToolsAndTechnologies)
	assert.Equal(t, []string{"Backend Engineer"}, res.Summary.AreasOfExpertise)
	assert.Empty(t, res.ReportID)

	src.AssertExpectations(t)
	src.AssertNotCalled(t, "FetchReadme", mock.Anything, "octocat", "small")
	src.AssertNotCalled(t, "FetchReadme", mock.Anything, "octocat", "forked")
}

func TestAnalyzeWithoutSnippets(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "octocat").Return(listing(), nil)
	src.On("FetchReadme", mock.Anything, "octocat", mock.Anything).Return("readme")

	opts := testOptions()
	opts.Corpus.IncludeSnippets = false
	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), opts)

	res, err := a.Analyze(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "Big project\n\nreadme", res.Entries[0].Content)
	src.AssertNotCalled(t, "FetchCodeSnippets", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockSource, *MockProducer)
		wantErr    error
	}{
		{
			name: "user not found",
			setupMocks: func(src *MockSource, _ *MockProducer) {
				src.On("FetchRepositories", mock.Anything, "ghost").Return(nil, github.ErrUserNotFound)
			},
			wantErr: github.ErrUserNotFound,
		},
		{
			name: "no repositories",
			setupMocks: func(src *MockSource, _ *MockProducer) {
				src.On("FetchRepositories", mock.Anything, "ghost").Return([]models.RepositoryRecord{}, nil)
			},
			wantErr: ErrNoRepositories,
		},
		{
			name: "unparseable model response",
			setupMocks: func(src *MockSource, p *MockProducer) {
				src.On("FetchRepositories", mock.Anything, "ghost").
					Return([]models.RepositoryRecord{{Name: "only", Stars: 1}}, nil)
				src.On("FetchReadme", mock.Anything, "ghost", "only").Return("")
				src.On("FetchCodeSnippets", mock.Anything, "ghost", "only").Return([]models.CodeSnippet{})
				p.On("Produce", mock.Anything, mock.Anything).
					Return(models.ProfileSummary{}, summary.ErrUnparseableResponse)
			},
			wantErr: summary.ErrUnparseableResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(MockSource)
			p := new(MockProducer)
			tt.setupMocks(src, p)

			_, err := NewAnalyzer(src, nil, p, testOptions()).Analyze(context.Background(), "ghost")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalyzeStoresReport(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "octocat").
		Return([]models.RepositoryRecord{{Name: "only", Stars: 1}}, nil)
	src.On("FetchReadme", mock.Anything, "octocat", "only").Return("")
	src.On("FetchCodeSnippets", mock.Anything, "octocat", "only").Return([]models.CodeSnippet{})

	store := new(MockStore)
	store.On("SaveReport", mock.Anything, mock.MatchedBy(func(r models.Report) bool {
		return r.Owner == "octocat" && r.Producer == "local" && r.ID != "" &&
			r.CreatedAt == "2025-03-04T05:06:07Z"
	})).Return(nil)

	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), testOptions()).WithStore(store)
	a.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	res, err := a.Analyze(context.Background(), "octocat")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ReportID)
	store.AssertExpectations(t)
}

func TestAnalyzeStoreFailure(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "octocat").
		Return([]models.RepositoryRecord{{Name: "only", Stars: 1}}, nil)
	src.On("FetchReadme", mock.Anything, "octocat", "only").Return("")
	src.On("FetchCodeSnippets", mock.Anything, "octocat", "only").Return([]models.CodeSnippet{})

	store := new(MockStore)
	store.On("SaveReport", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), testOptions()).WithStore(store)

	_, err := a.Analyze(context.Background(), "octocat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing report for octocat")
}

func TestRunPreservesOwnerOrder(t *testing.T) {
	src := new(MockSource)
	for _, owner := range []string{"alice", "bob", "carol"} {
		src.On("FetchRepositories", mock.Anything, owner).
			Return([]models.RepositoryRecord{{Name: owner + "-repo", Stars: 1}}, nil)
		src.On("FetchReadme", mock.Anything, owner, owner+"-repo").Return("")
		src.On("FetchCodeSnippets", mock.Anything, owner, owner+"-repo").Return([]models.CodeSnippet{})
	}

	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), testOptions())

	results, err := a.Run(context.Background(), []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, owner := range []string{"alice", "bob", "carol"} {
		assert.Equal(t, owner, results[i].Owner)
		assert.Equal(t, owner+"-repo", results[i].Selected[0].Name)
	}
}

func TestRunReportsProgress(t *testing.T) {
	src := new(MockSource)
	owners := []string{"alice", "bob", "carol"}
	for _, owner := range owners {
		src.On("FetchRepositories", mock.Anything, owner).
			Return([]models.RepositoryRecord{{Name: owner + "-repo", Stars: 1}}, nil)
		src.On("FetchReadme", mock.Anything, owner, owner+"-repo").Return("")
		src.On("FetchCodeSnippets", mock.Anything, owner, owner+"-repo").Return([]models.CodeSnippet{})
	}

	opts := testOptions()
	opts.Concurrency = 1

	var seen []string
	var counts []int
	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), opts).
		WithProgress(func(owner string, done, total int) {
			seen = append(seen, owner)
			counts = append(counts, done)
			assert.Equal(t, 3, total)
		})

	_, err := a.Run(context.Background(), owners)
	require.NoError(t, err)
	assert.Equal(t, owners, seen)
	assert.Equal(t, []int{1, 2, 3}, counts)
}

func TestAnalyzeUsesTokenInCacheKey(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "octocat").
		Return([]models.RepositoryRecord{{Name: "only", Stars: 1}}, nil)
	src.On("FetchReadme", mock.Anything, "octocat", "only").Return("")
	src.On("FetchCodeSnippets", mock.Anything, "octocat", "only").Return([]models.CodeSnippet{})

	cache := NewCache()
	producer := summary.NewHeuristic(analysis.SummaryOptions{})

	withToken := testOptions()
	withToken.Token = "ghp_one"
	_, err := NewAnalyzer(src, cache, producer, withToken).Analyze(context.Background(), "octocat")
	require.NoError(t, err)

	// Same cache and token: served from the cache.
	_, err = NewAnalyzer(src, cache, producer, withToken).Analyze(context.Background(), "octocat")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "FetchRepositories", 1)

	// Different token: fetched again.
	otherToken := testOptions()
	otherToken.Token = "ghp_two"
	_, err = NewAnalyzer(src, cache, producer, otherToken).Analyze(context.Background(), "octocat")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "FetchRepositories", 2)
}

func TestRunFailsFast(t *testing.T) {
	src := new(MockSource)
	src.On("FetchRepositories", mock.Anything, "ghost").Return(nil, github.ErrUserNotFound)

	opts := testOptions()
	opts.Concurrency = 1
	a := NewAnalyzer(src, nil, summary.NewHeuristic(analysis.SummaryOptions{}), opts)

	_, err := a.Run(context.Background(), []string{"ghost"})
	assert.ErrorIs(t, err, github.ErrUserNotFound)
}
