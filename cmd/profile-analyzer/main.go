package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kevinmichaelchen/profile-analyzer/internal/analysis"
	"github.com/kevinmichaelchen/profile-analyzer/internal/config"
	"github.com/kevinmichaelchen/profile-analyzer/internal/github"
	"github.com/kevinmichaelchen/profile-analyzer/internal/logger"
	"github.com/kevinmichaelchen/profile-analyzer/internal/pipeline"
	"github.com/kevinmichaelchen/profile-analyzer/internal/summary"
	"github.com/kevinmichaelchen/profile-analyzer/internal/surrealdb"
	"github.com/kevinmichaelchen/profile-analyzer/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := &cobra.Command{
		Use:           "profile-analyzer",
		Short:         "Summarize a GitHub profile from its public repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(analyzeCmd(), historyCmd(), schemaCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", userMessage(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// userMessage turns pipeline failures into something a person can act on.
// Not-found and empty-profile errors already read as user-facing text.
func userMessage(err error) string {
	if errors.Is(err, summary.ErrUnparseableResponse) {
		return err.Error() + " (retry, or pass --offline for the local summary)"
	}
	return err.Error()
}

func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return cfg, nil
}

func analyzeCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "analyze <username-or-url>...",
		Short: "Select, read and summarize a user's repositories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			owners := make([]string, 0, len(args))
			for _, arg := range args {
				owner := github.ParseUsername(arg)
				if owner == "" {
					return errors.New("please provide a GitHub username or profile URL")
				}
				owners = append(owners, owner)
			}

			producer := summary.NewProducer(ctx, cfg.SummaryOptions())
			analyzer := pipeline.NewAnalyzer(
				github.NewClient(cfg.GitHubToken),
				pipeline.NewCache(),
				producer,
				pipeline.Options{
					Strategy:    analysis.Strategy(cfg.Strategy),
					Limit:       cfg.Limit,
					Corpus:      cfg.CorpusOptions(),
					Concurrency: cfg.Concurrency,
					Token:       cfg.GitHubToken,
				},
			)

			if cfg.Store {
				db, err := surrealdb.NewClient(ctx, cfg)
				if err != nil {
					return err
				}
				defer func() { _ = db.Close(context.WithoutCancel(ctx)) }()
				if err := db.InitSchema(ctx); err != nil {
					return err
				}
				analyzer.WithStore(db)
			}

			sp := ui.NewSpinner(fmt.Sprintf("Analyzing %s with %s...", strings.Join(owners, ", "), producer.Name()))
			if len(owners) > 1 {
				analyzer.WithProgress(func(owner string, done, total int) {
					sp.Update(fmt.Sprintf("Analyzed %s (%d/%d)...", owner, done, total))
				})
			}
			sp.Start()
			results, err := analyzer.Run(ctx, owners)
			sp.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, res := range results {
				if err := printResult(out, cfg.Format, res, raw, i); err != nil {
					return err
				}
				if cfg.Output != "" {
					path := outputPath(cfg.Output, res.Owner, len(results) > 1)
					format := cfg.Format
					if format == config.FormatText {
						format = ui.FormatForPath(path)
					}
					if err := ui.WriteReport(afero.NewOsFs(), path, format, res.Summary); err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
				}
				if res.ReportID != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Stored report %s\n", res.ReportID)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("strategy", "s", "", "Ranking: stars, recent, stars_and_forks")
	flags.IntP("limit", "n", 0, "Maximum repositories to analyze (default 20)")
	flags.Bool("include-snippets", true, "Sample source files from each repository")
	flags.Bool("role-inference", true, "Infer a role label in the local summary")
	flags.Bool("offline", false, "Use the local summarizer even when a model key is set")
	flags.String("provider", "", "Model provider: gemini, openai")
	flags.String("model", "", "Model name for the selected provider")
	flags.StringP("format", "f", "", "Output format: text, json, yaml")
	flags.StringP("output", "o", "", "Also write the summary to this file")
	flags.Bool("store", false, "Save the summary to SurrealDB")
	flags.Int("concurrency", 0, "Owners analyzed at once (default 2)")
	flags.BoolVar(&raw, "raw", false, "Append the raw JSON summary to text output")
	return cmd
}

func printResult(w io.Writer, format string, res *pipeline.Result, raw bool, index int) error {
	switch format {
	case config.FormatJSON:
		return ui.Encode(w, format, res.Summary)
	case config.FormatYAML:
		if index > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		return ui.Encode(w, format, res.Summary)
	default:
		if index > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Selected repositories for %s\n", res.Owner)
		ui.RenderRepositories(w, res.Selected)
		fmt.Fprintln(w)
		return ui.RenderSummary(w, res.Summary, ui.SummaryView{
			Owner:    res.Owner,
			Producer: res.Producer,
			Raw:      raw,
		})
	}
}

// outputPath suffixes the file name with the owner when several owners
// share one --output flag.
func outputPath(path, owner string, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + owner + ext
}

func historyCmd() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "history <username-or-url>",
		Short: "List stored summaries for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(context.WithoutCancel(ctx)) }()

			owner := github.ParseUsername(args[0])
			reports, err := db.ListReports(ctx, owner, last)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No stored reports for %s\n", owner)
				return nil
			}
			ui.RenderHistory(cmd.OutOrStdout(), reports)
			return nil
		},
	}
	cmd.Flags().IntVar(&last, "last", surrealdb.DefaultHistoryLimit, "Number of reports to show")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Initialize/update SurrealDB schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(context.WithoutCancel(ctx)) }()

			if err := db.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema initialized")
			return nil
		},
	}
}
