package issues

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"mergington-be/pkg/logger"
)

// ExitError carries the process exit code for a failed run
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Config holds the parsed command line
type Config struct {
	Token    string
	Repo     Repo
	File     string
	DryRun   bool
	APIURL   string
	LogLevel string
}

// Parse reads args, falling back to GITHUB_TOKEN and GITHUB_REPOSITORY from
// getenv. It returns true when help was requested.
func Parse(args []string, getenv func(string) string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("seed-issues", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
seed-issues - Create GitHub issues from a JSON file.

Usage:
  seed-issues [options]

Environment:
  GITHUB_TOKEN       default for --token
  GITHUB_REPOSITORY  default for --repo

Options:
`)
		flagSet.PrintDefaults()
	}

	token := flagSet.String("token", getenv("GITHUB_TOKEN"), "GitHub personal access token.")
	repo := flagSet.String("repo", getenv("GITHUB_REPOSITORY"), "Repository in format OWNER/REPO.")
	file := flagSet.String("file", "issues_data.json", "Path to issues data JSON file.")
	dryRun := flagSet.Bool("dry-run", false, "Print issues without creating them.")
	apiURL := flagSet.String("api-url", DefaultAPIURL, "GitHub API base URL.")
	logLevel := flagSet.String("log-level", "info", "Log level: debug, info, warn or error.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if !*dryRun && *token == "" {
		return nil, false, &ExitError{Code: 2, Message: "Error: GitHub token is required. Provide via --token or GITHUB_TOKEN env var"}
	}
	if *repo == "" {
		return nil, false, &ExitError{Code: 2, Message: "Error: Repository is required. Provide via --repo or GITHUB_REPOSITORY env var"}
	}
	parsedRepo, err := ParseRepo(*repo)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: "Error: " + err.Error()}
	}

	return &Config{
		Token:    *token,
		Repo:     parsedRepo,
		File:     *file,
		DryRun:   *dryRun,
		APIURL:   *apiURL,
		LogLevel: *logLevel,
	}, false, nil
}

// Run is the whole command: parse, load, then dry-run or create
func Run(ctx context.Context, args []string, getenv func(string) string, out io.Writer) error {
	cfg, help, err := Parse(args, getenv, out)
	if err != nil || help {
		return err
	}

	log, err := logger.NewWithFormat(cfg.LogLevel, "console")
	if err != nil {
		return &ExitError{Code: 1, Message: err.Error()}
	}
	defer log.Sync()

	issues, err := LoadFile(cfg.File)
	if err != nil {
		return &ExitError{Code: 1, Message: "Error: " + err.Error()}
	}
	fmt.Fprintf(out, "Loaded %d issues from %s\n", len(issues), cfg.File)

	if cfg.DryRun {
		DryRun(out, issues)
		return nil
	}

	client := NewClient(ctx, cfg.APIURL, cfg.Token)
	summary := NewSeeder(client, out, log.Logger).Run(ctx, cfg.Repo, issues)
	if !summary.OK() {
		return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d issues failed", len(summary.Failed), summary.Total)}
	}
	return nil
}
