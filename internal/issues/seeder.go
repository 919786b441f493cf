package issues

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	rule          = "================================================================================"
	previewLength = 100
)

// Summary is the outcome of a seeding run
type Summary struct {
	Total   int
	Created []CreatedIssue
	Failed  []string
}

// OK reports whether every issue was created
func (s Summary) OK() bool {
	return len(s.Failed) == 0
}

// Seeder creates issues one by one and reports progress to out
type Seeder struct {
	creator Creator
	out     io.Writer
	logger  *zap.Logger
}

func NewSeeder(creator Creator, out io.Writer, logger *zap.Logger) *Seeder {
	return &Seeder{creator: creator, out: out, logger: logger}
}

// DryRun prints the issues that would be created without calling the API
func DryRun(out io.Writer, issues []Issue) {
	fmt.Fprintln(out, "\nDRY RUN - Issues that would be created:")
	fmt.Fprintln(out, rule)
	for i, issue := range issues {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, issue.Title)
		fmt.Fprintf(out, "   Labels: %s\n", strings.Join(issue.Labels, ", "))
		fmt.Fprintf(out, "   Body preview: %s...\n", preview(issue.Body))
	}
	fmt.Fprintln(out, "\n"+rule)
	fmt.Fprintln(out, "\nTo create these issues, run without --dry-run flag")
}

// Run creates every issue in order. A failure is recorded and the next
// issue is still attempted.
func (s *Seeder) Run(ctx context.Context, repo Repo, issues []Issue) Summary {
	summary := Summary{Total: len(issues)}

	fmt.Fprintf(s.out, "\nCreating issues in repository: %s\n", repo)
	fmt.Fprintln(s.out, rule)

	for i, issue := range issues {
		fmt.Fprintf(s.out, "\n[%d/%d] Creating: %s\n", i+1, len(issues), issue.Title)

		created, err := s.creator.CreateIssue(ctx, repo, issue)
		if err != nil {
			fields := []zap.Field{zap.String("title", issue.Title), zap.Error(err)}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				fields = append(fields, zap.Int("status", apiErr.StatusCode))
			}
			s.logger.Error("Failed to create issue", fields...)

			summary.Failed = append(summary.Failed, issue.Title)
			fmt.Fprintln(s.out, "✗ Failed to create issue")

			if ctx.Err() != nil {
				for _, rest := range issues[i+1:] {
					summary.Failed = append(summary.Failed, rest.Title)
				}
				break
			}
			continue
		}

		s.logger.Debug("Created issue", zap.Int("number", created.Number), zap.String("url", created.HTMLURL))
		summary.Created = append(summary.Created, *created)
		fmt.Fprintf(s.out, "✓ Created: %s\n", created.HTMLURL)
	}

	s.printSummary(summary)
	return summary
}

func (s *Seeder) printSummary(summary Summary) {
	fmt.Fprintln(s.out, "\n"+rule)
	fmt.Fprintln(s.out, "\nSummary:")
	fmt.Fprintf(s.out, "  Total issues: %d\n", summary.Total)
	fmt.Fprintf(s.out, "  Successfully created: %d\n", len(summary.Created))
	fmt.Fprintf(s.out, "  Failed: %d\n", len(summary.Failed))

	if len(summary.Created) > 0 {
		fmt.Fprintln(s.out, "\n✓ Created issues:")
		for _, issue := range summary.Created {
			fmt.Fprintf(s.out, "  - #%d: %s\n", issue.Number, issue.Title)
			fmt.Fprintf(s.out, "    %s\n", issue.HTMLURL)
		}
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintln(s.out, "\n✗ Failed issues:")
		for _, title := range summary.Failed {
			fmt.Fprintf(s.out, "  - %s\n", title)
		}
		return
	}

	fmt.Fprintln(s.out, "\n✓ All issues created successfully!")
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) > previewLength {
		return string(runes[:previewLength])
	}
	return body
}
