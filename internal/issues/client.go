package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com"

// CreatedIssue is the part of GitHub's response the seeder reports
type CreatedIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

// APIError is returned when GitHub answers anything but 201 Created
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API returned %d: %s", e.StatusCode, e.Body)
}

// Creator creates one issue
type Creator interface {
	CreateIssue(ctx context.Context, repo Repo, issue Issue) (*CreatedIssue, error)
}

// Client talks to the GitHub issues API with a bearer token
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client authenticating every request with token
func NewClient(ctx context.Context, baseURL, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 30 * time.Second

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type createIssueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// CreateIssue posts issue to repo
func (c *Client) CreateIssue(ctx context.Context, repo Repo, issue Issue) (*CreatedIssue, error) {
	endpoint, err := url.JoinPath(c.baseURL, "repos", repo.Owner, repo.Name, "issues")
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", c.baseURL, err)
	}

	payload, err := json.Marshal(createIssueRequest{Title: issue.Title, Body: issue.Body, Labels: issue.Labels})
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call GitHub API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var created CreatedIssue
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if created.Title == "" {
		created.Title = issue.Title
	}
	return &created, nil
}
