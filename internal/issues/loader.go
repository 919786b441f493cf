package issues

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue is one record of the input file
type Issue struct {
	Title  string   `json:"title" validate:"required"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
}

// Repo identifies a GitHub repository
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepo parses "owner/repo"
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("repository must be in the form OWNER/REPO, got %q", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

var validate = validator.New()

// LoadFile reads and validates the issue records in path
func LoadFile(path string) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var issues []Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	for i := range issues {
		if err := validate.Struct(issues[i]); err != nil {
			return nil, fmt.Errorf("issue %d in %s: title is required", i+1, path)
		}
		if issues[i].Labels == nil {
			issues[i].Labels = []string{}
		}
	}
	return issues, nil
}
