// Package issues bulk-creates GitHub issues from a JSON file.
//
// The file holds an array of {"title", "body", "labels"} records. Each record
// becomes one POST /repos/{owner}/{repo}/issues call; a failed record is
// reported and the rest are still attempted.
package issues
