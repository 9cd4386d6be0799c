package db

import (
	"encoding/json"
	"fmt"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/tidwall/gjson"

	"github.com/roivaz/repometa/internal/repometa"
)

const githubBaseURL = "https://github.com/"

// FromOutputRecord converts an exported record into its table row. Unlike the
// CSV, the table is typed, so values must have the JSON type of their column.
func FromOutputRecord(rec repometa.OutputRecord) (Repository, error) {
	var (
		row Repository
		err error
	)
	c := columnReader{rec: rec}

	row.NameWithOwner = c.str("repo")
	row.Stars = c.integer("stars")
	row.Forks = c.integer("forks")
	row.IsArchived = c.boolean("is_archived")
	row.Language = c.optStr("language")
	row.DiskUsageKB = c.integer("disk_usage_kb")
	row.PullRequests = c.rawJSON("pull_requests")
	row.Watchers = c.integer("watchers")
	row.CreatedAt = c.optTime("created_at")
	row.PushedAt = c.optTime("pushed_at")
	row.License = c.optStr("license")
	if c.err != nil {
		return Repository{}, fmt.Errorf("repository %q: %w", row.NameWithOwner, c.err)
	}

	row.Owner, row.Name, row.URL, err = splitNameWithOwner(row.NameWithOwner)
	if err != nil {
		return Repository{}, err
	}
	return row, nil
}

func splitNameWithOwner(nameWithOwner string) (owner, name, url string, err error) {
	info, err := vcsurl.Parse(githubBaseURL + nameWithOwner)
	if err != nil {
		return "", "", "", fmt.Errorf("parse repository name %q: %w", nameWithOwner, err)
	}
	if info.Username == "" || info.Name == "" {
		return "", "", "", fmt.Errorf("parse repository name %q: want owner/name", nameWithOwner)
	}
	return info.Username, info.Name, fmt.Sprintf("https://%s/%s/%s", info.Host, info.Username, info.Name), nil
}

// columnReader reads typed values out of a record, keeping the first error.
type columnReader struct {
	rec repometa.OutputRecord
	err error
}

func (c *columnReader) get(key string, want string, ok func(gjson.Result) bool) (gjson.Result, bool) {
	if c.err != nil {
		return gjson.Result{}, false
	}
	v, found := c.rec.Get(key)
	if !found {
		c.err = fmt.Errorf("column %q: %w", key, repometa.ErrKeyMissing)
		return gjson.Result{}, false
	}
	if !ok(v) {
		c.err = fmt.Errorf("column %q is %s, want %s: %w", key, v.Type, want, repometa.ErrFieldType)
		return gjson.Result{}, false
	}
	return v, true
}

func (c *columnReader) str(key string) string {
	v, _ := c.get(key, "string", isType(gjson.String))
	return v.Str
}

func (c *columnReader) optStr(key string) *string {
	v, ok := c.get(key, "string or null", isType(gjson.String, gjson.Null))
	if !ok || v.Type == gjson.Null {
		return nil
	}
	s := v.Str
	return &s
}

func (c *columnReader) integer(key string) int64 {
	v, _ := c.get(key, "integer", isType(gjson.Number))
	return v.Int()
}

func (c *columnReader) boolean(key string) bool {
	v, _ := c.get(key, "boolean", isType(gjson.True, gjson.False))
	return v.Bool()
}

// rawJSON returns the value's JSON text so jsonb stores it as is. Null and
// missing values yield nil, which is written as SQL NULL.
func (c *columnReader) rawJSON(key string) json.RawMessage {
	v, ok := c.get(key, "JSON value", func(gjson.Result) bool { return true })
	if !ok || v.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(v.Raw)
}

func (c *columnReader) optTime(key string) *time.Time {
	v, ok := c.get(key, "RFC 3339 timestamp or null", isType(gjson.String, gjson.Null))
	if !ok || v.Type == gjson.Null || v.Str == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.Str)
	if err != nil {
		c.err = fmt.Errorf("column %q: %w", key, err)
		return nil
	}
	return &t
}

func isType(types ...gjson.Type) func(gjson.Result) bool {
	return func(v gjson.Result) bool {
		for _, t := range types {
			if v.Type == t {
				return true
			}
		}
		return false
	}
}
