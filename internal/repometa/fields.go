// Package repometa holds the repository metadata records read from the
// dataset dump, the fixed column mapping and the filter applied to them.
package repometa

// Field maps a key of the source dataset to the column written out.
type Field struct {
	Source string `json:"source"`
	Output string `json:"output"`
}

// Fields is the column mapping in output order. Projection and the CSV header
// both iterate it, so the order here is the order of every row.
var Fields = []Field{
	{Source: "nameWithOwner", Output: "repo"},
	{Source: "stars", Output: "stars"},
	{Source: "forks", Output: "forks"},
	{Source: "isArchived", Output: "is_archived"},
	{Source: "primaryLanguage", Output: "language"},
	{Source: "diskUsageKb", Output: "disk_usage_kb"},
	{Source: "pullRequests", Output: "pull_requests"},
	{Source: "watchers", Output: "watchers"},
	{Source: "createdAt", Output: "created_at"},
	{Source: "pushedAt", Output: "pushed_at"},
	{Source: "license", Output: "license"},
}

// OutputKeys returns the output column names in order.
func OutputKeys() []string {
	keys := make([]string, len(Fields))
	for i, f := range Fields {
		keys[i] = f.Output
	}
	return keys
}
