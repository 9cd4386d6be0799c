package db

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Repository mirrors one exported CSV row, keyed by name_with_owner.
type Repository struct {
	bun.BaseModel `bun:"table:repositories"`

	ID            int64           `bun:"id,pk,autoincrement"`
	NameWithOwner string          `bun:"name_with_owner,notnull,unique"`
	Owner         string          `bun:"owner,notnull"`
	Name          string          `bun:"name,notnull"`
	URL           string          `bun:"url,notnull"`
	Stars         int64           `bun:"stars,notnull"`
	Forks         int64           `bun:"forks,notnull"`
	IsArchived    bool            `bun:"is_archived,notnull"`
	Language      *string         `bun:"language"`
	DiskUsageKB   int64           `bun:"disk_usage_kb,notnull"`
	PullRequests  json.RawMessage `bun:"pull_requests,type:jsonb,nullzero"` // integer or object, nil for null
	Watchers      int64           `bun:"watchers,notnull"`
	CreatedAt     *time.Time      `bun:"created_at"`
	PushedAt      *time.Time      `bun:"pushed_at"`
	License       *string         `bun:"license"`
	LoadedAt      time.Time       `bun:"loaded_at,nullzero,notnull,default:current_timestamp"`
}
