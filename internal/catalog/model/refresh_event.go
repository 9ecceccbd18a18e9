package model

import "time"

const CatalogRefreshedEvent = "catalog.refreshed"

// CatalogRefreshEvent announces that the synced catalog changed and
// downstream caches should be dropped.
type CatalogRefreshEvent struct {
	EventType string    `json:"event_type"`
	Resources []string  `json:"resources"`
	SyncedAt  time.Time `json:"synced_at"`
}
