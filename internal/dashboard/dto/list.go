package dto

import (
	"golang-stock-dashboard/internal/entity"
)

// ListResponse is the watchlist/warning-list payload with match annotations.
type ListResponse struct {
	Count   int                `json:"count"`
	Entries []entity.ListEntry `json:"entries"`
}

// ReconcileResponse is the outcome of a reconciliation pass. FailedStrategies
// names the definitions that contributed no matches this cycle because their
// scan request failed; it is reported once per batch.
type ReconcileResponse struct {
	CacheDay         string             `json:"cache_day"`
	FailedStrategies []string           `json:"failed_strategies,omitempty"`
	Count            int                `json:"count"`
	Entries          []entity.ListEntry `json:"entries"`
}
