package entity

// StrategyMatch records that a stock matched one strategy definition on the
// cached trading day, with the supporting scan metrics.
type StrategyMatch struct {
	StrategyID  string     `json:"strategy_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Data        ScanResult `json:"data"`
}

// ListEntry is one member of the watchlist or warning-list: the stock record
// plus its matched-strategy annotations. Annotations stay empty until a
// reconciliation pass runs and survive unrelated membership churn.
type ListEntry struct {
	StockRecord
	MatchedStrategies []StrategyMatch `json:"matched_strategies"`
}
