package dto

import (
	"golang-stock-dashboard/internal/entity"
)

// ListStocksParam selects one page of the stock universe. Boards is passed
// through to the data service; a nil set means no board restriction.
type ListStocksParam struct {
	Limit  int
	Offset int
	Boards entity.BoardSet
}

// FilterStocksParam is the multi-day change filter tuple. MaxMktcap is in 亿.
type FilterStocksParam struct {
	Days      int
	MinChange float64
	MaxChange float64
	MaxMktcap float64
	Limit     int
}

// ScanRequest carries the parameters of an ad-hoc strategy scan.
type ScanRequest struct {
	Date      string                `json:"date"`
	Params    entity.StrategyParams `json:"params"`
	Limit     int                   `json:"limit"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// StockListResponse is the paged stock universe payload.
type StockListResponse struct {
	Total  int                  `json:"total"`
	Count  int                  `json:"count"`
	Stocks []entity.StockRecord `json:"stocks"`
}

// DatesResponse lists the available trading days, most recent first.
type DatesResponse struct {
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// MoversResponse is a top gainers/losers ranking for one trading day.
type MoversResponse struct {
	Date      string               `json:"date"`
	Direction string               `json:"direction"`
	Count     int                  `json:"count"`
	Movers    []entity.MoverRecord `json:"movers"`
}

// HistoryResponse is a recent-price sequence for one stock.
type HistoryResponse struct {
	StockCode string        `json:"stock_code"`
	Count     int           `json:"count"`
	Data      []entity.OHLC `json:"data"`
}

// ScanResponse is the outcome of one strategy scan.
type ScanResponse struct {
	Date    string                `json:"date"`
	Params  entity.StrategyParams `json:"params"`
	Count   int                   `json:"count"`
	Results []entity.ScanResult   `json:"results"`
}

// FilteredStocksResponse is the multi-day filter payload.
type FilteredStocksResponse struct {
	Count          int                    `json:"count"`
	FilteredStocks []entity.FilteredStock `json:"filtered_stocks"`
}

// StrategiesResponse lists the strategy definitions together with the scan
// cache's freshness, for "last updated" style affordances.
type StrategiesResponse struct {
	CacheDay   string                      `json:"cache_day"`
	Fresh      bool                        `json:"fresh"`
	Strategies []entity.StrategyDefinition `json:"strategies"`
}
