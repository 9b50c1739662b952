package service

import (
	"sort"
	"strings"

	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/common"
)

// The view helpers are pure: they copy their input, never mutate it, and
// produce the same output sequence for the same input. Equal sort keys fall
// back to the stock identifier so re-renders are deterministic.

// FilterStocksBySearch keeps records whose identifier, display name or
// phonetic key contains the query, case-insensitively. A missing phonetic key
// only fails that one field.
func FilterStocksBySearch(src []entity.StockRecord, query string) []entity.StockRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]entity.StockRecord(nil), src...)
	}

	out := make([]entity.StockRecord, 0, len(src))
	for _, s := range src {
		if strings.Contains(strings.ToLower(s.Symbol), query) ||
			strings.Contains(strings.ToLower(s.Name), query) ||
			(s.Pinyin != "" && strings.Contains(strings.ToLower(s.Pinyin), query)) {
			out = append(out, s)
		}
	}
	return out
}

// FilterStocksByBoard keeps records classified into an enabled category.
// Unclassified codes are always dropped; an empty enabled set yields an
// empty view.
func FilterStocksByBoard(src []entity.StockRecord, enabled entity.BoardSet) []entity.StockRecord {
	out := make([]entity.StockRecord, 0, len(src))
	for _, s := range src {
		if enabled.Contains(entity.ClassifyBoard(s.Symbol)) {
			out = append(out, s)
		}
	}
	return out
}

// SortStocks orders records by one numeric trading field. Missing values
// compare as 0. An empty key returns an unsorted copy.
func SortStocks(src []entity.StockRecord, key, order string) []entity.StockRecord {
	out := append([]entity.StockRecord(nil), src...)
	if key == "" {
		return out
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NumericField(key), out[j].NumericField(key)
		if a == b {
			return out[i].Symbol < out[j].Symbol
		}
		if order == common.SortOrderAsc {
			return a < b
		}
		return a > b
	})
	return out
}

// FilterFilteredStocksByBoard applies the board-enable set to multi-day
// filter results.
func FilterFilteredStocksByBoard(src []entity.FilteredStock, enabled entity.BoardSet) []entity.FilteredStock {
	out := make([]entity.FilteredStock, 0, len(src))
	for _, s := range src {
		if enabled.Contains(entity.ClassifyBoard(s.StockCode)) {
			out = append(out, s)
		}
	}
	return out
}

// SortFilteredStocks orders multi-day filter results by one numeric key.
func SortFilteredStocks(src []entity.FilteredStock, key, order string) []entity.FilteredStock {
	out := append([]entity.FilteredStock(nil), src...)
	if key == "" {
		return out
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NumericField(key), out[j].NumericField(key)
		if a == b {
			return out[i].StockCode < out[j].StockCode
		}
		if order == common.SortOrderAsc {
			return a < b
		}
		return a > b
	})
	return out
}

// SortScanResults orders scan results by one numeric key.
func SortScanResults(src []entity.ScanResult, key, order string) []entity.ScanResult {
	out := append([]entity.ScanResult(nil), src...)
	if key == "" {
		return out
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NumericField(key), out[j].NumericField(key)
		if a == b {
			return out[i].StockCode < out[j].StockCode
		}
		if order == common.SortOrderAsc {
			return a < b
		}
		return a > b
	})
	return out
}
