package service

import (
	"sync"

	"golang-stock-dashboard/internal/entity"
)

// CollectionStore holds the stock universe: the current server page and,
// when client-side search is active, the full universe. Collections are
// replaced wholesale on refresh and only mutated by the owning service;
// every read hands out a copy.
type CollectionStore struct {
	mu    sync.RWMutex
	page  []entity.StockRecord
	all   []entity.StockRecord
	total int
}

// NewCollectionStore creates an empty store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{}
}

// ReplacePage swaps in a freshly fetched universe page.
func (s *CollectionStore) ReplacePage(stocks []entity.StockRecord, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = append([]entity.StockRecord(nil), stocks...)
	s.total = total
}

// ReplaceAll swaps in the full universe used for client-side search.
func (s *CollectionStore) ReplaceAll(stocks []entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append([]entity.StockRecord(nil), stocks...)
}

// Page returns a copy of the current page and the universe total.
func (s *CollectionStore) Page() ([]entity.StockRecord, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.StockRecord(nil), s.page...), s.total
}

// All returns a copy of the full universe, which may be empty if search has
// not been used since the last invalidation.
func (s *CollectionStore) All() []entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.StockRecord(nil), s.all...)
}

// HasAll reports whether the full universe is loaded.
func (s *CollectionStore) HasAll() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all) > 0
}

// MergeTradingFields merges a daily snapshot into every copy of the stock
// held by the store.
func (s *CollectionStore) MergeTradingFields(code string, snap entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.page {
		if s.page[i].Symbol == code {
			s.page[i].MergeTradingFields(snap)
		}
	}
	for i := range s.all {
		if s.all[i].Symbol == code {
			s.all[i].MergeTradingFields(snap)
		}
	}
}

// InvalidateAll drops the full-universe copy. Called when the board filter
// changes so the next search reloads under the new filter.
func (s *CollectionStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
}
