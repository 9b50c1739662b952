package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/notifier"
	"golang-stock-dashboard/pkg/utils"
)

// ErrAlreadyInList is returned when a stock is added to a list it is already
// a member of. The rejection is local; no remote call is made.
var ErrAlreadyInList = errors.New("stock already in list")

// ListService manages one user-curated stock list (watchlist or
// warning-list): membership synchronized with the remote list store, trading
// field enrichment, and reconciliation of match annotations against the
// strategy scan cache.
type ListService interface {
	// List loads the list members with their trading fields. Previously
	// computed match annotations are preserved by stock identifier.
	List(ctx context.Context) ([]entity.ListEntry, error)
	// Add appends a stock, remote store first. Duplicates are rejected
	// locally with ErrAlreadyInList.
	Add(ctx context.Context, code string) error
	// Remove deletes a stock, remote store first. Removing an absent stock
	// is a no-op.
	Remove(ctx context.Context, code string) error
	// Contains reports local membership.
	Contains(ctx context.Context, code string) (bool, error)
	// Reconcile re-derives every entry's matched strategies from the scan
	// cache, populating the cache first if stale. Explicitly caller
	// triggered; membership changes and view reads never invoke it.
	Reconcile(ctx context.Context) (*dto.ReconcileResponse, error)
	// Refresh invalidates the scan cache and reconciles, guaranteeing a
	// full repopulation even within the same trading day.
	Refresh(ctx context.Context) (*dto.ReconcileResponse, error)
}

type listService struct {
	kind       string
	marketRepo repository.MarketDataRepository
	cache      StrategyCacheService
	notify     notifier.Notifier
	log        *logger.Logger

	mu      sync.Mutex
	synced  bool
	codes   []string
	entries []entity.ListEntry
}

// NewListService creates a list service for the given list kind
// (common.ListKindWatch or common.ListKindWarn).
func NewListService(kind string, marketRepo repository.MarketDataRepository, cache StrategyCacheService, notify notifier.Notifier, log *logger.Logger) ListService {
	return &listService{
		kind:       kind,
		marketRepo: marketRepo,
		cache:      cache,
		notify:     notify,
		log:        log,
	}
}

// syncCodes loads membership from the remote list store once. Must be called
// with the mutex held.
func (s *listService) syncCodes(ctx context.Context) error {
	if s.synced {
		return nil
	}
	codes, err := s.marketRepo.GetListCodes(ctx, s.kind)
	if err != nil {
		return err
	}
	s.codes = codes
	s.synced = true
	return nil
}

func (s *listService) containsLocked(code string) bool {
	for _, c := range s.codes {
		if c == code {
			return true
		}
	}
	return false
}

func (s *listService) Contains(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncCodes(ctx); err != nil {
		return false, err
	}
	return s.containsLocked(code), nil
}

func (s *listService) Add(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncCodes(ctx); err != nil {
		return err
	}
	if s.containsLocked(code) {
		return ErrAlreadyInList
	}

	// Remote first: local membership only changes after the list store
	// confirmed, so a failure leaves both sides consistent.
	if err := s.marketRepo.AddListCode(ctx, s.kind, code); err != nil {
		return err
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *listService) Remove(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncCodes(ctx); err != nil {
		return err
	}
	if !s.containsLocked(code) {
		return nil
	}

	if err := s.marketRepo.RemoveListCode(ctx, s.kind, code); err != nil {
		return err
	}
	for i, c := range s.codes {
		if c == code {
			s.codes = append(s.codes[:i], s.codes[i+1:]...)
			break
		}
	}
	for i := range s.entries {
		if s.entries[i].Symbol == code {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (s *listService) List(ctx context.Context) ([]entity.ListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return copyEntries(s.entries), nil
}

// load rebuilds the entries from the current membership. Must be called with
// the mutex held.
func (s *listService) load(ctx context.Context) error {
	if err := s.syncCodes(ctx); err != nil {
		return err
	}
	if len(s.codes) == 0 {
		s.entries = nil
		return nil
	}

	records, err := s.marketRepo.GetStocksByCodes(ctx, s.codes)
	if err != nil {
		return err
	}

	// Known matches survive membership churn: keep them keyed by stock so
	// adding or removing one stock never resets another's annotations.
	existing := make(map[string][]entity.StrategyMatch, len(s.entries))
	for _, e := range s.entries {
		if len(e.MatchedStrategies) > 0 {
			existing[e.Symbol] = e.MatchedStrategies
		}
	}

	entries := make([]entity.ListEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entity.ListEntry{
			StockRecord:       rec,
			MatchedStrategies: existing[rec.Symbol],
		})
	}

	// One snapshot request per member, sequential; a failing member is
	// skipped and the rest of the batch proceeds.
	for i := range entries {
		snap, err := s.marketRepo.GetTradingSnapshot(ctx, entries[i].Symbol)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to load trading snapshot",
				logger.StringField("list", s.kind),
				logger.StringField("stock_code", entries[i].Symbol),
				logger.ErrorField(err),
			)
			continue
		}
		entries[i].MergeTradingFields(*snap)
	}

	s.entries = entries
	return nil
}

func (s *listService) Reconcile(ctx context.Context) (*dto.ReconcileResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		if err := s.load(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.cache.EnsureFresh(ctx, utils.TradingDayToday()); err != nil {
		return nil, err
	}

	definitions := s.cache.Definitions()
	for i := range s.entries {
		var matches []entity.StrategyMatch
		for _, def := range definitions {
			if res, ok := s.cache.Lookup(def.ID, s.entries[i].Symbol); ok {
				matches = append(matches, entity.StrategyMatch{
					StrategyID:  def.ID,
					Name:        def.Name,
					Description: def.Description,
					Data:        res,
				})
			}
		}
		s.entries[i].MatchedStrategies = matches
	}

	missing := s.cache.MissingDefinitions()
	if len(missing) > 0 {
		// One batch-level notification; a failed definition is "no match
		// found" for every stock, never a per-stock error.
		_ = s.notify.Notify(notifier.LevelError,
			"strategy scan incomplete for: "+strings.Join(missing, ", "))
	}

	return &dto.ReconcileResponse{
		CacheDay:         s.cache.Day(),
		FailedStrategies: missing,
		Count:            len(s.entries),
		Entries:          copyEntries(s.entries),
	}, nil
}

func (s *listService) Refresh(ctx context.Context) (*dto.ReconcileResponse, error) {
	s.cache.Invalidate()
	return s.Reconcile(ctx)
}

func copyEntries(entries []entity.ListEntry) []entity.ListEntry {
	out := make([]entity.ListEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		out[i].MatchedStrategies = append([]entity.StrategyMatch(nil), e.MatchedStrategies...)
	}
	return out
}
