package service

import (
	"context"
	"sync"

	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"
)

// StrategyCacheService owns the day-scoped cache of scan results per
// strategy definition. At most one generation is live at a time: a cache
// populated for day D is discarded and rebuilt, never merged, once the
// current day moves past D.
type StrategyCacheService interface {
	// EnsureFresh populates the cache for today unless the tagged day
	// already matches. A definition whose scan request fails stays absent
	// from the generation and is not retried until Invalidate is called;
	// the low request volume is worth the documented staleness.
	EnsureFresh(ctx context.Context, today string) error
	// Lookup answers "did this stock match this strategy on the cached day"
	// in O(1).
	Lookup(strategyID, stockCode string) (entity.ScanResult, bool)
	// Invalidate clears the day tag so the next EnsureFresh repopulates.
	Invalidate()
	// Day returns the trading day the live generation was populated for, or
	// "" before the first population.
	Day() string
	// Fresh reports whether the live generation matches the given day.
	Fresh(today string) bool
	// MissingDefinitions lists definitions absent from the live generation
	// because their scan failed. Reported once per reconcile batch.
	MissingDefinitions() []string
	// Definitions returns the strategy definitions the cache scans for.
	Definitions() []entity.StrategyDefinition
}

type strategyCacheService struct {
	marketRepo  repository.MarketDataRepository
	log         *logger.Logger
	definitions []entity.StrategyDefinition
	scanLimit   int

	// popMu serializes cache populations; concurrent EnsureFresh calls for
	// the same day coalesce on it instead of racing.
	popMu sync.Mutex

	mu      sync.RWMutex
	day     string
	results map[string]map[string]entity.ScanResult
	missing []string
}

// NewStrategyCacheService creates a cache over the predefined strategy
// definitions.
func NewStrategyCacheService(marketRepo repository.MarketDataRepository, log *logger.Logger, scanLimit int) StrategyCacheService {
	return &strategyCacheService{
		marketRepo:  marketRepo,
		log:         log,
		definitions: entity.PredefinedStrategies(),
		scanLimit:   scanLimit,
		results:     make(map[string]map[string]entity.ScanResult),
	}
}

func (s *strategyCacheService) EnsureFresh(ctx context.Context, today string) error {
	if s.Fresh(today) {
		s.log.DebugContext(ctx, "Using cached strategy data", logger.StringField("day", today))
		return nil
	}

	s.popMu.Lock()
	defer s.popMu.Unlock()

	// A peer may have populated this generation while we waited.
	if s.Fresh(today) {
		s.log.DebugContext(ctx, "Using cached strategy data", logger.StringField("day", today))
		return nil
	}

	s.log.InfoContext(ctx, "Fetching fresh strategy data", logger.StringField("day", today))

	results := make(map[string]map[string]entity.ScanResult, len(s.definitions))
	var missing []string

	// Sequential on purpose: a definition can only be absent because its own
	// request failed, never because of a race with another definition.
	for _, def := range s.definitions {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, scan, err := s.marketRepo.RunStrategyScan(ctx, "", def.Params, s.scanLimit)
		if err != nil {
			s.log.ErrorContext(ctx, "Strategy scan failed",
				logger.StringField("strategy_id", def.ID),
				logger.ErrorField(err),
			)
			missing = append(missing, def.ID)
			continue
		}

		byCode := make(map[string]entity.ScanResult, len(scan))
		for _, res := range scan {
			byCode[res.StockCode] = res
		}
		results[def.ID] = byCode
	}

	s.mu.Lock()
	s.day = today
	s.results = results
	s.missing = missing
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Strategy cache updated",
		logger.StringField("day", today),
		logger.IntField("strategies", len(results)),
		logger.IntField("failed", len(missing)),
	)
	return nil
}

func (s *strategyCacheService) Lookup(strategyID, stockCode string) (entity.ScanResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byCode, ok := s.results[strategyID]
	if !ok {
		return entity.ScanResult{}, false
	}
	res, ok := byCode[stockCode]
	return res, ok
}

func (s *strategyCacheService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = ""
	s.results = make(map[string]map[string]entity.ScanResult)
	s.missing = nil
}

func (s *strategyCacheService) Day() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day
}

func (s *strategyCacheService) Fresh(today string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day != "" && s.day == today
}

func (s *strategyCacheService) MissingDefinitions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.missing...)
}

func (s *strategyCacheService) Definitions() []entity.StrategyDefinition {
	return append([]entity.StrategyDefinition(nil), s.definitions...)
}
