package service

import (
	"context"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/utils"
)

// universeLimit is how much of the universe is pulled for client-side search
// and tag views, mirroring the data service's page-size ceiling.
const universeLimit = 10000

// StockQuery selects a derived view of the stock universe.
type StockQuery struct {
	Search    string
	Boards    *entity.BoardSet // nil means no board restriction
	TagIDs    []int64
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// StockService composes the collection store, the view helpers and the tag
// union into the read-only surface the rendering layer consumes.
type StockService interface {
	ListStocks(ctx context.Context, q StockQuery) (*dto.StockListResponse, error)
	GetStats(ctx context.Context, date string) (*entity.MarketStats, error)
	GetAvailableDates(ctx context.Context, limit int) ([]string, error)
	GetTopMovers(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error)
	GetHistory(ctx context.Context, code string, limit int) ([]entity.OHLC, error)
	// RunAdHocScan runs the user-adjustable strategy tuple directly against
	// the scan service, bypassing the day cache.
	RunAdHocScan(ctx context.Context, date string, params entity.StrategyParams, limit int, sortBy, sortOrder string) (*dto.ScanResponse, error)
	FilterStocks(ctx context.Context, param dto.FilterStocksParam, boards *entity.BoardSet, sortBy, sortOrder string) (*dto.FilteredStocksResponse, error)
	// Strategies reports the shipped definitions plus the scan cache
	// freshness for "last updated" affordances.
	Strategies() dto.StrategiesResponse
}

type stockService struct {
	marketRepo repository.MarketDataRepository
	store      *CollectionStore
	tags       TagService
	cache      StrategyCacheService
	log        *logger.Logger
	scanLimit  int
}

// NewStockService creates the stock read service.
func NewStockService(marketRepo repository.MarketDataRepository, store *CollectionStore, tags TagService, cache StrategyCacheService, log *logger.Logger, scanLimit int) StockService {
	return &stockService{
		marketRepo: marketRepo,
		store:      store,
		tags:       tags,
		cache:      cache,
		log:        log,
		scanLimit:  scanLimit,
	}
}

func (s *stockService) ListStocks(ctx context.Context, q StockQuery) (*dto.StockListResponse, error) {
	// Tag filter active: the view source switches from the paged universe
	// to the union of the selected tags' members.
	if len(q.TagIDs) > 0 {
		stocks, err := s.tags.UnionMembers(ctx, q.TagIDs)
		if err != nil {
			return nil, err
		}
		stocks = s.applyView(stocks, q)
		return &dto.StockListResponse{Total: len(stocks), Count: len(stocks), Stocks: stocks}, nil
	}

	// Search active: filter the full universe client-side. The universe is
	// fetched unfiltered; the board filter is applied locally so the cached
	// copy stays valid when the enabled set changes.
	if q.Search != "" {
		if !s.store.HasAll() {
			resp, err := s.marketRepo.GetStocks(ctx, dto.ListStocksParam{Limit: universeLimit})
			if err != nil {
				return nil, err
			}
			s.store.ReplaceAll(resp.Stocks)
		}
		stocks := s.applyView(s.store.All(), q)
		return &dto.StockListResponse{Total: len(stocks), Count: len(stocks), Stocks: stocks}, nil
	}

	// Default: one server page.
	page, pageSize := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	resp, err := s.marketRepo.GetStocks(ctx, dto.ListStocksParam{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Boards: boardsOrNil(q.Boards),
	})
	if err != nil {
		return nil, err
	}
	s.store.ReplacePage(resp.Stocks, resp.Total)

	stocks := s.applyView(resp.Stocks, q)
	return &dto.StockListResponse{Total: resp.Total, Count: len(stocks), Stocks: stocks}, nil
}

// applyView runs the synchronous view pipeline: search filter, fail-closed
// board filter, sort.
func (s *stockService) applyView(stocks []entity.StockRecord, q StockQuery) []entity.StockRecord {
	stocks = FilterStocksBySearch(stocks, q.Search)
	if q.Boards != nil {
		stocks = FilterStocksByBoard(stocks, *q.Boards)
	}
	return SortStocks(stocks, q.SortBy, q.SortOrder)
}

func (s *stockService) GetStats(ctx context.Context, date string) (*entity.MarketStats, error) {
	return s.marketRepo.GetStats(ctx, date)
}

func (s *stockService) GetAvailableDates(ctx context.Context, limit int) ([]string, error) {
	return s.marketRepo.GetAvailableDates(ctx, limit)
}

func (s *stockService) GetTopMovers(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error) {
	return s.marketRepo.GetTopMovers(ctx, direction, date, limit)
}

func (s *stockService) GetHistory(ctx context.Context, code string, limit int) ([]entity.OHLC, error) {
	return s.marketRepo.GetHistory(ctx, code, limit)
}

func (s *stockService) RunAdHocScan(ctx context.Context, date string, params entity.StrategyParams, limit int, sortBy, sortOrder string) (*dto.ScanResponse, error) {
	if limit <= 0 || limit > s.scanLimit {
		limit = s.scanLimit
	}
	resolvedDate, results, err := s.marketRepo.RunStrategyScan(ctx, date, params, limit)
	if err != nil {
		return nil, err
	}
	results = SortScanResults(results, sortBy, sortOrder)
	return &dto.ScanResponse{
		Date:    resolvedDate,
		Params:  params,
		Count:   len(results),
		Results: results,
	}, nil
}

func (s *stockService) FilterStocks(ctx context.Context, param dto.FilterStocksParam, boards *entity.BoardSet, sortBy, sortOrder string) (*dto.FilteredStocksResponse, error) {
	stocks, err := s.marketRepo.GetFilteredStocks(ctx, param)
	if err != nil {
		return nil, err
	}
	if boards != nil {
		stocks = FilterFilteredStocksByBoard(stocks, *boards)
	}
	stocks = SortFilteredStocks(stocks, sortBy, sortOrder)
	return &dto.FilteredStocksResponse{Count: len(stocks), FilteredStocks: stocks}, nil
}

func (s *stockService) Strategies() dto.StrategiesResponse {
	return dto.StrategiesResponse{
		CacheDay:   s.cache.Day(),
		Fresh:      s.cache.Fresh(utils.TradingDayToday()),
		Strategies: s.cache.Definitions(),
	}
}

func boardsOrNil(b *entity.BoardSet) entity.BoardSet {
	if b == nil {
		return nil
	}
	return *b
}
