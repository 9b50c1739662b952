package service

import (
	"context"
	"errors"
	"testing"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/notifier"
)

// fakeMarketRepo implements repository.MarketDataRepository with overridable
// funcs. Unset funcs return errNotStubbed so a test fails loudly when a code
// path it did not expect is exercised.
var errNotStubbed = errors.New("not stubbed")

type fakeMarketRepo struct {
	getStocksFn          func(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResponse, error)
	getStocksByCodesFn   func(ctx context.Context, codes []string) ([]entity.StockRecord, error)
	getTradingSnapshotFn func(ctx context.Context, code string) (*entity.StockRecord, error)
	getStatsFn           func(ctx context.Context, date string) (*entity.MarketStats, error)
	getAvailableDatesFn  func(ctx context.Context, limit int) ([]string, error)
	getTopMoversFn       func(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error)
	getHistoryFn         func(ctx context.Context, code string, limit int) ([]entity.OHLC, error)
	runStrategyScanFn    func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error)
	getFilteredStocksFn  func(ctx context.Context, param dto.FilterStocksParam) ([]entity.FilteredStock, error)
	getTagsFn            func(ctx context.Context) ([]entity.Tag, error)
	createTagFn          func(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error)
	getTagStocksFn       func(ctx context.Context, tagID int64) ([]entity.StockRecord, error)
	getStockTagsFn       func(ctx context.Context, code string) ([]entity.Tag, error)
	tagStockFn           func(ctx context.Context, code string, tagID int64) error
	untagStockFn         func(ctx context.Context, code string, tagID int64) error
	getListCodesFn       func(ctx context.Context, kind string) ([]string, error)
	addListCodeFn        func(ctx context.Context, kind, code string) error
	removeListCodeFn     func(ctx context.Context, kind, code string) error
}

func (f *fakeMarketRepo) GetStocks(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResponse, error) {
	if f.getStocksFn == nil {
		return nil, errNotStubbed
	}
	return f.getStocksFn(ctx, param)
}

func (f *fakeMarketRepo) GetStocksByCodes(ctx context.Context, codes []string) ([]entity.StockRecord, error) {
	if f.getStocksByCodesFn == nil {
		return nil, errNotStubbed
	}
	return f.getStocksByCodesFn(ctx, codes)
}

func (f *fakeMarketRepo) GetTradingSnapshot(ctx context.Context, code string) (*entity.StockRecord, error) {
	if f.getTradingSnapshotFn == nil {
		return nil, errNotStubbed
	}
	return f.getTradingSnapshotFn(ctx, code)
}

func (f *fakeMarketRepo) GetStats(ctx context.Context, date string) (*entity.MarketStats, error) {
	if f.getStatsFn == nil {
		return nil, errNotStubbed
	}
	return f.getStatsFn(ctx, date)
}

func (f *fakeMarketRepo) GetAvailableDates(ctx context.Context, limit int) ([]string, error) {
	if f.getAvailableDatesFn == nil {
		return nil, errNotStubbed
	}
	return f.getAvailableDatesFn(ctx, limit)
}

func (f *fakeMarketRepo) GetTopMovers(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error) {
	if f.getTopMoversFn == nil {
		return nil, errNotStubbed
	}
	return f.getTopMoversFn(ctx, direction, date, limit)
}

func (f *fakeMarketRepo) GetHistory(ctx context.Context, code string, limit int) ([]entity.OHLC, error) {
	if f.getHistoryFn == nil {
		return nil, errNotStubbed
	}
	return f.getHistoryFn(ctx, code, limit)
}

func (f *fakeMarketRepo) RunStrategyScan(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
	if f.runStrategyScanFn == nil {
		return "", nil, errNotStubbed
	}
	return f.runStrategyScanFn(ctx, date, params, limit)
}

func (f *fakeMarketRepo) GetFilteredStocks(ctx context.Context, param dto.FilterStocksParam) ([]entity.FilteredStock, error) {
	if f.getFilteredStocksFn == nil {
		return nil, errNotStubbed
	}
	return f.getFilteredStocksFn(ctx, param)
}

func (f *fakeMarketRepo) GetTags(ctx context.Context) ([]entity.Tag, error) {
	if f.getTagsFn == nil {
		return nil, errNotStubbed
	}
	return f.getTagsFn(ctx)
}

func (f *fakeMarketRepo) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error) {
	if f.createTagFn == nil {
		return nil, errNotStubbed
	}
	return f.createTagFn(ctx, req)
}

func (f *fakeMarketRepo) GetTagStocks(ctx context.Context, tagID int64) ([]entity.StockRecord, error) {
	if f.getTagStocksFn == nil {
		return nil, errNotStubbed
	}
	return f.getTagStocksFn(ctx, tagID)
}

func (f *fakeMarketRepo) GetStockTags(ctx context.Context, code string) ([]entity.Tag, error) {
	if f.getStockTagsFn == nil {
		return nil, errNotStubbed
	}
	return f.getStockTagsFn(ctx, code)
}

func (f *fakeMarketRepo) TagStock(ctx context.Context, code string, tagID int64) error {
	if f.tagStockFn == nil {
		return errNotStubbed
	}
	return f.tagStockFn(ctx, code, tagID)
}

func (f *fakeMarketRepo) UntagStock(ctx context.Context, code string, tagID int64) error {
	if f.untagStockFn == nil {
		return errNotStubbed
	}
	return f.untagStockFn(ctx, code, tagID)
}

func (f *fakeMarketRepo) GetListCodes(ctx context.Context, kind string) ([]string, error) {
	if f.getListCodesFn == nil {
		return nil, errNotStubbed
	}
	return f.getListCodesFn(ctx, kind)
}

func (f *fakeMarketRepo) AddListCode(ctx context.Context, kind, code string) error {
	if f.addListCodeFn == nil {
		return errNotStubbed
	}
	return f.addListCodeFn(ctx, kind, code)
}

func (f *fakeMarketRepo) RemoveListCode(ctx context.Context, kind, code string) error {
	if f.removeListCodeFn == nil {
		return errNotStubbed
	}
	return f.removeListCodeFn(ctx, kind, code)
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return log
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(level notifier.Level, text string) error {
	n.messages = append(n.messages, string(level)+": "+text)
	return nil
}
