package service

import (
	"context"
	"errors"
	"testing"

	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listFixture struct {
	repo     *fakeMarketRepo
	cache    StrategyCacheService
	notify   *recordingNotifier
	svc      ListService
	remote   []string
	adds     []string
	removals []string
	scans    int
}

// newListFixture builds a watchlist service over an in-memory remote list
// store and a scan service whose volume_surge strategy matches 600519.
func newListFixture(t *testing.T, initial []string) *listFixture {
	t.Helper()
	f := &listFixture{remote: append([]string(nil), initial...), notify: &recordingNotifier{}}

	f.repo = &fakeMarketRepo{
		getListCodesFn: func(ctx context.Context, kind string) ([]string, error) {
			require.Equal(t, common.ListKindWatch, kind)
			return append([]string(nil), f.remote...), nil
		},
		addListCodeFn: func(ctx context.Context, kind, code string) error {
			f.adds = append(f.adds, code)
			f.remote = append(f.remote, code)
			return nil
		},
		removeListCodeFn: func(ctx context.Context, kind, code string) error {
			f.removals = append(f.removals, code)
			for i, c := range f.remote {
				if c == code {
					f.remote = append(f.remote[:i], f.remote[i+1:]...)
					break
				}
			}
			return nil
		},
		getStocksByCodesFn: func(ctx context.Context, codes []string) ([]entity.StockRecord, error) {
			records := make([]entity.StockRecord, 0, len(codes))
			for _, c := range codes {
				records = append(records, entity.StockRecord{TsCode: c + ".SH", Symbol: c, Name: "股票" + c})
			}
			return records, nil
		},
		getTradingSnapshotFn: func(ctx context.Context, code string) (*entity.StockRecord, error) {
			return &entity.StockRecord{
				Symbol:        code,
				Trade:         utils.ToPointer(12.3),
				ChangePercent: utils.ToPointer(6.0),
			}, nil
		},
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			f.scans++
			// Only the volume_surge tuple (2.0 / 5.0 / 5.0 / no cap)
			// produces a match: volume ratio 2.1, change acceleration 6.0,
			// turnover 5.5 all clear its thresholds.
			if params != (entity.StrategyParams{VolumeMultiplier: 2.0, MinChangeIncrease: 5.0, MinTurnover: 5.0}) {
				return date, nil, nil
			}
			return date, []entity.ScanResult{{
				StockCode:     "600519",
				ChangePercent: 6.5,
				PrevChange:    0.5,
				VolumeRatio:   2.1,
				TurnoverRatio: 5.5,
			}}, nil
		},
	}
	f.cache = NewStrategyCacheService(f.repo, newTestLogger(t), 1000)
	f.svc = NewListService(common.ListKindWatch, f.repo, f.cache, f.notify, newTestLogger(t))
	return f
}

func TestListAddDuplicateRejectedLocally(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	err := f.svc.Add(context.Background(), "600519")
	require.ErrorIs(t, err, ErrAlreadyInList)
	assert.Empty(t, f.adds, "a duplicate add must not reach the remote store")

	require.NoError(t, f.svc.Add(context.Background(), "300750"))
	assert.Equal(t, []string{"300750"}, f.adds)
}

func TestListAddRemoteFailureKeepsMembership(t *testing.T) {
	f := newListFixture(t, nil)
	remoteErr := errors.New("list store down")
	f.repo.addListCodeFn = func(ctx context.Context, kind, code string) error {
		return remoteErr
	}

	require.ErrorIs(t, f.svc.Add(context.Background(), "600519"), remoteErr)

	ok, err := f.svc.Contains(context.Background(), "600519")
	require.NoError(t, err)
	assert.False(t, ok, "membership must not change when the remote add failed")
}

func TestListRemoveAbsentIsNoOp(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	require.NoError(t, f.svc.Remove(context.Background(), "999999"))
	assert.Empty(t, f.removals)

	require.NoError(t, f.svc.Remove(context.Background(), "600519"))
	assert.Equal(t, []string{"600519"}, f.removals)
}

func TestListEnrichesTradingFields(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	entries, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Trade)
	assert.Equal(t, 12.3, *entries[0].Trade)
	assert.Equal(t, "股票600519", entries[0].Name)
}

func TestListSnapshotFailureSkipsMember(t *testing.T) {
	f := newListFixture(t, []string{"600519", "300750"})
	f.repo.getTradingSnapshotFn = func(ctx context.Context, code string) (*entity.StockRecord, error) {
		if code == "300750" {
			return nil, errors.New("snapshot unavailable")
		}
		return &entity.StockRecord{Symbol: code, Trade: utils.ToPointer(12.3)}, nil
	}

	entries, err := f.svc.List(context.Background())
	require.NoError(t, err, "one failing member must not fail the batch")
	require.Len(t, entries, 2)
	assert.NotNil(t, entries[0].Trade)
	assert.Nil(t, entries[1].Trade)
}

func TestReconcileAnnotatesMatches(t *testing.T) {
	f := newListFixture(t, []string{"600519", "300750"})

	resp, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, utils.TradingDayToday(), resp.CacheDay)
	assert.Empty(t, resp.FailedStrategies)
	require.Len(t, resp.Entries, 2)

	require.Len(t, resp.Entries[0].MatchedStrategies, 1)
	match := resp.Entries[0].MatchedStrategies[0]
	assert.Equal(t, "volume_surge", match.StrategyID)
	assert.Equal(t, "成交量倍增+涨幅加速", match.Name)
	assert.Equal(t, 2.1, match.Data.VolumeRatio)

	assert.Empty(t, resp.Entries[1].MatchedStrategies)
	assert.Empty(t, f.notify.messages)
}

func TestReconcileIsIdempotentWithinDay(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	_, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	scansAfterFirst := f.scans
	assert.Equal(t, len(entity.PredefinedStrategies()), scansAfterFirst)

	resp, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scansAfterFirst, f.scans, "a same-day reconcile must reuse the cache")
	require.Len(t, resp.Entries, 1)
	assert.Len(t, resp.Entries[0].MatchedStrategies, 1)
}

func TestReconcilePreservesMatchesAcrossChurn(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	_, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)

	// Membership churn reloads records but keeps known annotations.
	require.NoError(t, f.svc.Add(context.Background(), "300750"))
	entries, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, entries[0].MatchedStrategies, 1, "annotations must survive a membership reload")
	assert.Empty(t, entries[1].MatchedStrategies)
}

func TestRefreshForcesRepopulation(t *testing.T) {
	f := newListFixture(t, []string{"600519"})

	_, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err)
	scansAfterFirst := f.scans

	resp, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scansAfterFirst+len(entity.PredefinedStrategies()), f.scans)
	require.Len(t, resp.Entries, 1)
	assert.Len(t, resp.Entries[0].MatchedStrategies, 1)
}

func TestReconcileReportsFailedStrategiesOnce(t *testing.T) {
	f := newListFixture(t, []string{"600519", "300750"})
	scanErr := errors.New("scan service unavailable")
	f.repo.runStrategyScanFn = func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
		if params == (entity.StrategyParams{VolumeMultiplier: 2.0, MinChangeIncrease: 5.0, MinTurnover: 5.0}) {
			return "", nil, scanErr
		}
		return date, nil, nil
	}

	resp, err := f.svc.Reconcile(context.Background())
	require.NoError(t, err, "a failed definition must not fail the reconcile")
	assert.Equal(t, []string{"volume_surge"}, resp.FailedStrategies)

	// One batch-level notification regardless of member count.
	require.Len(t, f.notify.messages, 1)
	assert.Contains(t, f.notify.messages[0], "volume_surge")
}
