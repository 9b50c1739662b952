package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang-stock-dashboard/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanResultFor(code string) entity.ScanResult {
	return entity.ScanResult{
		StockCode:     code,
		StockName:     "测试股份",
		TradeDate:     "20260828",
		Close:         10.5,
		ChangePercent: 6.0,
		PrevChange:    0.5,
		VolumeRatio:   2.4,
		TurnoverRatio: 5.5,
	}
}

func TestStrategyCachePopulatesOncePerDay(t *testing.T) {
	var calls int
	repo := &fakeMarketRepo{
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			calls++
			return "20260828", []entity.ScanResult{scanResultFor("600519")}, nil
		},
	}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, len(entity.PredefinedStrategies()), calls)
	assert.Equal(t, "20260828", cache.Day())
	assert.True(t, cache.Fresh("20260828"))

	res, ok := cache.Lookup("volume_surge", "600519")
	require.True(t, ok)
	assert.Equal(t, "600519", res.StockCode)

	// Same day again: served from the cache, no new scans.
	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, len(entity.PredefinedStrategies()), calls)
}

func TestStrategyCacheDiscardsOldGenerationOnDayChange(t *testing.T) {
	day := "20260827"
	repo := &fakeMarketRepo{
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			if day == "20260827" {
				return day, []entity.ScanResult{scanResultFor("600519")}, nil
			}
			return day, []entity.ScanResult{scanResultFor("300750")}, nil
		},
	}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	require.NoError(t, cache.EnsureFresh(context.Background(), "20260827"))
	_, ok := cache.Lookup("volume_surge", "600519")
	require.True(t, ok)

	day = "20260828"
	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, "20260828", cache.Day())
	assert.False(t, cache.Fresh("20260827"))

	// The old generation is gone, not merged.
	_, ok = cache.Lookup("volume_surge", "600519")
	assert.False(t, ok)
	_, ok = cache.Lookup("volume_surge", "300750")
	assert.True(t, ok)
}

func TestStrategyCacheFailedDefinitionStaysAbsent(t *testing.T) {
	scanErr := errors.New("scan service unavailable")
	var calls int
	repo := &fakeMarketRepo{
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			calls++
			// The volume_surge tuple fails, the rest succeed.
			if params == (entity.StrategyParams{VolumeMultiplier: 2.0, MinChangeIncrease: 5.0, MinTurnover: 5.0}) {
				return "", nil, scanErr
			}
			return "20260828", []entity.ScanResult{scanResultFor("600519")}, nil
		},
	}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	// The batch still succeeds; the failure is recorded, not returned.
	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, []string{"volume_surge"}, cache.MissingDefinitions())

	_, ok := cache.Lookup("volume_surge", "600519")
	assert.False(t, ok, "failed definition must have no sub-map, not an empty one")
	_, ok = cache.Lookup("conservative", "600519")
	assert.True(t, ok)

	// Not retried until invalidated.
	callsAfterFirst := calls
	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, callsAfterFirst, calls)

	cache.Invalidate()
	assert.Empty(t, cache.Day())
	assert.Empty(t, cache.MissingDefinitions())
	require.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
	assert.Equal(t, callsAfterFirst+len(entity.PredefinedStrategies()), calls)
}

func TestStrategyCacheCanceledContextAbortsPopulation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeMarketRepo{
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			t.Fatal("scan must not run after cancellation")
			return "", nil, nil
		},
	}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	err := cache.EnsureFresh(ctx, "20260828")
	require.Error(t, err)
	assert.Empty(t, cache.Day(), "an aborted population must not tag a day")
}

func TestStrategyCacheCoalescesConcurrentPopulations(t *testing.T) {
	var mu sync.Mutex
	var calls int
	repo := &fakeMarketRepo{
		runStrategyScanFn: func(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			return "20260828", []entity.ScanResult{scanResultFor("600519")}, nil
		},
	}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.EnsureFresh(context.Background(), "20260828"))
		}()
	}
	wg.Wait()

	// One population round total: the waiters coalesce on the winner's work.
	assert.Equal(t, len(entity.PredefinedStrategies()), calls)
	assert.True(t, cache.Fresh("20260828"))
}

func TestStrategyCacheDefinitionsAreCopies(t *testing.T) {
	repo := &fakeMarketRepo{}
	cache := NewStrategyCacheService(repo, newTestLogger(t), 1000)

	defs := cache.Definitions()
	require.NotEmpty(t, defs)
	defs[0].ID = "mutated"

	assert.NotEqual(t, "mutated", cache.Definitions()[0].ID)
}
