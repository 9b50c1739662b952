package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-dashboard/internal/dashboard/config"
	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/common"
	"golang-stock-dashboard/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MarketDataRepository is the client contract for the external market data
// service. Every call may fail; callers treat a non-nil error as "no data"
// and surface at most one user-visible notification per action.
type MarketDataRepository interface {
	GetStocks(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResponse, error)
	GetStocksByCodes(ctx context.Context, codes []string) ([]entity.StockRecord, error)
	GetTradingSnapshot(ctx context.Context, code string) (*entity.StockRecord, error)
	GetStats(ctx context.Context, date string) (*entity.MarketStats, error)
	GetAvailableDates(ctx context.Context, limit int) ([]string, error)
	GetTopMovers(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error)
	GetHistory(ctx context.Context, code string, limit int) ([]entity.OHLC, error)
	RunStrategyScan(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error)
	GetFilteredStocks(ctx context.Context, param dto.FilterStocksParam) ([]entity.FilteredStock, error)
	GetTags(ctx context.Context) ([]entity.Tag, error)
	CreateTag(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error)
	GetTagStocks(ctx context.Context, tagID int64) ([]entity.StockRecord, error)
	GetStockTags(ctx context.Context, code string) ([]entity.Tag, error)
	TagStock(ctx context.Context, code string, tagID int64) error
	UntagStock(ctx context.Context, code string, tagID int64) error
	GetListCodes(ctx context.Context, kind string) ([]string, error)
	AddListCode(ctx context.Context, kind, code string) error
	RemoveListCode(ctx context.Context, kind, code string) error
}

type marketDataRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	historyCache   *cache.Cache
}

// NewMarketDataRepository creates a rate-limited client for the market data
// service. Per-stock history responses are cached in memory so sparkline
// hovers do not refetch.
func NewMarketDataRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketData.MaxRequestPerMinute)
	historyTTL, err := time.ParseDuration(cfg.MarketData.HistoryCacheTTL)
	if err != nil || historyTTL <= 0 {
		historyTTL = 5 * time.Minute
	}
	return &marketDataRepository{
		cfg:            cfg,
		log:            log,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		historyCache:   cache.New(historyTTL, 2*historyTTL),
	}
}

func (r *marketDataRepository) GetStocks(ctx context.Context, param dto.ListStocksParam) (*dto.StockListResponse, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(param.Limit))
	q.Set("offset", fmt.Sprint(param.Offset))
	if param.Boards != nil {
		q.Set("boards", param.Boards.String())
	}
	body, err := r.sendRequest(ctx, http.MethodGet, "/api/stocks?"+q.Encode(), "")
	if err != nil {
		return nil, err
	}

	var resp dto.StockListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode stocks response: %w", err)
	}
	return &resp, nil
}

// GetStocksByCodes fetches the identity records of the given stocks through
// the service's ad-hoc query endpoint, the same way the list views resolve
// their members.
func (r *marketDataRepository) GetStocksByCodes(ctx context.Context, codes []string) ([]entity.StockRecord, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	quoted := make([]string, 0, len(codes))
	for _, c := range codes {
		quoted = append(quoted, "'"+c+"'")
	}
	sql := "SELECT ts_code, symbol, name, pinyin FROM stock_list WHERE symbol IN (" + strings.Join(quoted, ",") + ")"
	rows, err := r.queryRows(ctx, sql)
	if err != nil {
		return nil, err
	}

	records := make([]entity.StockRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, entity.StockRecord{
			TsCode: row.Get("ts_code").String(),
			Symbol: row.Get("symbol").String(),
			Name:   row.Get("name").String(),
			Pinyin: row.Get("pinyin").String(),
		})
	}
	return records, nil
}

// GetTradingSnapshot fetches the latest daily trading fields for one stock.
// A stock absent from the latest snapshot yields a record with nil fields,
// not an error.
func (r *marketDataRepository) GetTradingSnapshot(ctx context.Context, code string) (*entity.StockRecord, error) {
	table, err := r.latestDailyTable(ctx)
	if err != nil {
		return nil, err
	}
	if table == "" {
		return &entity.StockRecord{Symbol: code}, nil
	}

	sql := fmt.Sprintf(
		"SELECT trade, changepercent, mktcap, turnoverratio FROM %s WHERE symbol = '%s' LIMIT 1",
		table, entity.ExchangeSymbol(code),
	)
	rows, err := r.queryRows(ctx, sql)
	if err != nil {
		return nil, err
	}

	snap := &entity.StockRecord{Symbol: code}
	if len(rows) == 0 {
		return snap, nil
	}
	row := rows[0]
	if v := row.Get("trade"); v.Exists() {
		f := v.Float()
		snap.Trade = &f
	}
	if v := row.Get("changepercent"); v.Exists() {
		f := v.Float()
		snap.ChangePercent = &f
	}
	if v := row.Get("mktcap"); v.Exists() {
		f := v.Float()
		snap.Mktcap = &f
	}
	if v := row.Get("turnoverratio"); v.Exists() {
		f := v.Float()
		snap.TurnoverRatio = &f
	}
	return snap, nil
}

func (r *marketDataRepository) GetStats(ctx context.Context, date string) (*entity.MarketStats, error) {
	path := "/api/stats"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	body, err := r.sendRequest(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	return &entity.MarketStats{
		TotalStocks: int(root.Get("total_stocks").Int()),
		Gainers:     int(root.Get("gainers").Int()),
		Losers:      int(root.Get("losers").Int()),
		Tables:      int(root.Get("tables").Int()),
		Date:        root.Get("date").String(),
	}, nil
}

func (r *marketDataRepository) GetAvailableDates(ctx context.Context, limit int) ([]string, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, fmt.Sprintf("/api/history/dates/available?limit=%d", limit), "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Dates []string `json:"dates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode dates response: %w", err)
	}
	return resp.Dates, nil
}

func (r *marketDataRepository) GetTopMovers(ctx context.Context, direction, date string, limit int) ([]entity.MoverRecord, error) {
	if direction != common.MoverDirectionGainers && direction != common.MoverDirectionLosers {
		return nil, fmt.Errorf("unknown mover direction %q", direction)
	}
	path := fmt.Sprintf("/api/history/%s/%s?limit=%d", direction, url.PathEscape(date), limit)
	body, err := r.sendRequest(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		TopGainers []entity.MoverRecord `json:"top_gainers"`
		TopLosers  []entity.MoverRecord `json:"top_losers"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode movers response: %w", err)
	}
	if direction == common.MoverDirectionGainers {
		return resp.TopGainers, nil
	}
	return resp.TopLosers, nil
}

func (r *marketDataRepository) GetHistory(ctx context.Context, code string, limit int) ([]entity.OHLC, error) {
	cacheKey := fmt.Sprintf("history:%s:%d", code, limit)
	if cached, found := r.historyCache.Get(cacheKey); found {
		return cached.([]entity.OHLC), nil
	}

	path := fmt.Sprintf("/api/history/%s?limit=%d", url.PathEscape(code), limit)
	body, err := r.sendRequest(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []entity.OHLC `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	r.historyCache.Set(cacheKey, resp.Data, cache.DefaultExpiration)
	return resp.Data, nil
}

// RunStrategyScan runs one parameterized scan. An empty date lets the service
// resolve the most recent trading day; the resolved day is returned.
func (r *marketDataRepository) RunStrategyScan(ctx context.Context, date string, params entity.StrategyParams, limit int) (string, []entity.ScanResult, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("volume_multiplier", fmt.Sprint(params.VolumeMultiplier))
	q.Set("min_change_increase", fmt.Sprint(params.MinChangeIncrease))
	q.Set("min_turnover", fmt.Sprint(params.MinTurnover))
	q.Set("max_mktcap", fmt.Sprint(params.MaxMktcap))
	q.Set("limit", fmt.Sprint(limit))

	body, err := r.sendRequest(ctx, http.MethodGet, "/api/strategy/scan?"+q.Encode(), "")
	if err != nil {
		return "", nil, err
	}

	var resp struct {
		Date    string              `json:"date"`
		Results []entity.ScanResult `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to decode scan response: %w", err)
	}
	return resp.Date, resp.Results, nil
}

func (r *marketDataRepository) GetFilteredStocks(ctx context.Context, param dto.FilterStocksParam) ([]entity.FilteredStock, error) {
	q := url.Values{}
	q.Set("days", fmt.Sprint(param.Days))
	q.Set("min_change", fmt.Sprint(param.MinChange))
	q.Set("max_change", fmt.Sprint(param.MaxChange))
	q.Set("max_mktcap", fmt.Sprint(param.MaxMktcap))
	q.Set("limit", fmt.Sprint(param.Limit))

	body, err := r.sendRequest(ctx, http.MethodGet, "/api/filter/stocks?"+q.Encode(), "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		FilteredStocks []entity.FilteredStock `json:"filtered_stocks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode filtered stocks response: %w", err)
	}
	return resp.FilteredStocks, nil
}

func (r *marketDataRepository) GetTags(ctx context.Context) ([]entity.Tag, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, "/api/tags", "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tags []entity.Tag `json:"tags"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tags response: %w", err)
	}
	return resp.Tags, nil
}

func (r *marketDataRepository) CreateTag(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	body, err := r.sendRequest(ctx, http.MethodPost, "/api/tags", string(payload))
	if err != nil {
		return nil, err
	}

	var tag entity.Tag
	if err := json.Unmarshal(body, &tag); err != nil {
		return nil, fmt.Errorf("failed to decode created tag: %w", err)
	}
	return &tag, nil
}

func (r *marketDataRepository) GetTagStocks(ctx context.Context, tagID int64) ([]entity.StockRecord, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, fmt.Sprintf("/api/tags/%d/stocks?limit=10000", tagID), "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Stocks []entity.StockRecord `json:"stocks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode tag stocks response: %w", err)
	}
	return resp.Stocks, nil
}

func (r *marketDataRepository) GetStockTags(ctx context.Context, code string) ([]entity.Tag, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, "/api/stock-tags/"+url.PathEscape(code), "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tags []entity.Tag `json:"tags"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode stock tags response: %w", err)
	}
	return resp.Tags, nil
}

func (r *marketDataRepository) TagStock(ctx context.Context, code string, tagID int64) error {
	payload, err := json.Marshal(dto.TagStockRequest{TagID: tagID})
	if err != nil {
		return err
	}
	_, err = r.sendRequest(ctx, http.MethodPost, "/api/stock-tags/"+url.PathEscape(code), string(payload))
	return err
}

func (r *marketDataRepository) UntagStock(ctx context.Context, code string, tagID int64) error {
	_, err := r.sendRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/stock-tags/%s/%d", url.PathEscape(code), tagID), "")
	return err
}

func (r *marketDataRepository) GetListCodes(ctx context.Context, kind string) ([]string, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, "/api/"+kind, "")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Codes []string `json:"codes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", kind, err)
	}
	return resp.Codes, nil
}

func (r *marketDataRepository) AddListCode(ctx context.Context, kind, code string) error {
	_, err := r.sendRequest(ctx, http.MethodPost, "/api/"+kind+"/"+url.PathEscape(code), "")
	return err
}

func (r *marketDataRepository) RemoveListCode(ctx context.Context, kind, code string) error {
	_, err := r.sendRequest(ctx, http.MethodDelete, "/api/"+kind+"/"+url.PathEscape(code), "")
	return err
}

// queryRows runs a read-only query through the service's ad-hoc endpoint and
// returns the result rows. Row shape depends on the query, so rows come back
// as loose JSON.
func (r *marketDataRepository) queryRows(ctx context.Context, sql string) ([]gjson.Result, error) {
	body, err := r.sendRequest(ctx, http.MethodGet, "/api/query?sql="+url.QueryEscape(sql), "")
	if err != nil {
		return nil, err
	}
	return gjson.GetBytes(body, "results").Array(), nil
}

// latestDailyTable resolves the most recent daily snapshot table. Cached
// alongside history responses; the table only changes once per trading day.
func (r *marketDataRepository) latestDailyTable(ctx context.Context) (string, error) {
	const cacheKey = "latest_daily_table"
	if cached, found := r.historyCache.Get(cacheKey); found {
		return cached.(string), nil
	}

	body, err := r.sendRequest(ctx, http.MethodGet, "/api/tables", "")
	if err != nil {
		return "", err
	}

	var latest string
	for _, t := range gjson.GetBytes(body, "tables").Array() {
		name := t.Get("name").String()
		if strings.HasPrefix(name, "stock_daily_") && name > latest {
			latest = name
		}
	}

	r.historyCache.Set(cacheKey, latest, cache.DefaultExpiration)
	return latest, nil
}

func (r *marketDataRepository) sendRequest(ctx context.Context, method, path, jsonStr string) ([]byte, error) {
	reqURL := r.cfg.MarketData.BaseURL + path
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", reqURL),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	var payload io.Reader
	if jsonStr != "" {
		payload = bytes.NewBufferString(jsonStr)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, payload)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	if jsonStr != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to market data service", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from market data service", fields...)
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from market data service", fields...)
		return nil, fmt.Errorf("market data service returned status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error").String())
	}

	return body, nil
}
