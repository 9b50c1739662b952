package http

import (
	"net/http"
	"strconv"
	"strings"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for the stock universe and the scan
// views.
type StockHandler struct {
	stockService service.StockService
	logger       *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService service.StockService, logger *logger.Logger) *StockHandler {
	return &StockHandler{stockService: stockService, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stocks", h.ListStocks)
	g.GET("/stats", h.GetStats)
	g.GET("/dates", h.GetDates)
	g.GET("/movers/:direction", h.GetTopMovers)
	g.GET("/history/:code", h.GetHistory)
	g.GET("/filter/stocks", h.FilterStocks)
	g.GET("/strategies", h.GetStrategies)
	g.POST("/strategies/scan", h.RunScan)
}

// ListStocks godoc
// @Summary List stocks
// @Description List one page of the stock universe, or a searched/tagged view
// @Tags stocks
// @Produce  json
// @Param   search     query   string  false   "Substring over symbol, name and pinyin"
// @Param   boards     query   string  false   "Comma-separated board categories"
// @Param   tag_ids    query   string  false   "Comma-separated tag IDs"
// @Param   sort_by    query   string  false   "Sort field"
// @Param   sort_order query   string  false   "asc or desc"
// @Param   page       query   int     false   "Page number"
// @Param   page_size  query   int     false   "Page size"
// @Success 200 {object} dto.StockListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [get]
func (h *StockHandler) ListStocks(c echo.Context) error {
	q := service.StockQuery{
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if raw := c.QueryParam("boards"); raw != "" {
		boards := entity.ParseBoardSet(raw)
		q.Boards = &boards
	}
	if raw := c.QueryParam("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tag ID"})
			}
			q.TagIDs = append(q.TagIDs, id)
		}
	}
	q.Page = intQueryParam(c, "page", 1)
	q.PageSize = intQueryParam(c, "page_size", 20)

	resp, err := h.stockService.ListStocks(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStats godoc
// @Summary Get market statistics
// @Description Get gainer/loser counts and table inventory for one trading day
// @Tags stocks
// @Produce  json
// @Param   date  query   string  false   "Trading day (YYYYMMDD), latest if empty"
// @Success 200 {object} entity.MarketStats
// @Failure 500 {object} dto.ErrorResponse
// @Router /stats [get]
func (h *StockHandler) GetStats(c echo.Context) error {
	stats, err := h.stockService.GetStats(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

// GetDates godoc
// @Summary List available trading days
// @Description List trading days with daily data, most recent first
// @Tags stocks
// @Produce  json
// @Param   limit  query   int false   "Maximum number of days"
// @Success 200 {object} dto.DatesResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dates [get]
func (h *StockHandler) GetDates(c echo.Context) error {
	limit := intQueryParam(c, "limit", 30)
	dates, err := h.stockService.GetAvailableDates(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.DatesResponse{Count: len(dates), Dates: dates})
}

// GetTopMovers godoc
// @Summary Get top movers
// @Description Rank the day's top gainers or losers
// @Tags stocks
// @Produce  json
// @Param   direction  path    string  true    "gainers or losers"
// @Param   date       query   string  false   "Trading day (YYYYMMDD), latest if empty"
// @Param   limit      query   int     false   "Maximum number of rows"
// @Success 200 {object} dto.MoversResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /movers/{direction} [get]
func (h *StockHandler) GetTopMovers(c echo.Context) error {
	direction := c.Param("direction")
	limit := intQueryParam(c, "limit", 20)
	movers, err := h.stockService.GetTopMovers(c.Request().Context(), direction, c.QueryParam("date"), limit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.MoversResponse{
		Date:      c.QueryParam("date"),
		Direction: direction,
		Count:     len(movers),
		Movers:    movers,
	})
}

// GetHistory godoc
// @Summary Get price history
// @Description Get the recent daily OHLC sequence for one stock
// @Tags stocks
// @Produce  json
// @Param   code   path    string  true    "Stock code"
// @Param   limit  query   int     false   "Maximum number of days"
// @Success 200 {object} dto.HistoryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /history/{code} [get]
func (h *StockHandler) GetHistory(c echo.Context) error {
	code := c.Param("code")
	limit := intQueryParam(c, "limit", 30)
	data, err := h.stockService.GetHistory(c.Request().Context(), code, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.HistoryResponse{StockCode: code, Count: len(data), Data: data})
}

// FilterStocks godoc
// @Summary Filter stocks by multi-day change
// @Description Filter stocks whose daily change stayed within a range over recent days
// @Tags stocks
// @Produce  json
// @Param   days        query   int     false   "Lookback window in trading days"
// @Param   min_change  query   number  false   "Minimum daily change percent"
// @Param   max_change  query   number  false   "Maximum daily change percent"
// @Param   max_mktcap  query   number  false   "Maximum market cap in 亿"
// @Param   boards      query   string  false   "Comma-separated board categories"
// @Param   sort_by     query   string  false   "Sort field"
// @Param   sort_order  query   string  false   "asc or desc"
// @Param   limit       query   int     false   "Maximum number of rows"
// @Success 200 {object} dto.FilteredStocksResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /filter/stocks [get]
func (h *StockHandler) FilterStocks(c echo.Context) error {
	param := dto.FilterStocksParam{
		Days:      intQueryParam(c, "days", 3),
		MinChange: floatQueryParam(c, "min_change", 0),
		MaxChange: floatQueryParam(c, "max_change", 5),
		MaxMktcap: floatQueryParam(c, "max_mktcap", 0),
		Limit:     intQueryParam(c, "limit", 100),
	}
	var boards *entity.BoardSet
	if raw := c.QueryParam("boards"); raw != "" {
		set := entity.ParseBoardSet(raw)
		boards = &set
	}
	resp, err := h.stockService.FilterStocks(c.Request().Context(), param, boards, c.QueryParam("sort_by"), c.QueryParam("sort_order"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStrategies godoc
// @Summary List strategy definitions
// @Description List the shipped strategy definitions and scan cache freshness
// @Tags strategies
// @Produce  json
// @Success 200 {object} dto.StrategiesResponse
// @Router /strategies [get]
func (h *StockHandler) GetStrategies(c echo.Context) error {
	return c.JSON(http.StatusOK, h.stockService.Strategies())
}

// RunScan godoc
// @Summary Run an ad-hoc strategy scan
// @Description Run one scan with user-supplied parameters, bypassing the day cache
// @Tags strategies
// @Accept  json
// @Produce  json
// @Param   scan  body    dto.ScanRequest true    "Scan parameters"
// @Success 200 {object} dto.ScanResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /strategies/scan [post]
func (h *StockHandler) RunScan(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	resp, err := h.stockService.RunAdHocScan(c.Request().Context(), req.Date, req.Params, req.Limit, req.SortBy, req.SortOrder)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatQueryParam(c echo.Context, name string, fallback float64) float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
