package http

import (
	"errors"
	"net/http"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ListHandler handles HTTP requests for one user-curated list. The same
// handler serves the watchlist and the warning-list; each is registered on
// its own route group with its own service.
type ListHandler struct {
	listService service.ListService
	logger      *logger.Logger
}

// NewListHandler creates a new ListHandler.
func NewListHandler(listService service.ListService, logger *logger.Logger) *ListHandler {
	return &ListHandler{listService: listService, logger: logger}
}

// RegisterRoutes registers the list routes to the Echo group.
func (h *ListHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetList)
	g.POST("/:code", h.AddStock)
	g.DELETE("/:code", h.RemoveStock)
	g.POST("/reconcile", h.Reconcile)
	g.POST("/refresh", h.Refresh)
}

// GetList godoc
// @Summary Get the list
// @Description Get the list members with trading fields and match annotations
// @Tags lists
// @Produce  json
// @Success 200 {object} dto.ListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist [get]
func (h *ListHandler) GetList(c echo.Context) error {
	entries, err := h.listService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.ListResponse{Count: len(entries), Entries: entries})
}

// AddStock godoc
// @Summary Add a stock to the list
// @Description Add a stock; duplicates are rejected without a remote call
// @Tags lists
// @Produce  json
// @Param   code  path    string  true    "Stock code"
// @Success 201 {object} echo.Map
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/{code} [post]
func (h *ListHandler) AddStock(c echo.Context) error {
	code := c.Param("code")
	if err := h.listService.Add(c.Request().Context(), code); err != nil {
		if errors.Is(err, service.ErrAlreadyInList) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"code": code})
}

// RemoveStock godoc
// @Summary Remove a stock from the list
// @Description Remove a stock; removing an absent stock is a no-op
// @Tags lists
// @Produce  json
// @Param   code  path    string  true    "Stock code"
// @Success 200 {object} echo.Map
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/{code} [delete]
func (h *ListHandler) RemoveStock(c echo.Context) error {
	code := c.Param("code")
	if err := h.listService.Remove(c.Request().Context(), code); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"code": code})
}

// Reconcile godoc
// @Summary Reconcile the list
// @Description Re-derive match annotations from the day's strategy scan cache
// @Tags lists
// @Produce  json
// @Success 200 {object} dto.ReconcileResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/reconcile [post]
func (h *ListHandler) Reconcile(c echo.Context) error {
	resp, err := h.listService.Reconcile(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Force-refresh the list
// @Description Invalidate the strategy scan cache and reconcile from fresh scans
// @Tags lists
// @Produce  json
// @Success 200 {object} dto.ReconcileResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /watchlist/refresh [post]
func (h *ListHandler) Refresh(c echo.Context) error {
	resp, err := h.listService.Refresh(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}
