package http

import (
	"net/http"
	"strconv"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TagHandler handles HTTP requests for tags and stock-tag assignments.
type TagHandler struct {
	tagService service.TagService
	logger     *logger.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService service.TagService, logger *logger.Logger) *TagHandler {
	return &TagHandler{tagService: tagService, logger: logger}
}

// RegisterRoutes registers the tag routes to the Echo group.
func (h *TagHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetTags)
	g.POST("", h.CreateTag)
	g.GET("/stock/:code", h.GetStockTags)
	g.POST("/stock/:code", h.TagStock)
	g.DELETE("/stock/:code/:tag_id", h.UntagStock)
}

// GetTags godoc
// @Summary List tags
// @Description List all tags
// @Tags tags
// @Produce  json
// @Success 200 {object} dto.TagsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tags [get]
func (h *TagHandler) GetTags(c echo.Context) error {
	tags, err := h.tagService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.TagsResponse{Count: len(tags), Tags: tags})
}

// CreateTag godoc
// @Summary Create a tag
// @Description Create a new tag
// @Tags tags
// @Accept  json
// @Produce  json
// @Param   tag  body    dto.CreateTagRequest    true    "Tag to create"
// @Success 201 {object} entity.Tag
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tags [post]
func (h *TagHandler) CreateTag(c echo.Context) error {
	var req dto.CreateTagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tag name is required"})
	}
	tag, err := h.tagService.Create(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, tag)
}

// GetStockTags godoc
// @Summary List a stock's tags
// @Description List the tags assigned to one stock
// @Tags tags
// @Produce  json
// @Param   code  path    string  true    "Stock code"
// @Success 200 {object} dto.TagsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tags/stock/{code} [get]
func (h *TagHandler) GetStockTags(c echo.Context) error {
	tags, err := h.tagService.StockTags(c.Request().Context(), c.Param("code"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, dto.TagsResponse{Count: len(tags), Tags: tags})
}

// TagStock godoc
// @Summary Tag a stock
// @Description Assign an existing tag to a stock
// @Tags tags
// @Accept  json
// @Produce  json
// @Param   code        path    string              true    "Stock code"
// @Param   assignment  body    dto.TagStockRequest true    "Tag to assign"
// @Success 201 {object} echo.Map
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tags/stock/{code} [post]
func (h *TagHandler) TagStock(c echo.Context) error {
	var req dto.TagStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	code := c.Param("code")
	if err := h.tagService.TagStock(c.Request().Context(), code, req.TagID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, echo.Map{"code": code, "tag_id": req.TagID})
}

// UntagStock godoc
// @Summary Untag a stock
// @Description Remove a tag assignment from a stock
// @Tags tags
// @Produce  json
// @Param   code    path    string  true    "Stock code"
// @Param   tag_id  path    int     true    "Tag ID"
// @Success 200 {object} echo.Map
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tags/stock/{code}/{tag_id} [delete]
func (h *TagHandler) UntagStock(c echo.Context) error {
	tagID, err := strconv.ParseInt(c.Param("tag_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid tag ID"})
	}
	code := c.Param("code")
	if err := h.tagService.UntagStock(c.Request().Context(), code, tagID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"code": code, "tag_id": tagID})
}
