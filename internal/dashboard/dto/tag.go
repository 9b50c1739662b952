package dto

import (
	"golang-stock-dashboard/internal/entity"
)

// CreateTagRequest creates a new tag.
type CreateTagRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// TagStockRequest attaches an existing tag to a stock.
type TagStockRequest struct {
	TagID int64 `json:"tag_id"`
}

// TagsResponse lists tags.
type TagsResponse struct {
	Count int          `json:"count"`
	Tags  []entity.Tag `json:"tags"`
}
