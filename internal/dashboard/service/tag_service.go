package service

import (
	"context"

	"golang-stock-dashboard/internal/dashboard/dto"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/entity"
	"golang-stock-dashboard/pkg/logger"
)

// TagService manages user-curated tags and the tag-union view source.
type TagService interface {
	List(ctx context.Context) ([]entity.Tag, error)
	Create(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error)
	TagStock(ctx context.Context, code string, tagID int64) error
	UntagStock(ctx context.Context, code string, tagID int64) error
	StockTags(ctx context.Context, code string) ([]entity.Tag, error)
	// UnionMembers returns the OR-union of the given tags' member stocks,
	// deduplicated by stock identifier. Each tag is fetched independently; a
	// failing tag contributes nothing and the rest proceed.
	UnionMembers(ctx context.Context, tagIDs []int64) ([]entity.StockRecord, error)
}

type tagService struct {
	marketRepo repository.MarketDataRepository
	log        *logger.Logger
}

// NewTagService creates a new tag service.
func NewTagService(marketRepo repository.MarketDataRepository, log *logger.Logger) TagService {
	return &tagService{marketRepo: marketRepo, log: log}
}

func (s *tagService) List(ctx context.Context) ([]entity.Tag, error) {
	return s.marketRepo.GetTags(ctx)
}

func (s *tagService) Create(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error) {
	return s.marketRepo.CreateTag(ctx, req)
}

func (s *tagService) TagStock(ctx context.Context, code string, tagID int64) error {
	return s.marketRepo.TagStock(ctx, code, tagID)
}

func (s *tagService) UntagStock(ctx context.Context, code string, tagID int64) error {
	return s.marketRepo.UntagStock(ctx, code, tagID)
}

func (s *tagService) StockTags(ctx context.Context, code string) ([]entity.Tag, error) {
	return s.marketRepo.GetStockTags(ctx, code)
}

func (s *tagService) UnionMembers(ctx context.Context, tagIDs []int64) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	seen := make(map[string]int)

	for _, tagID := range tagIDs {
		stocks, err := s.marketRepo.GetTagStocks(ctx, tagID)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to load tag members",
				logger.Field("tag_id", tagID),
				logger.ErrorField(err),
			)
			continue
		}
		for _, stock := range stocks {
			// First-seen order, last-fetched copy wins on duplicate fields.
			if i, ok := seen[stock.Symbol]; ok {
				out[i] = stock
				continue
			}
			seen[stock.Symbol] = len(out)
			out = append(out, stock)
		}
	}
	return out, nil
}
