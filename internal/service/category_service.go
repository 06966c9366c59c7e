package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/signals-service/internal/domain"
	"github.com/spec-kit/signals-service/internal/repository"
	apperrors "github.com/spec-kit/signals-service/pkg/util"
)

// CategoryTerm is one entry of the public category vocabulary.
type CategoryTerm struct {
	Slug          string         `json:"slug"`
	Name          string         `json:"name"`
	Handling      string         `json:"handling,omitempty"`
	SubCategories []CategoryTerm `json:"sub_categories,omitempty"`
}

// CategoryService serves the public category vocabulary. The terms
// change rarely and every create request resolves against them, so
// responses are cached in Redis for a short TTL.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      *redis.Client
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCategoryService wires the service. A nil cache disables caching.
func NewCategoryService(categories repository.CategoryRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, cache: cache, ttl: ttl, logger: logger}
}

// ListTerms returns every main category with its sub categories.
func (s *CategoryService) ListTerms(ctx context.Context) ([]CategoryTerm, error) {
	const cacheKey = "terms:categories"
	var cached []CategoryTerm
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	mains, err := s.categories.ListMainCategories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	terms := make([]CategoryTerm, 0, len(mains))
	for _, main := range mains {
		term, err := s.buildMainTerm(ctx, &main)
		if err != nil {
			return nil, err
		}
		terms = append(terms, *term)
	}

	s.cacheSet(ctx, cacheKey, terms)
	return terms, nil
}

// GetMainTerm returns one main category with its sub categories.
func (s *CategoryService) GetMainTerm(ctx context.Context, slug string) (*CategoryTerm, error) {
	cacheKey := "terms:categories:" + slug
	var cached CategoryTerm
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	main, err := s.categories.GetMainBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	term, err := s.buildMainTerm(ctx, main)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, term)
	return term, nil
}

// GetSubTerm returns one sub category term.
func (s *CategoryService) GetSubTerm(ctx context.Context, mainSlug, subSlug string) (*CategoryTerm, error) {
	cacheKey := "terms:categories:" + mainSlug + ":" + subSlug
	var cached CategoryTerm
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	category, err := s.categories.GetBySlugs(ctx, mainSlug, subSlug)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	term := &CategoryTerm{
		Slug:     category.Slug,
		Name:     category.Name,
		Handling: category.Handling,
	}

	s.cacheSet(ctx, cacheKey, term)
	return term, nil
}

func (s *CategoryService) buildMainTerm(ctx context.Context, main *domain.MainCategory) (*CategoryTerm, error) {
	subs, err := s.categories.ListByMain(ctx, main.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	term := &CategoryTerm{
		Slug: main.Slug,
		Name: main.Name,
	}
	for _, sub := range subs {
		term.SubCategories = append(term.SubCategories, CategoryTerm{
			Slug:     sub.Slug,
			Name:     sub.Name,
			Handling: sub.Handling,
		})
	}
	return term, nil
}

func (s *CategoryService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("corrupt terms cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CategoryService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("terms cache write failed", zap.String("key", key), zap.Error(err))
	}
}
