package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/repository"
	"foodgram/internal/cache"
)

// TagService serves the read-only tag catalogue.
type TagService interface {
	List(ctx context.Context) ([]dto.TagResponse, error)
	Get(ctx context.Context, id int64) (*dto.TagResponse, error)
}

// IngredientService serves the read-only ingredient catalogue.
type IngredientService interface {
	Search(ctx context.Context, prefix string) ([]dto.IngredientResponse, error)
	Get(ctx context.Context, id int64) (*dto.IngredientResponse, error)
}

type tagService struct {
	repo  repository.TagRepository
	cache cache.Cache
	log   *zap.Logger
}

func NewTagService(repo repository.TagRepository, c cache.Cache, log *zap.Logger) TagService {
	return &tagService{repo: repo, cache: c, log: log}
}

func (s *tagService) List(ctx context.Context) ([]dto.TagResponse, error) {
	var cached []dto.TagResponse
	if readCache(ctx, s.cache, s.log, cache.TagsKey, &cached) {
		return cached, nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.FromTags(list)
	writeCache(ctx, s.cache, s.log, cache.TagsKey, out)
	return out, nil
}

func (s *tagService) Get(ctx context.Context, id int64) (*dto.TagResponse, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	out := dto.FromTag(*tag)
	return &out, nil
}

type ingredientService struct {
	repo  repository.IngredientRepository
	cache cache.Cache
	log   *zap.Logger
}

func NewIngredientService(repo repository.IngredientRepository, c cache.Cache, log *zap.Logger) IngredientService {
	return &ingredientService{repo: repo, cache: c, log: log}
}

func (s *ingredientService) Search(ctx context.Context, prefix string) ([]dto.IngredientResponse, error) {
	key := cache.IngredientSearchPrefix + strings.ToLower(strings.TrimSpace(prefix))
	var cached []dto.IngredientResponse
	if readCache(ctx, s.cache, s.log, key, &cached) {
		return cached, nil
	}

	list, err := s.repo.Search(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := dto.FromIngredients(list)
	writeCache(ctx, s.cache, s.log, key, out)
	return out, nil
}

func (s *ingredientService) Get(ctx context.Context, id int64) (*dto.IngredientResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIngredientNotFound
	}
	if err != nil {
		return nil, err
	}
	out := dto.FromIngredient(*ing)
	return &out, nil
}

// Cache failures only cost a database round trip, so they are logged and
// never returned.
func readCache(ctx context.Context, c cache.Cache, log *zap.Logger, key string, dest any) bool {
	if c == nil {
		return false
	}
	hit, err := c.Get(ctx, key, dest)
	if err != nil {
		log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func writeCache(ctx context.Context, c cache.Cache, log *zap.Logger, key string, value any) {
	if c == nil {
		return
	}
	if err := c.Set(ctx, key, value); err != nil {
		log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
