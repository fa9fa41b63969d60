package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/storage"
)

// RelationService adds and removes recipes from a user's favorites or
// shopping cart. Both lists follow the same rules, the kind selects which.
type RelationService interface {
	Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (*dto.RecipeShortResponse, error)
	Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error
}

type relationService struct {
	relations repository.RelationRepository
	recipes   repository.RecipeRepository
	present   presenter
	log       *zap.Logger
}

func NewRelationService(
	relations repository.RelationRepository,
	recipes repository.RecipeRepository,
	images storage.ImageStore,
	log *zap.Logger,
) RelationService {
	return &relationService{
		relations: relations,
		recipes:   recipes,
		present:   presenter{relations: relations, images: images},
		log:       log,
	}
}

func alreadyAdded(kind models.RelationKind) *ValidationError {
	if kind == models.RelationShoppingCart {
		return NewValidationError(NonFieldErrors, "the recipe is already in the shopping cart")
	}
	return NewValidationError(NonFieldErrors, "the recipe is already in favorites")
}

func notAdded(kind models.RelationKind) *ValidationError {
	if kind == models.RelationShoppingCart {
		return NewValidationError(NonFieldErrors, "the recipe is not in the shopping cart")
	}
	return NewValidationError(NonFieldErrors, "the recipe is not in favorites")
}

func (s *relationService) recipe(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	return recipe, err
}

func (s *relationService) Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (*dto.RecipeShortResponse, error) {
	recipe, err := s.recipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.relations.Exists(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, alreadyAdded(kind)
	}
	if err := s.relations.Add(ctx, kind, userID, recipeID); err != nil {
		// the unique pair catches a concurrent identical request
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, alreadyAdded(kind)
		}
		return nil, err
	}

	s.log.Debug("recipe bookmarked", zap.Stringer("kind", kind), zap.Int64("user_id", userID), zap.Int64("recipe_id", recipeID))
	out := s.present.short(recipe)
	return &out, nil
}

func (s *relationService) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error {
	if _, err := s.recipe(ctx, recipeID); err != nil {
		return err
	}
	removed, err := s.relations.Remove(ctx, kind, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return notAdded(kind)
	}
	return nil
}
