package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/api/models"
	"foodgram/internal/shoppinglist"
)

// RelationRepository stores favorites and shopping cart entries. Every
// method takes the kind of relation it operates on.
type RelationRepository interface {
	Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error
	// Remove reports whether a row existed.
	Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error)
	Exists(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error)
	// RecipeIDsAmong returns which of recipeIDs userID has in kind.
	RecipeIDsAmong(ctx context.Context, kind models.RelationKind, userID int64, recipeIDs []int64) (map[int64]bool, error)
	// CartRows lists every ingredient use of the recipes in userID's cart.
	CartRows(ctx context.Context, userID int64) ([]shoppinglist.Row, error)
}

type relationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

func (r *relationRepository) Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error {
	row, err := kind.NewRelation(userID, recipeID)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(row).Error; err != nil {
		return fmt.Errorf("add %s: %w", kind, err)
	}
	return nil
}

func (r *relationRepository) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error) {
	model, err := kind.NewRelation(0, 0)
	if err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		return false, fmt.Errorf("remove %s: %w", kind, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *relationRepository) Exists(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error) {
	model, err := kind.NewRelation(0, 0)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s: %w", kind, err)
	}
	return count > 0, nil
}

func (r *relationRepository) RecipeIDsAmong(ctx context.Context, kind models.RelationKind, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	model, err := kind.NewRelation(0, 0)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *relationRepository) CartRows(ctx context.Context, userID int64) ([]shoppinglist.Row, error) {
	var rows []shoppinglist.Row
	if err := r.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Order("shopping_carts.id").
		Order("recipe_ingredients.id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load shopping cart: %w", err)
	}
	return rows, nil
}
