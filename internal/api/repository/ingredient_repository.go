package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"foodgram/internal/api/models"
)

type IngredientRepository interface {
	// Search returns ingredients whose name starts with prefix, ignoring
	// case. An empty prefix lists everything.
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	FindByID(ctx context.Context, id int64) (*models.Ingredient, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Ingredient, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ingredientRepository) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	var list []models.Ingredient
	q := r.db.WithContext(ctx).Order("name").Order("id")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`search_name LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	return list, nil
}

func (r *ingredientRepository) FindByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *ingredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Ingredient, error) {
	var list []models.Ingredient
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find ingredients: %w", err)
	}
	return list, nil
}
