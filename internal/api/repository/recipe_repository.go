package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"foodgram/internal/api/models"
)

const ingredientBatchSize = 100

// RecipeFilter narrows recipe listings. Zero values disable a filter.
type RecipeFilter struct {
	// TagSlugs matches recipes carrying any of the slugs.
	TagSlugs    []string
	AuthorID    int64
	FavoritedBy int64
	InCartOf    int64
}

type RecipeRepository interface {
	// Create inserts the recipe, its tag links and ingredient rows in one
	// transaction.
	Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	// Update rewrites the scalar fields and fully replaces tags and
	// ingredients in one transaction. The author is never changed.
	Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error)
	// ListByAuthor returns the newest recipes of an author, all when limit <= 0.
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		if err := tx.Model(recipe).Association("Tags").Append(tags); err != nil {
			return fmt.Errorf("link recipe tags: %w", err)
		}
		return insertIngredients(tx, recipe.ID, items)
	})
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Recipe{ID: recipe.ID}).
			Select("name", "image", "text", "cooking_time").
			Updates(recipe)
		if result.Error != nil {
			return fmt.Errorf("update recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&models.Recipe{ID: recipe.ID}).Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("replace recipe tags: %w", err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}
		return insertIngredients(tx, recipe.ID, items)
	})
}

func insertIngredients(tx *gorm.DB, recipeID int64, items []models.RecipeIngredient) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, len(items))
	for i, it := range items {
		rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: it.IngredientID, Amount: it.Amount}
	}
	if err := tx.Omit("Ingredient").CreateInBatches(rows, ingredientBatchSize).Error; err != nil {
		return fmt.Errorf("insert recipe ingredients: %w", err)
	}
	return nil
}

// Delete removes the recipe with everything that points at it.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return fmt.Errorf("delete recipe dependents: %w", err)
			}
		}
		if err := tx.Model(&models.Recipe{ID: id}).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("unlink recipe tags: %w", err)
		}
		result := tx.Delete(&models.Recipe{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete recipe: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *recipeRepository) FindByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	var list []models.Recipe
	var total int64

	q := applyRecipeFilter(r.db.WithContext(ctx).Model(&models.Recipe{}), filter)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	q = applyRecipeFilter(preloadRecipe(r.db.WithContext(ctx)), filter)
	if err := q.
		Order("pub_date DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return list, total, nil
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	var list []models.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list author recipes: %w", err)
	}
	return list, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		AuthorID int64
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count author recipes: %w", err)
	}
	for _, row := range rows {
		out[row.AuthorID] = row.Total
	}
	return out, nil
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func applyRecipeFilter(q *gorm.DB, f RecipeFilter) *gorm.DB {
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.AuthorID > 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy > 0 {
		q = q.Where("recipes.id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Model(&models.Favorite{}).
			Select("recipe_id").
			Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf > 0 {
		q = q.Where("recipes.id IN (?)", q.Session(&gorm.Session{NewDB: true}).
			Model(&models.ShoppingCart{}).
			Select("recipe_id").
			Where("user_id = ?", f.InCartOf))
	}
	return q
}
