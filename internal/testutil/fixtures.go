package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"foodgram/internal/api/models"
)

// CreateUser inserts a user named name with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  name,
		Email:     name + "@example.com",
		FirstName: name,
		LastName:  "Tester",
		Password:  "$2a$10$placeholderplaceholderplaceholderplaceholderplaceholde",
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	var n int64
	db.Model(&models.Tag{}).Count(&n)
	tag := &models.Tag{Name: slug, Slug: slug, Color: fmt.Sprintf("#%06X", n+1)}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := models.NewIngredient(name, unit)
	require.NoError(t, db.Create(&ing).Error)
	return &ing
}

// CreateRecipe inserts a recipe by author with the given ingredient amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "recipes/images/" + name + ".png",
		Text:        "text of " + name,
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Tags", "Ingredients").Create(recipe).Error)
	for ing, amount := range amounts {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ing.ID,
			Amount:       amount,
		}).Error)
	}
	if len(tags) > 0 {
		list := make([]models.Tag, 0, len(tags))
		for _, tag := range tags {
			list = append(list, *tag)
		}
		require.NoError(t, db.Model(recipe).Association("Tags").Append(list))
	}
	return recipe
}
