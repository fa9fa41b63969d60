package models

import (
	"strings"
	"time"
)

type Tag struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"size:32;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string `gorm:"size:32;uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

type Ingredient struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	// SearchName is Name lowercased in Go. SQLite's LOWER only folds ASCII.
	SearchName string `gorm:"size:200;not null;default:'';index" json:"-"`
}

// NewIngredient fills SearchName from name.
func NewIngredient(name, unit string) Ingredient {
	return Ingredient{Name: name, MeasurementUnit: unit, SearchName: strings.ToLower(name)}
}

func (Ingredient) TableName() string {
	return "ingredients"
}

type Recipe struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID    int64     `gorm:"not null;index" json:"author_id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Image       string    `gorm:"size:255;not null" json:"image"` // storage key
	Text        string    `gorm:"type:text;not null" json:"text"`
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1" json:"cooking_time"`
	PubDate     time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	// Associations
	Author      *User              `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"author,omitempty"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE;" json:"tags,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"ingredients,omitempty"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is the quantified use of an ingredient in a recipe.
type RecipeIngredient struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipeID     int64 `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair" json:"recipe_id"`
	IngredientID int64 `gorm:"not null;uniqueIndex:idx_recipe_ingredient_pair;index" json:"ingredient_id"`
	Amount       int   `gorm:"not null;check:chk_recipe_ingredient_amount,amount >= 1" json:"amount"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE;" json:"ingredient,omitempty"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
