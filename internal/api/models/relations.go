package models

import (
	"fmt"
	"time"
)

// Favorite is a user's bookmark of a recipe.
type Favorite struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_favorite_pair" json:"user_id"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:idx_favorite_pair;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"recipe,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCart marks a recipe whose ingredients go into the user's shopping list.
type ShoppingCart struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_shopping_cart_pair" json:"user_id"`
	RecipeID  int64     `gorm:"not null;uniqueIndex:idx_shopping_cart_pair;index" json:"recipe_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Recipe *Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE;" json:"recipe,omitempty"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

// RelationKind names a user-to-recipe bookmark table.
type RelationKind int

const (
	RelationFavorite RelationKind = iota + 1
	RelationShoppingCart
)

func (k RelationKind) String() string {
	switch k {
	case RelationFavorite:
		return "favorite"
	case RelationShoppingCart:
		return "shopping_cart"
	default:
		return "unknown"
	}
}

// NewRelation returns the row of kind k linking userID to recipeID.
func (k RelationKind) NewRelation(userID, recipeID int64) (any, error) {
	switch k {
	case RelationFavorite:
		return &Favorite{UserID: userID, RecipeID: recipeID}, nil
	case RelationShoppingCart:
		return &ShoppingCart{UserID: userID, RecipeID: recipeID}, nil
	default:
		return nil, fmt.Errorf("unknown relation kind %d", int(k))
	}
}
