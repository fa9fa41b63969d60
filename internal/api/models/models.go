package models

// All lists every entity in migration order.
func All() []any {
	return []any{
		&User{},
		&Follow{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Favorite{},
		&ShoppingCart{},
		&RevokedToken{},
	}
}
