package dto

import "foodgram/internal/api/models"

type TagResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientInput is one {id, amount} entry of the write shape.
type RecipeIngredientInput struct {
	ID     int64 `json:"id" binding:"required"`
	Amount int   `json:"amount" binding:"required,min=1,max=32000"`
}

// RecipeWriteRequest used for POST, PUT and PATCH /api/recipes/.
// Scalars are pointers so updates can leave them unchanged; tags and
// ingredients are always replaced.
type RecipeWriteRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []int64                 `json:"tags" binding:"required,min=1"`
	Image       *string                 `json:"image,omitempty"`
	Name        *string                 `json:"name,omitempty" binding:"omitempty,min=1,max=200"`
	Text        *string                 `json:"text,omitempty" binding:"omitempty,min=1"`
	CookingTime *int                    `json:"cooking_time,omitempty" binding:"omitempty,min=1,max=32000"`
}

type RecipeIngredientResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the read shape returned after every recipe read or write.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeShortResponse is returned by favorite and cart toggles and in
// subscription previews.
type RecipeShortResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ViewerFlags are the viewer-relative booleans of a recipe. They stay false
// for anonymous viewers.
type ViewerFlags struct {
	Favorited        bool
	InShoppingCart   bool
	AuthorSubscribed bool
}

// Converters
func FromTag(t models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func FromTags(list []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(list))
	for _, t := range list {
		out = append(out, FromTag(t))
	}
	return out
}

func FromIngredient(i models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func FromIngredients(list []models.Ingredient) []IngredientResponse {
	out := make([]IngredientResponse, 0, len(list))
	for _, i := range list {
		out = append(out, FromIngredient(i))
	}
	return out
}

// FromRecipe expects Author, Tags and Ingredients.Ingredient to be loaded.
func FromRecipe(r *models.Recipe, imageURL string, flags ViewerFlags) RecipeResponse {
	resp := RecipeResponse{
		ID:               r.ID,
		Tags:             FromTags(r.Tags),
		Ingredients:      make([]RecipeIngredientResponse, 0, len(r.Ingredients)),
		IsFavorited:      flags.Favorited,
		IsInShoppingCart: flags.InShoppingCart,
		Name:             r.Name,
		Image:            imageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if r.Author != nil {
		resp.Author = FromUser(r.Author, flags.AuthorSubscribed)
	}
	for _, ri := range r.Ingredients {
		item := RecipeIngredientResponse{ID: ri.IngredientID, Amount: ri.Amount}
		if ri.Ingredient != nil {
			item.Name = ri.Ingredient.Name
			item.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

func FromRecipeShort(r *models.Recipe, imageURL string) RecipeShortResponse {
	return RecipeShortResponse{ID: r.ID, Name: r.Name, Image: imageURL, CookingTime: r.CookingTime}
}
