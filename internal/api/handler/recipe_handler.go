package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/middleware"
	"foodgram/internal/api/models"
	"foodgram/internal/api/service"
)

type RecipeHandler struct {
	recipes   service.RecipeService
	relations service.RelationService
	cart      service.ShoppingCartService
	paging    Paging
	log       *zap.Logger
}

func NewRecipeHandler(
	recipes service.RecipeService,
	relations service.RelationService,
	cart service.ShoppingCartService,
	paging Paging,
	log *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, relations: relations, cart: cart, paging: paging, log: log}
}

// List handles GET /api/recipes/
func (h *RecipeHandler) List(c *gin.Context) {
	query, err := parseRecipeQuery(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	page := h.paging.parse(c)

	list, total, err := h.recipes.List(c.Request.Context(), middleware.CurrentUserID(c), query, page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(list, total, page, requestURL(c)))
}

func parseRecipeQuery(c *gin.Context) (service.RecipeQuery, error) {
	verr := &service.ValidationError{}
	query := service.RecipeQuery{TagSlugs: c.QueryArray("tags")}

	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			verr.Add("author", "select a valid author id")
		}
		query.AuthorID = id
	}

	var ok bool
	if query.IsFavorited, ok = parseFlag(c.Query("is_favorited")); !ok {
		verr.Add("is_favorited", "expected 0 or 1")
	}
	if query.IsInShoppingCart, ok = parseFlag(c.Query("is_in_shopping_cart")); !ok {
		verr.Add("is_in_shopping_cart", "expected 0 or 1")
	}

	if verr.HasErrors() {
		return query, verr
	}
	return query, nil
}

// parseFlag reads a 0/1 filter, an empty value is an unset filter.
func parseFlag(raw string) (bool, bool) {
	switch raw {
	case "", "0", "false":
		return false, true
	case "1", "true":
		return true, true
	}
	return false, false
}

// Create handles POST /api/recipes/
func (h *RecipeHandler) Create(c *gin.Context) {
	var req dto.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// Get handles GET /api/recipes/:id/
func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrRecipeNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Update handles PATCH and PUT /api/recipes/:id/
func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrRecipeNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req dto.RecipeWriteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), middleware.CurrentUserID(c), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Delete handles DELETE /api/recipes/:id/
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id", service.ErrRecipeNotFound)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRelation returns the POST handler of /favorite/ or /shopping_cart/.
func (h *RecipeHandler) AddRelation(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id", service.ErrRecipeNotFound)
		if err != nil {
			respondError(c, h.log, err)
			return
		}

		short, err := h.relations.Add(c.Request.Context(), kind, middleware.CurrentUserID(c), id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, short)
	}
}

// RemoveRelation returns the DELETE handler of /favorite/ or /shopping_cart/.
func (h *RecipeHandler) RemoveRelation(kind models.RelationKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c, "id", service.ErrRecipeNotFound)
		if err != nil {
			respondError(c, h.log, err)
			return
		}

		if err := h.relations.Remove(c.Request.Context(), kind, middleware.CurrentUserID(c), id); err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	doc, err := h.cart.Export(c.Request.Context(), middleware.CurrentUserID(c), c.Query("format"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
