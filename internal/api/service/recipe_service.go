package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/storage"
)

const (
	imageKeyPrefix = "recipes/images/"
	msgRequired    = "this field is required"
)

// RecipeQuery holds the list filters of GET /recipes/. The viewer filters
// are ignored for anonymous viewers.
type RecipeQuery struct {
	TagSlugs         []string
	AuthorID         int64
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService interface {
	List(ctx context.Context, viewerID int64, query RecipeQuery, page dto.Pagination) ([]dto.RecipeResponse, int64, error)
	Get(ctx context.Context, viewerID, recipeID int64) (*dto.RecipeResponse, error)
	Create(ctx context.Context, userID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error)
	Update(ctx context.Context, userID, recipeID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, userID, recipeID int64) error
}

type recipeService struct {
	recipes     repository.RecipeRepository
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	images      storage.ImageStore
	present     presenter
	maxImage    int
	log         *zap.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	follows repository.FollowRepository,
	relations repository.RelationRepository,
	images storage.ImageStore,
	maxImageBytes int,
	log *zap.Logger,
) RecipeService {
	return &recipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		present:     presenter{follows: follows, relations: relations, images: images},
		maxImage:    maxImageBytes,
		log:         log,
	}
}

func (s *recipeService) List(ctx context.Context, viewerID int64, query RecipeQuery, page dto.Pagination) ([]dto.RecipeResponse, int64, error) {
	filter := repository.RecipeFilter{TagSlugs: query.TagSlugs, AuthorID: query.AuthorID}
	if viewerID != Anonymous {
		if query.IsFavorited {
			filter.FavoritedBy = viewerID
		}
		if query.IsInShoppingCart {
			filter.InCartOf = viewerID
		}
	}

	list, total, err := s.recipes.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.present.recipes(ctx, viewerID, list)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *recipeService) Get(ctx context.Context, viewerID, recipeID int64) (*dto.RecipeResponse, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return s.present.recipe(ctx, viewerID, recipe)
}

func (s *recipeService) find(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) Create(ctx context.Context, userID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	in, err := s.validate(ctx, req, true)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    userID,
		Name:        *req.Name,
		Text:        *req.Text,
		CookingTime: *req.CookingTime,
	}
	if recipe.Image, err = s.storeImage(ctx, in.image); err != nil {
		return nil, err
	}

	if err := s.recipes.Create(ctx, recipe, in.tags, in.items); err != nil {
		s.discardImage(ctx, recipe.Image)
		return nil, s.persistError("create", err)
	}
	s.log.Info("recipe created", zap.Int64("recipe_id", recipe.ID), zap.Int64("author_id", userID))

	// answer with the read shape, never an echo of the input
	return s.Get(ctx, userID, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, userID, recipeID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}

	in, err := s.validate(ctx, req, false)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}
	oldImage := recipe.Image
	if in.image != nil {
		if recipe.Image, err = s.storeImage(ctx, in.image); err != nil {
			return nil, err
		}
	}

	if err := s.recipes.Update(ctx, recipe, in.tags, in.items); err != nil {
		if recipe.Image != oldImage {
			s.discardImage(ctx, recipe.Image)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, s.persistError("update", err)
	}
	if recipe.Image != oldImage {
		s.discardImage(ctx, oldImage)
	}
	s.log.Info("recipe updated", zap.Int64("recipe_id", recipe.ID))

	return s.Get(ctx, userID, recipe.ID)
}

func (s *recipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return ErrNotRecipeAuthor
	}
	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	s.discardImage(ctx, recipe.Image)
	s.log.Info("recipe deleted", zap.Int64("recipe_id", recipeID))
	return nil
}

// recipeInput is a write request that passed validation.
type recipeInput struct {
	tags  []models.Tag
	items []models.RecipeIngredient
	image *dto.Image
}

// validate checks the whole write shape and reports every problem at once.
// Scalars and the image are required on create and optional on update;
// tags and ingredients are always required.
func (s *recipeService) validate(ctx context.Context, req dto.RecipeWriteRequest, creating bool) (*recipeInput, error) {
	verr := &ValidationError{}
	in := &recipeInput{}

	switch {
	case req.Name == nil:
		if creating {
			verr.Add("name", msgRequired)
		}
	case strings.TrimSpace(*req.Name) == "":
		verr.Add("name", "this field may not be blank")
	case len([]rune(*req.Name)) > 200:
		verr.Add("name", "ensure this field has no more than 200 characters")
	}

	switch {
	case req.Text == nil:
		if creating {
			verr.Add("text", msgRequired)
		}
	case strings.TrimSpace(*req.Text) == "":
		verr.Add("text", "this field may not be blank")
	}

	switch {
	case req.CookingTime == nil:
		if creating {
			verr.Add("cooking_time", msgRequired)
		}
	case *req.CookingTime < 1:
		verr.Add("cooking_time", "ensure this value is greater than or equal to 1")
	}

	switch {
	case req.Image == nil || *req.Image == "":
		if creating {
			verr.Add("image", msgRequired)
		}
	default:
		img, err := dto.DecodeImage(*req.Image, s.maxImage)
		if err != nil {
			verr.Add("image", err.Error())
		}
		in.image = img
	}

	tags, err := s.validateTags(ctx, req.Tags, verr)
	if err != nil {
		return nil, err
	}
	in.tags = tags

	items, err := s.validateIngredients(ctx, req.Ingredients, verr)
	if err != nil {
		return nil, err
	}
	in.items = items

	if verr.HasErrors() {
		return nil, verr
	}
	return in, nil
}

func (s *recipeService) validateTags(ctx context.Context, ids []int64, verr *ValidationError) ([]models.Tag, error) {
	if len(ids) == 0 {
		verr.Add("tags", "at least one tag is required")
		return nil, nil
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			verr.Add("tags", fmt.Sprintf("tag %d is listed more than once", id))
			return nil, nil
		}
		seen[id] = true
	}

	tags, err := s.tags.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		found := make(map[int64]bool, len(tags))
		for _, t := range tags {
			found[t.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				verr.Add("tags", fmt.Sprintf("invalid pk %d, object does not exist", id))
			}
		}
	}
	return tags, nil
}

func (s *recipeService) validateIngredients(ctx context.Context, inputs []dto.RecipeIngredientInput, verr *ValidationError) ([]models.RecipeIngredient, error) {
	if len(inputs) == 0 {
		verr.Add("ingredients", "at least one ingredient is required")
		return nil, nil
	}

	seen := make(map[int64]int, len(inputs))
	for _, it := range inputs {
		seen[it.ID]++
		if seen[it.ID] == 2 {
			verr.Add("ingredients", fmt.Sprintf("ingredient %d is listed more than once", it.ID))
		}
	}
	if len(seen) != len(inputs) {
		return nil, nil
	}

	ids := make([]int64, 0, len(inputs))
	items := make([]models.RecipeIngredient, 0, len(inputs))
	for _, it := range inputs {
		if it.Amount < 1 {
			verr.Add("ingredients", fmt.Sprintf("amount of ingredient %d must be at least 1", it.ID))
		}
		ids = append(ids, it.ID)
		items = append(items, models.RecipeIngredient{IngredientID: it.ID, Amount: it.Amount})
	}

	found, err := s.ingredients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		known := make(map[int64]bool, len(found))
		for _, ing := range found {
			known[ing.ID] = true
		}
		for _, id := range ids {
			if !known[id] {
				verr.Add("ingredients", fmt.Sprintf("invalid pk %d, object does not exist", id))
			}
		}
	}
	return items, nil
}

func (s *recipeService) storeImage(ctx context.Context, img *dto.Image) (string, error) {
	key := imageKeyPrefix + uuid.NewString() + "." + img.Ext
	if err := s.images.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

func (s *recipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete recipe image", zap.String("key", key), zap.Error(err))
	}
}

// persistError turns storage constraint violations into validation errors.
// Validation above should have caught them already.
func (s *recipeService) persistError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		s.log.Warn("recipe write hit a storage constraint", zap.String("op", op), zap.Error(err))
		return NewValidationError(NonFieldErrors, "the recipe conflicts with existing data")
	}
	return err
}
