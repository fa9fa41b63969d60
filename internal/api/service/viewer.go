package service

import (
	"context"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/storage"
)

// Anonymous is the viewer id of unauthenticated requests.
const Anonymous int64 = 0

// presenter builds read shapes with the viewer-relative flags filled in.
// Anonymous viewers always get false flags.
type presenter struct {
	follows   repository.FollowRepository
	relations repository.RelationRepository
	images    storage.ImageStore
}

func (p presenter) recipes(ctx context.Context, viewerID int64, list []models.Recipe) ([]dto.RecipeResponse, error) {
	out := make([]dto.RecipeResponse, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	favorited, inCart, followed := map[int64]bool{}, map[int64]bool{}, map[int64]bool{}
	if viewerID != Anonymous {
		recipeIDs := make([]int64, 0, len(list))
		authorIDs := make([]int64, 0, len(list))
		for _, r := range list {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var err error
		if favorited, err = p.relations.RecipeIDsAmong(ctx, models.RelationFavorite, viewerID, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = p.relations.RecipeIDsAmong(ctx, models.RelationShoppingCart, viewerID, recipeIDs); err != nil {
			return nil, err
		}
		if followed, err = p.follows.FollowedAmong(ctx, viewerID, authorIDs); err != nil {
			return nil, err
		}
	}

	for i := range list {
		r := &list[i]
		out = append(out, dto.FromRecipe(r, p.images.URL(r.Image), dto.ViewerFlags{
			Favorited:        favorited[r.ID],
			InShoppingCart:   inCart[r.ID],
			AuthorSubscribed: followed[r.AuthorID],
		}))
	}
	return out, nil
}

func (p presenter) recipe(ctx context.Context, viewerID int64, r *models.Recipe) (*dto.RecipeResponse, error) {
	list, err := p.recipes(ctx, viewerID, []models.Recipe{*r})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (p presenter) users(ctx context.Context, viewerID int64, list []models.User) ([]dto.UserResponse, error) {
	followed := map[int64]bool{}
	if viewerID != Anonymous && len(list) > 0 {
		ids := make([]int64, 0, len(list))
		for _, u := range list {
			ids = append(ids, u.ID)
		}
		var err error
		if followed, err = p.follows.FollowedAmong(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]dto.UserResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.FromUser(&list[i], followed[list[i].ID]))
	}
	return out, nil
}

func (p presenter) short(r *models.Recipe) dto.RecipeShortResponse {
	return dto.FromRecipeShort(r, p.images.URL(r.Image))
}
