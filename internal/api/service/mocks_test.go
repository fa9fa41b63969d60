package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"foodgram/internal/api/models"
	"foodgram/internal/api/repository"
	"foodgram/internal/shoppinglist"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

// MockFollowRepository mocks the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Create(ctx context.Context, userID, authorID int64) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockFollowRepository) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) FollowedAmong(ctx context.Context, userID int64, authorIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, authorIDs)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockFollowRepository) ListAuthors(ctx context.Context, userID int64, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// MockRecipeRepository mocks the RecipeRepository interface
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	args := m.Called(ctx, recipe, tags, items)
	if args.Error(0) == nil && recipe.ID == 0 {
		recipe.ID = 42
	}
	return args.Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, items []models.RecipeIngredient) error {
	return m.Called(ctx, recipe, tags, items).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id int64) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, filter repository.RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) ListByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, authorID, limit)
	return args.Get(0).([]models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) CountByAuthors(ctx context.Context, authorIDs []int64) (map[int64]int64, error) {
	args := m.Called(ctx, authorIDs)
	return args.Get(0).(map[int64]int64), args.Error(1)
}

// MockTagRepository mocks the TagRepository interface
type MockTagRepository struct {
	mock.Mock
}

func (m *MockTagRepository) List(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockTagRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Tag, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Tag), args.Error(1)
}

// MockIngredientRepository mocks the IngredientRepository interface
type MockIngredientRepository struct {
	mock.Mock
}

func (m *MockIngredientRepository) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ingredient), args.Error(1)
}

func (m *MockIngredientRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Ingredient, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

// MockRelationRepository mocks the RelationRepository interface
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error {
	return m.Called(ctx, kind, userID, recipeID).Error(0)
}

func (m *MockRelationRepository) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error) {
	args := m.Called(ctx, kind, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationRepository) Exists(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (bool, error) {
	args := m.Called(ctx, kind, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationRepository) RecipeIDsAmong(ctx context.Context, kind models.RelationKind, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, kind, userID, recipeIDs)
	return args.Get(0).(map[int64]bool), args.Error(1)
}

func (m *MockRelationRepository) CartRows(ctx context.Context, userID int64) ([]shoppinglist.Row, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]shoppinglist.Row), args.Error(1)
}

// MockRevokedTokenRepository mocks the RevokedTokenRepository interface
type MockRevokedTokenRepository struct {
	mock.Mock
}

func (m *MockRevokedTokenRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockRevokedTokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockImageStore mocks storage.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

// MockCache mocks cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}
