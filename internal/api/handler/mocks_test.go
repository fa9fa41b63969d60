package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/models"
	"foodgram/internal/api/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *service.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, req dto.UserCreateRequest) (*dto.UserCreatedResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserCreatedResponse), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, viewerID int64, page dto.Pagination) ([]dto.UserResponse, int64, error) {
	args := m.Called(ctx, viewerID, page)
	list, _ := args.Get(0).([]dto.UserResponse)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Get(ctx context.Context, viewerID, userID int64) (*dto.UserResponse, error) {
	args := m.Called(ctx, viewerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *MockUserService) SetPassword(ctx context.Context, userID int64, req dto.SetPasswordRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *MockUserService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*dto.SubscriptionResponse, error) {
	args := m.Called(ctx, userID, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscriptionResponse), args.Error(1)
}

func (m *MockUserService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	return m.Called(ctx, userID, authorID).Error(0)
}

func (m *MockUserService) Subscriptions(ctx context.Context, userID int64, page dto.Pagination, recipesLimit int) ([]dto.SubscriptionResponse, int64, error) {
	args := m.Called(ctx, userID, page, recipesLimit)
	list, _ := args.Get(0).([]dto.SubscriptionResponse)
	return list, args.Get(1).(int64), args.Error(2)
}

type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) List(ctx context.Context, viewerID int64, query service.RecipeQuery, page dto.Pagination) ([]dto.RecipeResponse, int64, error) {
	args := m.Called(ctx, viewerID, query, page)
	list, _ := args.Get(0).([]dto.RecipeResponse)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) Get(ctx context.Context, viewerID, recipeID int64) (*dto.RecipeResponse, error) {
	args := m.Called(ctx, viewerID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, userID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, userID, recipeID int64, req dto.RecipeWriteRequest) (*dto.RecipeResponse, error) {
	args := m.Called(ctx, userID, recipeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecipeResponse), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	return m.Called(ctx, userID, recipeID).Error(0)
}

type MockRelationService struct {
	mock.Mock
}

func (m *MockRelationService) Add(ctx context.Context, kind models.RelationKind, userID, recipeID int64) (*dto.RecipeShortResponse, error) {
	args := m.Called(ctx, kind, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RecipeShortResponse), args.Error(1)
}

func (m *MockRelationService) Remove(ctx context.Context, kind models.RelationKind, userID, recipeID int64) error {
	return m.Called(ctx, kind, userID, recipeID).Error(0)
}

type MockShoppingCartService struct {
	mock.Mock
}

func (m *MockShoppingCartService) Export(ctx context.Context, userID int64, format string) (*service.Document, error) {
	args := m.Called(ctx, userID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Document), args.Error(1)
}

type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) List(ctx context.Context) ([]dto.TagResponse, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]dto.TagResponse)
	return list, args.Error(1)
}

func (m *MockTagService) Get(ctx context.Context, id int64) (*dto.TagResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TagResponse), args.Error(1)
}

type MockIngredientService struct {
	mock.Mock
}

func (m *MockIngredientService) Search(ctx context.Context, prefix string) ([]dto.IngredientResponse, error) {
	args := m.Called(ctx, prefix)
	list, _ := args.Get(0).([]dto.IngredientResponse)
	return list, args.Error(1)
}

func (m *MockIngredientService) Get(ctx context.Context, id int64) (*dto.IngredientResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IngredientResponse), args.Error(1)
}
