package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodgram/internal/api/dto"
	"foodgram/internal/api/middleware"
	"foodgram/internal/api/models"
	"foodgram/internal/api/service"
	"foodgram/internal/api/validation"
)

const testToken = "test-token"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testPaging = Paging{Default: 6, Max: 100}

func setupRouter() *gin.Engine {
	return gin.New()
}

// authAs authenticates requests carrying testToken as userID.
func authAs(userID int64) gin.HandlerFunc {
	authService := new(MockAuthService)
	authService.On("ValidateToken", mock.Anything, testToken).Return(&service.Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-test"},
	}, nil)
	return middleware.OptionalAuth(authService)
}

func performRequest(r http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Token "+testToken)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKey    string
	}{
		{"validation", service.NewValidationError("name", "bad"), http.StatusBadRequest, "name"},
		{"credentials", service.ErrInvalidCredentials, http.StatusBadRequest, service.NonFieldErrors},
		{"token", service.ErrInvalidToken, http.StatusUnauthorized, "detail"},
		{"not author", service.ErrNotRecipeAuthor, http.StatusForbidden, "detail"},
		{"recipe missing", service.ErrRecipeNotFound, http.StatusNotFound, "detail"},
		{"wrapped user missing", errors.Join(errors.New("ctx"), service.ErrUserNotFound), http.StatusNotFound, "detail"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "detail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, decodeBody(t, w), tt.wantKey)
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, zap.NewNop(), errors.New("password=hunter2"))

	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestTopLevelField(t *testing.T) {
	assert.Equal(t, "ingredients", topLevelField("RecipeWriteRequest.ingredients[0].amount"))
	assert.Equal(t, "name", topLevelField("RecipeWriteRequest.name"))
	assert.Equal(t, "ingredients", topLevelField("ingredients.amount"))
	assert.Equal(t, "tags", topLevelField("tags"))
}

func TestBindingErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKeys []string
	}{
		{"empty body", "", []string{service.NonFieldErrors}},
		{"malformed json", "{", []string{service.NonFieldErrors}},
		{"missing lists", `{"name":"Soup"}`, []string{"ingredients", "tags"}},
		{"nested amount", `{"ingredients":[{"id":1,"amount":0}],"tags":[1]}`, []string{"ingredients"}},
		{"wrong type", `{"ingredients":[{"id":1,"amount":1}],"tags":[1],"cooking_time":"soon"}`, []string{"cooking_time"}},
		{"blank name", `{"ingredients":[{"id":1,"amount":1}],"tags":[1],"name":""}`, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes := new(MockRecipeService)
			h := NewRecipeHandler(recipes, nil, nil, testPaging, zap.NewNop())
			router := setupRouter()
			router.POST("/recipes/", authAs(1), h.Create)

			w := performRequest(router, http.MethodPost, "/recipes/", tt.body, true)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			for _, key := range tt.wantKeys {
				assert.Contains(t, body, key)
			}
			recipes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLogin(t *testing.T) {
	authService := new(MockAuthService)
	authService.On("Login", mock.Anything, "cook@example.com", "secret-pass").Return("jwt-value", nil)
	authService.On("Login", mock.Anything, "cook@example.com", "wrong").Return("", service.ErrInvalidCredentials)

	h := NewAuthHandler(authService, zap.NewNop())
	router := setupRouter()
	router.POST("/auth/token/login/", h.Login)

	w := performRequest(router, http.MethodPost, "/auth/token/login/",
		dto.LoginRequest{Email: "cook@example.com", Password: "secret-pass"}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"auth_token":"jwt-value"}`, w.Body.String())

	w = performRequest(router, http.MethodPost, "/auth/token/login/",
		dto.LoginRequest{Email: "cook@example.com", Password: "wrong"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), service.NonFieldErrors)

	w = performRequest(router, http.MethodPost, "/auth/token/login/", `{"email":"not-an-email"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "email")
	assert.Contains(t, body, "password")
}

func TestLogout(t *testing.T) {
	authService := new(MockAuthService)
	authService.On("ValidateToken", mock.Anything, testToken).
		Return(&service.Claims{UserID: 3, RegisteredClaims: jwt.RegisteredClaims{ID: "jti-3"}}, nil)
	authService.On("Logout", mock.Anything, mock.MatchedBy(func(c *service.Claims) bool {
		return c.ID == "jti-3"
	})).Return(nil)

	h := NewAuthHandler(authService, zap.NewNop())
	router := setupRouter()
	router.POST("/auth/token/logout/", middleware.AuthMiddleware(authService), h.Logout)

	w := performRequest(router, http.MethodPost, "/auth/token/logout/", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodPost, "/auth/token/logout/", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	authService.AssertNumberOfCalls(t, "Logout", 1)
}

func TestUserList_Pagination(t *testing.T) {
	users := new(MockUserService)
	users.On("List", mock.Anything, int64(0), dto.Pagination{Page: 2, Limit: 1}).
		Return([]dto.UserResponse{{ID: 2, Username: "b"}}, int64(3), nil)

	h := NewUserHandler(users, testPaging, zap.NewNop())
	router := setupRouter()
	router.GET("/api/users/", authAs(0), h.List)

	w := performRequest(router, http.MethodGet, "/api/users/?page=2&limit=1", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	var page dto.Paginated[dto.UserResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.EqualValues(t, 3, page.Count)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/api/users/?limit=1&page=3", *page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users/?limit=1", *page.Previous)
	assert.Len(t, page.Results, 1)
}

func TestUserCreate(t *testing.T) {
	req := dto.UserCreateRequest{
		Email: "cook@example.com", Username: "cook", FirstName: "Ann", LastName: "Cook", Password: "long-enough",
	}
	users := new(MockUserService)
	users.On("Register", mock.Anything, req).Return(&dto.UserCreatedResponse{
		ID: 1, Email: req.Email, Username: req.Username, FirstName: req.FirstName, LastName: req.LastName,
	}, nil)

	h := NewUserHandler(users, testPaging, zap.NewNop())
	router := setupRouter()
	router.POST("/users/", h.Create)

	w := performRequest(router, http.MethodPost, "/users/", req, false)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	bad := req
	bad.Username = "bad name!"
	bad.Password = "short"
	w = performRequest(router, http.MethodPost, "/users/", bad, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "username")
	assert.Contains(t, body, "password")
	users.AssertNumberOfCalls(t, "Register", 1)
}

func TestUserGetAndMe(t *testing.T) {
	users := new(MockUserService)
	users.On("Get", mock.Anything, int64(5), int64(9)).Return(&dto.UserResponse{ID: 9, IsSubscribed: true}, nil)
	users.On("Get", mock.Anything, int64(5), int64(5)).Return(&dto.UserResponse{ID: 5}, nil)
	users.On("Get", mock.Anything, int64(5), int64(404)).Return(nil, service.ErrUserNotFound)

	h := NewUserHandler(users, testPaging, zap.NewNop())
	router := setupRouter()
	router.GET("/users/me/", authAs(5), h.Me)
	router.GET("/users/:id/", authAs(5), h.Get)

	w := performRequest(router, http.MethodGet, "/users/9/", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["is_subscribed"])

	w = performRequest(router, http.MethodGet, "/users/me/", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decodeBody(t, w)["id"])

	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, "/users/404/", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, "/users/abc/", nil, true).Code)
}

func TestSetPassword(t *testing.T) {
	req := dto.SetPasswordRequest{NewPassword: "brand-new-pass", CurrentPassword: "old-pass"}
	users := new(MockUserService)
	users.On("SetPassword", mock.Anything, int64(4), req).Return(nil).Once()
	users.On("SetPassword", mock.Anything, int64(4), req).
		Return(service.NewValidationError("current_password", "wrong password"))

	h := NewUserHandler(users, testPaging, zap.NewNop())
	router := setupRouter()
	router.POST("/users/set_password/", authAs(4), h.SetPassword)

	assert.Equal(t, http.StatusNoContent, performRequest(router, http.MethodPost, "/users/set_password/", req, true).Code)

	w := performRequest(router, http.MethodPost, "/users/set_password/", req, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "current_password")
}

func TestSubscriptions(t *testing.T) {
	users := new(MockUserService)
	users.On("Subscriptions", mock.Anything, int64(2), dto.Pagination{Page: 1, Limit: 6}, 3).
		Return([]dto.SubscriptionResponse(nil), int64(0), nil)
	users.On("Subscribe", mock.Anything, int64(2), int64(8), 0).Return(&dto.SubscriptionResponse{
		UserResponse: dto.UserResponse{ID: 8, IsSubscribed: true},
		Recipes:      []dto.RecipeShortResponse{},
		RecipesCount: 0,
	}, nil)
	users.On("Subscribe", mock.Anything, int64(2), int64(2), 0).
		Return(nil, service.NewValidationError(service.NonFieldErrors, "you cannot subscribe to yourself"))
	users.On("Unsubscribe", mock.Anything, int64(2), int64(8)).Return(nil)

	h := NewUserHandler(users, testPaging, zap.NewNop())
	router := setupRouter()
	router.GET("/users/subscriptions/", authAs(2), h.Subscriptions)
	router.POST("/users/:id/subscribe/", authAs(2), h.Subscribe)
	router.DELETE("/users/:id/subscribe/", authAs(2), h.Unsubscribe)

	w := performRequest(router, http.MethodGet, "/users/subscriptions/?recipes_limit=3", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)

	w = performRequest(router, http.MethodPost, "/users/8/subscribe/", nil, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, decodeBody(t, w), "recipes_count")

	w = performRequest(router, http.MethodPost, "/users/2/subscribe/", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodDelete, "/users/8/subscribe/", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	users.AssertExpectations(t)
}

func TestCatalogHandlers(t *testing.T) {
	tags := new(MockTagService)
	tags.On("List", mock.Anything).Return([]dto.TagResponse{{ID: 1, Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}}, nil)
	tags.On("Get", mock.Anything, int64(2)).Return(nil, service.ErrTagNotFound)
	ingredients := new(MockIngredientService)
	ingredients.On("Search", mock.Anything, "sa").Return([]dto.IngredientResponse{{ID: 3, Name: "salt", MeasurementUnit: "g"}}, nil)
	ingredients.On("Get", mock.Anything, int64(3)).Return(&dto.IngredientResponse{ID: 3, Name: "salt", MeasurementUnit: "g"}, nil)

	th := NewTagHandler(tags, zap.NewNop())
	ih := NewIngredientHandler(ingredients, zap.NewNop())
	router := setupRouter()
	router.GET("/tags/", th.List)
	router.GET("/tags/:id/", th.Get)
	router.GET("/ingredients/", ih.List)
	router.GET("/ingredients/:id/", ih.Get)

	w := performRequest(router, http.MethodGet, "/tags/", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Breakfast","color":"#E26C2D","slug":"breakfast"}]`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, "/tags/2/", nil, false).Code)

	w = performRequest(router, http.MethodGet, "/ingredients/?name=sa", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":3,"name":"salt","measurement_unit":"g"}]`, w.Body.String())

	w = performRequest(router, http.MethodGet, "/ingredients/3/", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecipeList_Filters(t *testing.T) {
	recipes := new(MockRecipeService)
	want := service.RecipeQuery{TagSlugs: []string{"lunch", "dinner"}, AuthorID: 4, IsFavorited: true}
	recipes.On("List", mock.Anything, int64(6), want, dto.Pagination{Page: 1, Limit: 6}).
		Return([]dto.RecipeResponse{{ID: 1}}, int64(1), nil)

	h := NewRecipeHandler(recipes, nil, nil, testPaging, zap.NewNop())
	router := setupRouter()
	router.GET("/recipes/", authAs(6), h.List)

	w := performRequest(router, http.MethodGet, "/recipes/?tags=lunch&tags=dinner&author=4&is_favorited=1&is_in_shopping_cart=0", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Nil(t, body["next"])

	w = performRequest(router, http.MethodGet, "/recipes/?is_favorited=yes&author=x", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = decodeBody(t, w)
	assert.Contains(t, body, "is_favorited")
	assert.Contains(t, body, "author")
	recipes.AssertNumberOfCalls(t, "List", 1)
}

func validWriteBody() map[string]any {
	return map[string]any{
		"ingredients":  []map[string]any{{"id": 1, "amount": 10}},
		"tags":         []int{1},
		"image":        "data:image/png;base64,AAAA",
		"name":         "Soup",
		"text":         "Boil.",
		"cooking_time": 5,
	}
}

func TestRecipeCreateUpdateDelete(t *testing.T) {
	recipes := new(MockRecipeService)
	isSoup := mock.MatchedBy(func(req dto.RecipeWriteRequest) bool {
		return req.Name != nil && *req.Name == "Soup" && len(req.Ingredients) == 1
	})
	recipes.On("Create", mock.Anything, int64(1), isSoup).Return(&dto.RecipeResponse{ID: 10, Name: "Soup"}, nil)
	recipes.On("Update", mock.Anything, int64(1), int64(10), isSoup).Return(&dto.RecipeResponse{ID: 10, Name: "Soup"}, nil)
	recipes.On("Update", mock.Anything, int64(1), int64(11), isSoup).Return(nil, service.ErrNotRecipeAuthor)
	recipes.On("Delete", mock.Anything, int64(1), int64(10)).Return(nil)
	recipes.On("Delete", mock.Anything, int64(1), int64(12)).Return(service.ErrRecipeNotFound)

	h := NewRecipeHandler(recipes, nil, nil, testPaging, zap.NewNop())
	router := setupRouter()
	router.POST("/recipes/", authAs(1), h.Create)
	router.PATCH("/recipes/:id/", authAs(1), h.Update)
	router.PUT("/recipes/:id/", authAs(1), h.Update)
	router.DELETE("/recipes/:id/", authAs(1), h.Delete)

	w := performRequest(router, http.MethodPost, "/recipes/", validWriteBody(), true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 10, decodeBody(t, w)["id"])

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPatch, "/recipes/10/", validWriteBody(), true).Code)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPut, "/recipes/10/", validWriteBody(), true).Code)
	assert.Equal(t, http.StatusForbidden, performRequest(router, http.MethodPatch, "/recipes/11/", validWriteBody(), true).Code)
	assert.Equal(t, http.StatusNoContent, performRequest(router, http.MethodDelete, "/recipes/10/", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodDelete, "/recipes/12/", nil, true).Code)
}

func TestRecipeRelations(t *testing.T) {
	relations := new(MockRelationService)
	relations.On("Add", mock.Anything, models.RelationFavorite, int64(3), int64(7)).
		Return(&dto.RecipeShortResponse{ID: 7, Name: "Soup", Image: "/media/a.png", CookingTime: 5}, nil)
	relations.On("Add", mock.Anything, models.RelationShoppingCart, int64(3), int64(7)).
		Return(nil, service.NewValidationError(service.NonFieldErrors, "the recipe is already in the shopping cart"))
	relations.On("Remove", mock.Anything, models.RelationShoppingCart, int64(3), int64(7)).Return(nil)
	relations.On("Remove", mock.Anything, models.RelationFavorite, int64(3), int64(99)).Return(service.ErrRecipeNotFound)

	h := NewRecipeHandler(nil, relations, nil, testPaging, zap.NewNop())
	router := setupRouter()
	router.POST("/recipes/:id/favorite/", authAs(3), h.AddRelation(models.RelationFavorite))
	router.DELETE("/recipes/:id/favorite/", authAs(3), h.RemoveRelation(models.RelationFavorite))
	router.POST("/recipes/:id/shopping_cart/", authAs(3), h.AddRelation(models.RelationShoppingCart))
	router.DELETE("/recipes/:id/shopping_cart/", authAs(3), h.RemoveRelation(models.RelationShoppingCart))

	w := performRequest(router, http.MethodPost, "/recipes/7/favorite/", nil, true)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":7,"name":"Soup","image":"/media/a.png","cooking_time":5}`, w.Body.String())

	w = performRequest(router, http.MethodPost, "/recipes/7/shopping_cart/", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), service.NonFieldErrors)

	assert.Equal(t, http.StatusNoContent, performRequest(router, http.MethodDelete, "/recipes/7/shopping_cart/", nil, true).Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodDelete, "/recipes/99/favorite/", nil, true).Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	cart := new(MockShoppingCartService)
	cart.On("Export", mock.Anything, int64(3), "").Return(&service.Document{
		Filename: "shopping_cart.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3"),
	}, nil)
	cart.On("Export", mock.Anything, int64(3), "txt").Return(&service.Document{
		Filename: "shopping_cart.txt", ContentType: "text/plain; charset=utf-8", Data: []byte("1. Salt - 8 g\n"),
	}, nil)
	cart.On("Export", mock.Anything, int64(3), "doc").
		Return(nil, service.NewValidationError("format", "unsupported format"))

	h := NewRecipeHandler(nil, nil, cart, testPaging, zap.NewNop())
	router := setupRouter()
	router.GET("/recipes/download_shopping_cart/", authAs(3), h.DownloadShoppingCart)

	w := performRequest(router, http.MethodGet, "/recipes/download_shopping_cart/", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_cart.pdf"`, w.Header().Get("Content-Disposition"))

	w = performRequest(router, http.MethodGet, "/recipes/download_shopping_cart/?format=txt", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1. Salt - 8 g\n", w.Body.String())

	assert.Equal(t, http.StatusBadRequest,
		performRequest(router, http.MethodGet, "/recipes/download_shopping_cart/?format=doc", nil, true).Code)
}

func TestRootIndex(t *testing.T) {
	h := NewRootHandler("Foodgram", map[string]string{"recipes": "/api/recipes/"})
	router := setupRouter()
	router.GET("/api/", h.Index)

	w := performRequest(router, http.MethodGet, "/api/?x=1", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"site_header":"Foodgram","resources":{"recipes":"http://example.com/api/recipes/"}}`, w.Body.String())
}
