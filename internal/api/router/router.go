package router

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodgram/internal/api/handler"
	"foodgram/internal/api/middleware"
	"foodgram/internal/api/models"
	"foodgram/internal/api/service"
	"foodgram/internal/config"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Tags         service.TagService
	Ingredients  service.IngredientService
	Recipes      service.RecipeService
	Relations    service.RelationService
	ShoppingCart service.ShoppingCartService
}

// New assembles the gin engine with middleware and the /api route table.
// Local media files are served under MEDIA_URL when the local storage
// backend is active.
func New(cfg *config.Config, svc Services, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg)))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimitMiddleware())

	if cfg.StorageBackend == "local" {
		r.Group(mediaPrefix(cfg.MediaURL), middleware.NoSniff()).Static("/", cfg.MediaRoot)
	}

	paging := handler.Paging{Default: cfg.PageSize, Max: cfg.MaxPageSize}
	authRequired := middleware.AuthMiddleware(svc.Auth)
	authOptional := middleware.OptionalAuth(svc.Auth)

	authH := handler.NewAuthHandler(svc.Auth, log)
	userH := handler.NewUserHandler(svc.Users, paging, log)
	tagH := handler.NewTagHandler(svc.Tags, log)
	ingredientH := handler.NewIngredientHandler(svc.Ingredients, log)
	recipeH := handler.NewRecipeHandler(svc.Recipes, svc.Relations, svc.ShoppingCart, paging, log)
	rootH := handler.NewRootHandler(cfg.SiteHeader, map[string]string{
		"users":       "/api/users/",
		"tags":        "/api/tags/",
		"ingredients": "/api/ingredients/",
		"recipes":     "/api/recipes/",
	})

	api := r.Group("/api")
	api.GET("/", rootH.Index)

	auth := api.Group("/auth/token")
	{
		auth.POST("/login/", authH.Login)
		auth.POST("/logout/", authRequired, authH.Logout)
	}

	users := api.Group("/users")
	{
		users.GET("/", authOptional, userH.List)
		users.POST("/", userH.Create)
		users.GET("/me/", authRequired, userH.Me)
		users.POST("/set_password/", authRequired, userH.SetPassword)
		users.GET("/subscriptions/", authRequired, userH.Subscriptions)
		users.GET("/:id/", authOptional, userH.Get)
		users.POST("/:id/subscribe/", authRequired, userH.Subscribe)
		users.DELETE("/:id/subscribe/", authRequired, userH.Unsubscribe)
	}

	tags := api.Group("/tags")
	{
		tags.GET("/", tagH.List)
		tags.GET("/:id/", tagH.Get)
	}

	ingredients := api.Group("/ingredients")
	{
		ingredients.GET("/", ingredientH.List)
		ingredients.GET("/:id/", ingredientH.Get)
	}

	recipes := api.Group("/recipes")
	{
		recipes.GET("/", authOptional, recipeH.List)
		recipes.POST("/", authRequired, recipeH.Create)
		recipes.GET("/download_shopping_cart/", authRequired, recipeH.DownloadShoppingCart)
		recipes.GET("/:id/", authOptional, recipeH.Get)
		recipes.PATCH("/:id/", authRequired, recipeH.Update)
		recipes.PUT("/:id/", authRequired, recipeH.Update)
		recipes.DELETE("/:id/", authRequired, recipeH.Delete)
		recipes.POST("/:id/favorite/", authRequired, recipeH.AddRelation(models.RelationFavorite))
		recipes.DELETE("/:id/favorite/", authRequired, recipeH.RemoveRelation(models.RelationFavorite))
		recipes.POST("/:id/shopping_cart/", authRequired, recipeH.AddRelation(models.RelationShoppingCart))
		recipes.DELETE("/:id/shopping_cart/", authRequired, recipeH.RemoveRelation(models.RelationShoppingCart))
	}

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = cfg.CORSOrigins
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	c.ExposeHeaders = []string{"Content-Disposition"}
	c.MaxAge = 12 * time.Hour
	for _, o := range cfg.CORSOrigins {
		if o == "*" {
			c.AllowOrigins = nil
			c.AllowAllOrigins = true
			break
		}
	}
	return c
}

// mediaPrefix turns "/media/" into the "/media" route prefix.
func mediaPrefix(mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		mediaURL = u.Path
	}
	p := "/" + strings.Trim(mediaURL, "/")
	if p == "/" {
		return "/media"
	}
	return p
}
