// Package server wires configuration, storage and services into a running
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodgram/internal/api/repository"
	"foodgram/internal/api/router"
	"foodgram/internal/api/service"
	"foodgram/internal/api/validation"
	"foodgram/internal/cache"
	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/shoppinglist"
	"foodgram/internal/storage"
)

const (
	shutdownTimeout   = 10 * time.Second
	revokedPurgeEvery = time.Hour
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	redis   *redis.Client
	router  *gin.Engine
	revoked repository.RevokedTokenRepository
	http    *http.Server
}

// New opens the database and redis connections, migrates the schema and
// builds the route table.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if err := validation.Register(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		database.Close(db)
		return nil, err
	}

	rdb, err := database.OpenRedis(cfg, log)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	images, err := storage.New(ctx, cfg)
	if err != nil {
		database.Close(db)
		if rdb != nil {
			rdb.Close()
		}
		return nil, fmt.Errorf("init image storage: %w", err)
	}

	s := &Server{cfg: cfg, log: log, db: db, redis: rdb}
	s.router = router.New(cfg, s.services(images), log)
	return s, nil
}

func (s *Server) services(images storage.ImageStore) router.Services {
	c := cache.New(s.redis, s.cfg.CacheTTL)

	users := repository.NewUserRepository(s.db)
	follows := repository.NewFollowRepository(s.db)
	tags := repository.NewTagRepository(s.db)
	ingredients := repository.NewIngredientRepository(s.db)
	recipes := repository.NewRecipeRepository(s.db)
	relations := repository.NewRelationRepository(s.db)
	s.revoked = repository.NewRevokedTokenRepository(s.db)

	cart := shoppinglist.RenderOptions{Title: s.cfg.ShoppingListTitle, FontPath: s.cfg.PDFFontPath}

	return router.Services{
		Auth:         service.NewAuthService(users, s.revoked, s.cfg, s.log),
		Users:        service.NewUserService(users, follows, recipes, relations, images, s.log),
		Tags:         service.NewTagService(tags, c, s.log),
		Ingredients:  service.NewIngredientService(ingredients, c, s.log),
		Recipes:      service.NewRecipeService(recipes, tags, ingredients, follows, relations, images, s.cfg.UploadMaxBytes, s.log),
		Relations:    service.NewRelationService(relations, recipes, images, s.log),
		ShoppingCart: service.NewShoppingCartService(relations, cart, s.log),
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go PurgeRevokedTokens(janitorCtx, s.revoked, revokedPurgeEvery, s.log)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases the database and redis connections.
func (s *Server) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, database.Close(s.db))
	return errors.Join(errs...)
}

// Handler exposes the route table.
func (s *Server) Handler() http.Handler {
	return s.router
}
