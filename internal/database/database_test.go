package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodgram/internal/api/models"
	"foodgram/internal/config"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:       "sqlite",
		DatabaseURL:    filepath.Join(t.TempDir(), "foodgram.db"),
		DBMaxOpenConns: 2,
		DBMaxIdleConns: 1,
	}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db, zap.NewNop()))
	for _, table := range []string{"users", "recipes", "recipe_ingredients", "favorites", "shopping_carts", "revoked_tokens"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// migrating an up-to-date schema is a no-op
	assert.NoError(t, Migrate(db, zap.NewNop()))
}

func TestMigrate_BackfillsIngredientSearchName(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "foodgram.db")}
	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, Migrate(db, zap.NewNop()))

	require.NoError(t, db.Exec("INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)", "Соль", "г").Error)
	require.NoError(t, Migrate(db, zap.NewNop()))

	var ing models.Ingredient
	require.NoError(t, db.Where("name = ?", "Соль").First(&ing).Error)
	assert.Equal(t, "соль", ing.SearchName)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"}, zap.NewNop())

	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenRedis(t *testing.T) {
	rdb, err := OpenRedis(&config.Config{}, zap.NewNop())
	assert.NoError(t, err)
	assert.Nil(t, rdb)

	_, err = OpenRedis(&config.Config{RedisURL: "not a url"}, zap.NewNop())
	assert.ErrorContains(t, err, "invalid REDIS_URL")
}
