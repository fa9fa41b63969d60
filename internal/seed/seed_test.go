package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodgram/internal/api/models"
	"foodgram/internal/cache"
	"foodgram/internal/testutil"
)

type recordingCache struct {
	deleted  []string
	prefixes []string
}

func (c *recordingCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (c *recordingCache) Set(context.Context, string, any) error         { return nil }
func (c *recordingCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}
func (c *recordingCache) DeletePrefix(_ context.Context, prefix string) error {
	c.prefixes = append(c.prefixes, prefix)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	rc := &recordingCache{}
	loader := NewLoader(db, rc, zap.NewNop())
	loader.BatchSize = 2

	dir := t.TempDir()
	writeFile(t, dir, IngredientsFile, "name,measurement_unit\nsalt,g\nflour,g\nmilk,ml\n\"eggs, large\",pcs\n")
	writeFile(t, dir, TagsFile, "name,color,slug\nBreakfast,#e26c2d,breakfast\nLunch,#49B64E,lunch\n")

	results, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	var ingredients []models.Ingredient
	require.NoError(t, db.Order("id").Find(&ingredients).Error)
	require.Len(t, ingredients, 4)
	assert.Equal(t, "eggs, large", ingredients[3].Name)

	var tag models.Tag
	require.NoError(t, db.Where("slug = ?", "breakfast").First(&tag).Error)
	assert.Equal(t, "#E26C2D", tag.Color)

	assert.Contains(t, rc.deleted, cache.TagsKey)
	assert.Contains(t, rc.prefixes, cache.IngredientSearchPrefix)
}

func TestLoadDir_IsRerunnable(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	loader := NewLoader(db, nil, zap.NewNop())

	dir := t.TempDir()
	writeFile(t, dir, IngredientsFile, "salt,g\npepper,g\n")

	_, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	writeFile(t, dir, IngredientsFile, "salt,g\npepper,g\nbasil,bunch\n")
	_, err = loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Ingredient{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestLoadDir_MissingIngredients(t *testing.T) {
	loader := NewLoader(testutil.NewSQLiteDB(t), nil, zap.NewNop())

	_, err := loader.LoadDir(context.Background(), t.TempDir())

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTags_InvalidColor(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	loader := NewLoader(db, nil, zap.NewNop())
	dir := t.TempDir()
	writeFile(t, dir, TagsFile, "Dinner,#12345,dinner\n")

	_, err := loader.LoadTags(context.Background(), filepath.Join(dir, TagsFile))

	assert.ErrorContains(t, err, ":1:")
	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.Zero(t, count)
}

func TestLoadIngredients_WrongFieldCount(t *testing.T) {
	loader := NewLoader(testutil.NewSQLiteDB(t), nil, zap.NewNop())
	dir := t.TempDir()
	writeFile(t, dir, IngredientsFile, "salt,g\npepper\n")

	_, err := loader.LoadIngredients(context.Background(), filepath.Join(dir, IngredientsFile))

	assert.Error(t, err)
}

func TestIsHeader(t *testing.T) {
	assert.True(t, isHeader([]string{"\ufeffName", " measurement_unit"}, ingredientHeader))
	assert.False(t, isHeader([]string{"salt", "g"}, ingredientHeader))
}

func TestWorkerPool_CollectsErrors(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3, zap.NewNop())
	pool.Start()

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func(context.Context) error {
			ran.Add(1)
			if i%5 == 0 {
				return boom
			}
			return nil
		})
	}

	errs := pool.Wait()
	assert.EqualValues(t, 10, ran.Load())
	assert.Len(t, errs, 2)
	assert.Len(t, pool.Wait(), 2, "waiting twice is safe")
}
