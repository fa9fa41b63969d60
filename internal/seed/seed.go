// Package seed bootstraps reference data from CSV files.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"foodgram/internal/api/models"
	"foodgram/internal/api/validation"
	"foodgram/internal/cache"
)

const (
	IngredientsFile = "ingredients.csv"
	TagsFile        = "tags.csv"

	defaultBatchSize = 500
)

var (
	ingredientHeader = []string{"name", "measurement_unit"}
	tagHeader        = []string{"name", "color", "slug"}
)

// Result counts the rows read and actually inserted per file.
type Result struct {
	File     string
	Read     int
	Inserted int64
}

type Loader struct {
	db        *gorm.DB
	cache     cache.Cache
	log       *zap.Logger
	BatchSize int
}

func NewLoader(db *gorm.DB, c cache.Cache, log *zap.Logger) *Loader {
	return &Loader{db: db, cache: c, log: log, BatchSize: defaultBatchSize}
}

// LoadDir imports ingredients.csv and tags.csv from dir. Rows that already
// exist are skipped, so loading the same directory twice is harmless.
// A missing tags.csv is ignored, a missing ingredients.csv is an error.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]Result, error) {
	tagsPath := filepath.Join(dir, TagsFile)
	_, err := os.Stat(tagsPath)
	withTags := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", tagsPath, err)
	}

	var (
		mu      sync.Mutex
		results []Result
	)
	record := func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	pool := NewWorkerPool(ctx, 2, l.log)
	pool.Start()
	pool.Submit(func(ctx context.Context) error {
		r, err := l.LoadIngredients(ctx, filepath.Join(dir, IngredientsFile))
		if err == nil {
			record(r)
		}
		return err
	})
	if withTags {
		pool.Submit(func(ctx context.Context) error {
			r, err := l.LoadTags(ctx, tagsPath)
			if err == nil {
				record(r)
			}
			return err
		})
	} else {
		l.log.Info("no tags file, skipping", zap.String("path", tagsPath))
	}

	if errs := pool.Wait(); len(errs) > 0 {
		return results, errors.Join(errs...)
	}

	l.invalidateCache(ctx)
	return results, nil
}

// LoadIngredients imports a name,measurement_unit file.
func (l *Loader) LoadIngredients(ctx context.Context, path string) (Result, error) {
	rows, err := readCSV(path, ingredientHeader)
	if err != nil {
		return Result{}, err
	}

	ingredients := make([]models.Ingredient, 0, len(rows))
	for i, row := range rows {
		name, unit := strings.TrimSpace(row.fields[0]), strings.TrimSpace(row.fields[1])
		if name == "" || unit == "" {
			return Result{}, fmt.Errorf("%s:%d: name and measurement unit are required", path, rows[i].line)
		}
		ingredients = append(ingredients, models.NewIngredient(name, unit))
	}

	inserted, err := insertIgnoringDuplicates(ctx, l.db, ingredients, l.BatchSize)
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %w", path, err)
	}
	l.log.Info("ingredients loaded", zap.String("path", path), zap.Int("read", len(rows)), zap.Int64("inserted", inserted))
	return Result{File: path, Read: len(rows), Inserted: inserted}, nil
}

// LoadTags imports a name,color,slug file.
func (l *Loader) LoadTags(ctx context.Context, path string) (Result, error) {
	rows, err := readCSV(path, tagHeader)
	if err != nil {
		return Result{}, err
	}

	tags := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		tag := models.Tag{
			Name:  strings.TrimSpace(row.fields[0]),
			Color: strings.ToUpper(strings.TrimSpace(row.fields[1])),
			Slug:  strings.TrimSpace(row.fields[2]),
		}
		if tag.Name == "" || tag.Slug == "" {
			return Result{}, fmt.Errorf("%s:%d: name and slug are required", path, row.line)
		}
		if err := validation.Color(tag.Color); err != nil {
			return Result{}, fmt.Errorf("%s:%d: %w", path, row.line, err)
		}
		tags = append(tags, tag)
	}

	inserted, err := insertIgnoringDuplicates(ctx, l.db, tags, l.BatchSize)
	if err != nil {
		return Result{}, fmt.Errorf("import %s: %w", path, err)
	}
	l.log.Info("tags loaded", zap.String("path", path), zap.Int("read", len(rows)), zap.Int64("inserted", inserted))
	return Result{File: path, Read: len(rows), Inserted: inserted}, nil
}

// insertIgnoringDuplicates writes all rows in one transaction.
func insertIgnoringDuplicates[T any](ctx context.Context, db *gorm.DB, rows []T, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var inserted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, batchSize)
		inserted = res.RowsAffected
		return res.Error
	})
	return inserted, err
}

func (l *Loader) invalidateCache(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, cache.TagsKey); err != nil {
		l.log.Warn("failed to invalidate tag cache", zap.Error(err))
	}
	if err := l.cache.DeletePrefix(ctx, cache.IngredientSearchPrefix); err != nil {
		l.log.Warn("failed to invalidate ingredient cache", zap.Error(err))
	}
}

type csvRow struct {
	line   int
	fields []string
}

// readCSV reads every record of path. The first record is dropped when it
// matches header, records must have exactly len(header) fields.
func readCSV(path string, header []string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	r.TrimLeadingSpace = true

	var rows []csvRow
	for line := 1; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if line == 1 && isHeader(record, header) {
			continue
		}
		rows = append(rows, csvRow{line: line, fields: record})
	}
	return rows, nil
}

func isHeader(record, header []string) bool {
	for i, h := range header {
		field := strings.TrimPrefix(record[i], "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(field), h) {
			return false
		}
	}
	return true
}
