package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeStore = (*SQLStore)(nil)

// SQLStore keeps recipes in a SQL database through bun. The source text and
// the reduced recipe, encoded as JSON, are stored side by side.
type SQLStore struct {
	db  *bun.DB
	log *logger.Logger
}

type recipeModel struct {
	bun.BaseModel `bun:"table:recipes"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Path      string    `bun:"path"`
	Source    string    `bun:"source"`
	Recipe    string    `bun:"recipe"`
	Version   int       `bun:"version"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// OpenSQLite opens (and migrates) a sqlite database. An empty dsn opens a
// fresh in-memory database private to the returned store.
func OpenSQLite(ctx context.Context, dsn string, log *logger.Logger) (*SQLStore, error) {
	if dsn == "" {
		dsn = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewSQLStore(ctx, bun.NewDB(sqldb, sqlitedialect.New()), log)
	if err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps db and creates the recipes table when missing.
func NewSQLStore(ctx context.Context, db *bun.DB, log *logger.Logger) (*SQLStore, error) {
	if _, err := db.NewCreateTable().Model((*recipeModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create recipes table: %w", err)
	}
	return &SQLStore{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a recipe and bumps its version.
func (s *SQLStore) Save(ctx context.Context, rec *domain.StoredRecipe) error {
	model, err := modelFromRecipe(rec)
	if err != nil {
		return err
	}
	model.UpdatedAt = time.Now().UTC()

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing recipeModel
		err := tx.NewSelect().Model(&existing).Column("version").Where("id = ?", rec.ID).Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			model.Version = 1
			_, err = tx.NewInsert().Model(model).Exec(ctx)
			return err
		case err != nil:
			return err
		}

		model.Version = existing.Version + 1
		_, err = tx.NewUpdate().Model(model).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("save recipe %s: %w", rec.ID, err)
	}

	rec.Version, rec.UpdatedAt = model.Version, model.UpdatedAt
	s.log.Debug("saved recipe %s (v%d)", rec.ID, model.Version)
	return nil
}

// Load retrieves a recipe by ID.
func (s *SQLStore) Load(ctx context.Context, id string) (*domain.StoredRecipe, error) {
	var model recipeModel
	if err := s.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Debug("recipe not found: %s", id)
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load recipe %s: %w", id, err)
	}
	return model.toRecipe()
}

// Delete removes a recipe by ID.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*recipeModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	s.log.Debug("deleted recipe %s", id)
	return nil
}

// List returns every stored recipe ordered by name.
func (s *SQLStore) List(ctx context.Context) ([]*domain.StoredRecipe, error) {
	var models []recipeModel
	if err := s.db.NewSelect().Model(&models).Order("name ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	out := make([]*domain.StoredRecipe, 0, len(models))
	for i := range models {
		rec, err := models[i].toRecipe()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	s.log.Debug("listing recipes, count=%d", len(out))
	return out, nil
}

func modelFromRecipe(rec *domain.StoredRecipe) (*recipeModel, error) {
	model := &recipeModel{
		ID:   rec.ID,
		Name: rec.Name,
		Path: rec.Path,
	}
	if rec.Recipe != nil {
		data, err := json.Marshal(rec.Recipe)
		if err != nil {
			return nil, fmt.Errorf("encode recipe %s: %w", rec.ID, err)
		}
		model.Source = rec.Recipe.Source
		model.Recipe = string(data)
	}
	return model, nil
}

func (m *recipeModel) toRecipe() (*domain.StoredRecipe, error) {
	rec := &domain.StoredRecipe{
		ID:        m.ID,
		Name:      m.Name,
		Path:      m.Path,
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Recipe != "" {
		var r domain.Recipe
		if err := json.Unmarshal([]byte(m.Recipe), &r); err != nil {
			return nil, fmt.Errorf("decode recipe %s: %w", m.ID, err)
		}
		rec.Recipe = &r
	}
	return rec, nil
}
