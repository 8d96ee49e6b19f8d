// Package recipe provides the recipe catalog: parsed recipes kept in a store
// and looked up by ID or fuzzy search.
package recipe

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/logger"
)

const (
	// Extension is the file extension of recipe documents.
	Extension = ".cook"

	notFoundCode    = "RECIPE_NOT_FOUND"
	invalidNameCode = "RECIPE_INVALID_NAME"
)

//go:embed seeds/*.cook
var seeds embed.FS

// Compile-time interface check.
var _ domain.RecipeSource = (*Catalog)(nil)

// Catalog parses recipe documents and serves them from a store. Safe for
// concurrent use when the store is.
type Catalog struct {
	store  domain.RecipeStore
	parser domain.RecipeParser
	log    *logger.Logger
}

// NewCatalog creates a catalog over store.
func NewCatalog(store domain.RecipeStore, parser domain.RecipeParser, log *logger.Logger) *Catalog {
	return &Catalog{store: store, parser: parser, log: log}
}

// Add parses src and stores it under the slug of name. The recipe title, when
// present, replaces name as display name but not as ID.
func (c *Catalog) Add(ctx context.Context, name string, src []byte) (*domain.StoredRecipe, error) {
	return c.add(ctx, name, name+Extension, src)
}

func (c *Catalog) add(ctx context.Context, name, file string, src []byte) (*domain.StoredRecipe, error) {
	id, err := slug.Normalize(name)
	if err != nil || id == "" {
		if err == nil {
			err = fmt.Errorf("empty slug for %q", name)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("invalid recipe name %q", name)).
			WithTextCode(invalidNameCode)
	}

	r, err := c.parser.Parse(ctx, file, src)
	if err != nil {
		return nil, err
	}

	display := name
	if title := r.Title(); title != "" {
		display = title
	}
	rec := &domain.StoredRecipe{ID: id, Name: display, Path: file, Recipe: r}
	if err := c.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	c.log.Info("recipe added: %s (v%d)", rec.Name, rec.Version)
	return rec, nil
}

// LoadFS adds every recipe document found in fsys. The ID of a document is
// the slug of its file name without extension. It returns the number of
// recipes added.
func (c *Catalog) LoadFS(ctx context.Context, fsys fs.FS) (int, error) {
	added := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != Extension {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), Extension)
		if _, err := c.add(ctx, name, p, src); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		added++
		return nil
	})
	c.log.Debug("loaded %d recipes", added)
	return added, err
}

// Seed adds the built-in recipes.
func (c *Catalog) Seed(ctx context.Context) error {
	sub, err := fs.Sub(seeds, "seeds")
	if err != nil {
		return err
	}
	n, err := c.LoadFS(ctx, sub)
	if err != nil {
		return err
	}
	c.log.Debug("seeded %d recipes", n)
	return nil
}

// List returns summaries of all recipes ordered by name.
func (c *Catalog) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	recs, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Debug("listing all recipes, count=%d", len(recs))

	out := make([]domain.RecipeSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Summary())
	}
	return out, nil
}

// Get returns a recipe by ID.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.StoredRecipe, error) {
	rec, err := c.store.Load(ctx, id)
	if err == nil {
		return rec, nil
	}
	if goerrors.IsWrapped(err) {
		return nil, err
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.log.Debug("recipe not found: %s", id)
		return nil, goerrors.Wrap(err, goerrors.CategoryNotFound, fmt.Sprintf("recipe %q not found", id)).
			WithTextCode(notFoundCode)
	}
	return nil, err
}

// Search ranks recipes whose name, tags or ingredient names fuzzily match
// query. Closer matches come first.
func (c *Catalog) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	query = strings.TrimSpace(query)
	c.log.Debug("searching recipes for: %s", query)

	recs, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		out := make([]domain.RecipeSummary, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.Summary())
		}
		return out, nil
	}

	type hit struct {
		summary  domain.RecipeSummary
		distance int
	}
	var hits []hit
	for _, rec := range recs {
		summary := rec.Summary()
		ranks := fuzzy.RankFindFold(query, searchTerms(rec, summary))
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		hits = append(hits, hit{summary: summary, distance: ranks[0].Distance})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].summary.Name < hits[j].summary.Name
	})

	out := make([]domain.RecipeSummary, len(hits))
	for i, h := range hits {
		out[i] = h.summary
	}
	return out, nil
}

func searchTerms(rec *domain.StoredRecipe, summary domain.RecipeSummary) []string {
	terms := []string{summary.Name}
	terms = append(terms, summary.Tags...)
	if rec.Recipe != nil {
		for name := range rec.Recipe.Metadata.Ingredients {
			terms = append(terms, name)
		}
	}
	return terms
}
