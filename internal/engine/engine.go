// Package engine coordinates the recipe catalog, the parser and the
// renderers.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/logger"
	"github.com/hammamikhairi/cooklang/internal/render"
)

// Format is an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat maps a format name to a Format. "md" is accepted for Markdown.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatText:
		return FormatText, nil
	case "md", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatHTML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", name)
	}
}

// Option configures the engine.
type Option func(*Engine)

// WithServingsDefault sets the serving count used when a call passes zero.
// Zero keeps amounts as written.
func WithServingsDefault(n int) Option {
	return func(e *Engine) {
		e.defaultServings = n
	}
}

// WithRenderDefaults sets the mention templates used when a call leaves them
// empty.
func WithRenderDefaults(opts render.Options) Option {
	return func(e *Engine) {
		e.renderDefaults = opts
	}
}

// Engine serves recipes from a source and renders them. It depends only on
// interfaces.
type Engine struct {
	recipes         domain.RecipeSource
	parser          domain.RecipeParser
	log             *logger.Logger
	defaultServings int
	renderDefaults  render.Options
}

// New creates an engine with the given dependencies and options.
func New(recipes domain.RecipeSource, parser domain.RecipeParser, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes: recipes,
		parser:  parser,
		log:     log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListRecipes returns all available recipes.
func (e *Engine) ListRecipes(ctx context.Context) ([]domain.RecipeSummary, error) {
	return e.recipes.List(ctx)
}

// SearchRecipes returns recipes matching query, best match first.
func (e *Engine) SearchRecipes(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	return e.recipes.Search(ctx, query)
}

// Open returns the recipe with the given ID scaled for servings. With zero
// servings the engine default applies; if that is zero too the recipe is
// returned as written.
func (e *Engine) Open(ctx context.Context, id string, servings int) (*domain.Recipe, error) {
	rec, err := e.recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	return e.scale(rec.Recipe, servings)
}

// Parse parses a document that is not part of the catalog.
func (e *Engine) Parse(ctx context.Context, filename string, src []byte) (*domain.Recipe, error) {
	return e.parser.Parse(ctx, filename, src)
}

// Render writes the recipe with the given ID in format.
func (e *Engine) Render(ctx context.Context, w io.Writer, id string, format Format, opts render.Options) error {
	rec, err := e.recipes.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("getting recipe: %w", err)
	}
	e.log.Debug("rendering %s as %s", id, format)
	return e.Write(w, rec.Recipe, format, opts)
}

// Write renders r in format.
func (e *Engine) Write(w io.Writer, r *domain.Recipe, format Format, opts render.Options) error {
	opts = e.withDefaults(opts)

	switch format {
	case FormatText:
		return render.Text(w, r, opts)
	case FormatMarkdown:
		return render.Markdown(w, r, opts)
	case FormatHTML:
		return render.HTML(w, r, opts)
	case FormatJSON:
		scaled, err := e.scale(r, opts.Servings)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scaled)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ShoppingList returns the ingredients of the recipe with the given ID in
// first-mention order, resolved for servings.
func (e *Engine) ShoppingList(ctx context.Context, id string, servings int) ([]render.Item, error) {
	rec, err := e.recipes.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	if servings <= 0 {
		servings = e.defaultServings
	}
	return render.ShoppingList(rec.Recipe, servings)
}

func (e *Engine) scale(r *domain.Recipe, servings int) (*domain.Recipe, error) {
	if servings <= 0 {
		servings = e.defaultServings
	}
	if servings <= 0 {
		return r.Clone(), nil
	}
	e.log.Debug("scaling %q to %d servings", r.Title(), servings)
	return r.ForServings(servings)
}

func (e *Engine) withDefaults(opts render.Options) render.Options {
	if opts.Servings <= 0 {
		opts.Servings = e.defaultServings
	}
	if opts.IngredientTemplate == "" {
		opts.IngredientTemplate = e.renderDefaults.IngredientTemplate
	}
	if opts.CookwareTemplate == "" {
		opts.CookwareTemplate = e.renderDefaults.CookwareTemplate
	}
	if opts.TimerTemplate == "" {
		opts.TimerTemplate = e.renderDefaults.TimerTemplate
	}
	return opts
}
