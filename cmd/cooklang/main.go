// Cooklang renders recipe markup as text, Markdown, HTML or JSON.
//
// Usage:
//
//	cooklang [flags] [FILE...]
//
// With files (or "-" for stdin) each document is parsed and rendered in
// turn. With -list, -search or -recipe the built-in catalog, plus any
// recipes found under -catalog, is listed, searched or rendered by ID.
// Without either, the document is read from stdin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/cooklang/internal/config"
	"github.com/hammamikhairi/cooklang/internal/cooklang"
	"github.com/hammamikhairi/cooklang/internal/display"
	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/engine"
	"github.com/hammamikhairi/cooklang/internal/logger"
	"github.com/hammamikhairi/cooklang/internal/recipe"
	"github.com/hammamikhairi/cooklang/internal/render"
	"github.com/hammamikhairi/cooklang/internal/storage"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	cfg      config.Config
	list     bool
	shopping bool
	recipeID string
	files    []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("cooklang", flag.ContinueOnError)
	fs.SetOutput(stderr)

	verbose := fs.Bool("verbose", false, "enable verbose/debug logging")
	quiet := fs.Bool("quiet", false, "disable all logging")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "file to write logs to (use \"stderr\" to log to console)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log record format: text or json")
	fs.StringVar(&cfg.Output, "format", cfg.Output, "output format: "+strings.Join(config.Outputs, ", "))
	fs.IntVar(&cfg.Servings, "servings", cfg.Servings, "scale recipes to this many servings (0 keeps amounts as written)")
	fs.StringVar(&cfg.CatalogDir, "catalog", cfg.CatalogDir, "directory of .cook files to add to the catalog (implies -list)")
	fs.StringVar(&cfg.Database, "db", cfg.Database, "sqlite DSN for the catalog store (empty keeps it in memory)")
	fs.StringVar(&cfg.Search, "search", cfg.Search, "list catalog recipes matching this query")
	fs.StringVar(&cfg.IngredientTemplate, "ingredient-template", cfg.IngredientTemplate, "template for ingredient mentions, e.g. ${name} (${quantity} ${unit})")
	fs.StringVar(&cfg.CookwareTemplate, "cookware-template", cfg.CookwareTemplate, "template for cookware mentions")
	fs.StringVar(&cfg.TimerTemplate, "timer-template", cfg.TimerTemplate, "template for timer mentions")

	opts := &options{}
	fs.BoolVar(&opts.list, "list", false, "list catalog recipes")
	fs.BoolVar(&opts.shopping, "shopping", false, "print the shopping list instead of the full recipe")
	fs.StringVar(&opts.recipeID, "recipe", "", "render the catalog recipe with this ID")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *verbose {
		cfg.LogLevel = logger.LevelVerbose.String()
	}
	if *quiet {
		cfg.LogLevel = logger.LevelOff.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	opts.cfg = cfg
	opts.files = fs.Args()
	if len(opts.files) == 0 && !opts.usesCatalog() {
		opts.files = []string{"-"}
	}
	return opts, nil
}

func (o *options) usesCatalog() bool {
	return o.list || o.recipeID != "" || o.cfg.Search != "" || o.cfg.CatalogDir != ""
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return exitUsage
	}
	cfg := opts.cfg

	logOut, closeLog := openLog(cfg.LogFile, stderr)
	defer closeLog()
	log := logger.NewWithFormat(cfg.Level(), logger.Format(cfg.LogFormat), logOut)

	format, err := engine.ParseFormat(cfg.Output)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	renderOpts := render.Options{
		Servings:           cfg.Servings,
		IngredientTemplate: cfg.IngredientTemplate,
		CookwareTemplate:   cfg.CookwareTemplate,
		TimerTemplate:      cfg.TimerTemplate,
	}

	// Wire dependencies.
	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Error("opening store: %v", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailed
	}
	defer closeStore()

	parser := cooklang.NewParser(log.With("component", "parser"))
	catalog := recipe.NewCatalog(store, parser, log.With("component", "catalog"))
	eng := engine.New(catalog, parser, log,
		engine.WithServingsDefault(cfg.Servings),
		engine.WithRenderDefaults(renderOpts),
	)

	app := &cliApp{
		engine:   eng,
		log:      log,
		format:   format,
		opts:     renderOpts,
		shopping: opts.shopping,
		printer:  display.NewPrinter(stdout),
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	if len(opts.files) > 0 {
		return app.renderFiles(ctx, opts.files)
	}

	if err := catalog.Seed(ctx); err != nil {
		fmt.Fprintf(stderr, "error: seeding catalog: %v\n", err)
		return exitFailed
	}
	if cfg.CatalogDir != "" {
		n, err := catalog.LoadFS(ctx, os.DirFS(cfg.CatalogDir))
		if err != nil {
			fmt.Fprintf(stderr, "error: loading %s: %v\n", cfg.CatalogDir, err)
			return exitFailed
		}
		log.Info("loaded %d recipes from %s", n, cfg.CatalogDir)
	}

	switch {
	case opts.recipeID != "":
		return app.renderRecipe(ctx, opts.recipeID)
	case cfg.Search != "":
		return app.search(ctx, cfg.Search)
	default:
		return app.listRecipes(ctx)
	}
}

// openLog returns the log destination. Failing to open the log file falls
// back to stderr.
func openLog(path string, stderr io.Writer) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return stderr, func() {}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return stderr, func() {}
	}
	return f, func() { _ = f.Close() }
}

func openStore(ctx context.Context, dsn string, log *logger.Logger) (domain.RecipeStore, func(), error) {
	if dsn == "" {
		return storage.NewMemoryStore(log), func() {}, nil
	}
	store, err := storage.OpenSQLite(ctx, dsn, log.With("component", "storage"))
	if err != nil {
		return nil, nil, err
	}
	log.Debug("using sqlite store %s", dsn)
	return store, func() { _ = store.Close() }, nil
}

type cliApp struct {
	engine   *engine.Engine
	log      *logger.Logger
	format   engine.Format
	opts     render.Options
	shopping bool
	printer  *display.Printer
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// renderFiles parses and renders each file. A failing file is reported and
// the rest are still rendered.
func (a *cliApp) renderFiles(ctx context.Context, files []string) int {
	code := exitOK
	for i, name := range files {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			return exitFailed
		}

		src, err := a.readFile(name)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			code = exitFailed
			continue
		}
		r, err := a.engine.Parse(ctx, name, src)
		if err != nil {
			a.log.Debug("parse failed for %s", name)
			fmt.Fprintf(a.stderr, "error: %v\n", err)
			code = exitFailed
			continue
		}

		if i > 0 && a.format != engine.FormatJSON {
			fmt.Fprintln(a.stdout)
		}
		if err := a.write(r); err != nil {
			fmt.Fprintf(a.stderr, "error: %s: %v\n", name, err)
			code = exitFailed
		}
	}
	return code
}

func (a *cliApp) readFile(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(name)
}

func (a *cliApp) renderRecipe(ctx context.Context, id string) int {
	r, err := a.engine.Open(ctx, id, 0)
	if err == nil {
		err = a.write(r)
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func (a *cliApp) write(r *domain.Recipe) error {
	if !a.shopping {
		return a.engine.Write(a.stdout, r, a.format, a.opts)
	}
	items, err := render.ShoppingList(r, a.opts.Servings)
	if err != nil {
		return err
	}
	a.printer.ShoppingList(items)
	return nil
}

func (a *cliApp) search(ctx context.Context, query string) int {
	results, err := a.engine.SearchRecipes(ctx, query)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitFailed
	}
	if len(results) == 0 {
		a.printer.Hint("no recipes match %q", query)
		return exitOK
	}
	a.printer.Summaries(results)
	return exitOK
}

func (a *cliApp) listRecipes(ctx context.Context) int {
	recipes, err := a.engine.ListRecipes(ctx)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return exitFailed
	}
	a.printer.Summaries(recipes)
	return exitOK
}
