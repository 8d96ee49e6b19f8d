package recipe

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"

	"github.com/hammamikhairi/cooklang/internal/cooklang"
	"github.com/hammamikhairi/cooklang/internal/logger"
	"github.com/hammamikhairi/cooklang/internal/storage"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return NewCatalog(storage.NewMemoryStore(log), cooklang.NewParser(log), log)
}

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := newCatalog(t)
	if err := c.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return c
}

func TestCatalogList(t *testing.T) {
	c := seededCatalog(t)

	recipes, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, r := range recipes {
		names = append(names, r.Name)
	}
	want := "Chicken Alfredo,Tomato Soup,Vegetable Stir Fry"
	if strings.Join(names, ",") != want {
		t.Fatalf("expected %s, got %v", want, names)
	}
}

func TestCatalogGet(t *testing.T) {
	c := seededCatalog(t)
	ctx := context.Background()

	tests := []struct {
		id           string
		wantServings int
		wantNotFound bool
	}{
		{id: "chicken-alfredo", wantServings: 2},
		{id: "vegetable-stir-fry", wantServings: 1},
		{id: "tomato-soup", wantServings: 2},
		{id: "nonexistent", wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec, err := c.Get(ctx, tt.id)
			if tt.wantNotFound {
				if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
					t.Fatalf("expected not found category, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ID != tt.id {
				t.Fatalf("expected ID %s, got %s", tt.id, rec.ID)
			}
			if len(rec.Recipe.Steps()) == 0 {
				t.Fatal("recipe has no steps")
			}
			if len(rec.Recipe.Metadata.Ingredients) == 0 {
				t.Fatal("recipe has no ingredients")
			}
			if len(rec.Recipe.Metadata.Servings) != tt.wantServings {
				t.Fatalf("expected %d servings tiers, got %v", tt.wantServings, rec.Recipe.Metadata.Servings)
			}
		})
	}
}

func TestCatalogFrontMatterTags(t *testing.T) {
	c := seededCatalog(t)

	rec, err := c.Get(context.Background(), "tomato-soup")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sum := rec.Summary()
	if strings.Join(sum.Tags, ",") != "soup,vegetarian,quick" {
		t.Fatalf("unexpected tags: %v", sum.Tags)
	}
	if sum.Description != "Weeknight soup from pantry staples." {
		t.Fatalf("unexpected description: %q", sum.Description)
	}
}

func TestCatalogSearch(t *testing.T) {
	c := seededCatalog(t)
	ctx := context.Background()

	tests := []struct {
		query     string
		wantFirst string
	}{
		{"alfredo", "chicken-alfredo"},
		{"vegan", "vegetable-stir-fry"},
		{"ginger", "vegetable-stir-fry"},
		{"SOUP", "tomato-soup"},
		{"spaghetti", "chicken-alfredo"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results, err := c.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(results) == 0 {
				t.Fatalf("expected results for %q", tt.query)
			}
			if results[0].ID != tt.wantFirst {
				t.Fatalf("expected %s first, got %+v", tt.wantFirst, results)
			}
		})
	}

	results, err := c.Search(ctx, "zzzzqx")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}

	all, err := c.Search(ctx, "  ")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected blank query to list all, got %d (err=%v)", len(all), err)
	}
}

func TestCatalogAdd(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	rec, err := c.Add(ctx, "Pancakes", []byte(">> servings: 2\nwhisk @flour{*60%g} with @milk{*0.1%l}"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.ID != "pancakes" || rec.Name != "Pancakes" || rec.Version != 1 {
		t.Fatalf("unexpected entry: %+v", rec)
	}

	rec, err = c.Add(ctx, "pancakes", []byte(">> title: Sunday Pancakes\nwhisk @flour{120%g}"))
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if rec.Name != "Sunday Pancakes" || rec.Version != 2 {
		t.Fatalf("expected titled v2 entry, got %+v", rec)
	}

	if _, err := c.Add(ctx, "   ", []byte("mix")); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := c.Add(ctx, "broken", []byte("add @salt{1")); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for bad markup, got %v", err)
	}
}

func TestCatalogLoadFS(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"desserts/apple-pie.cook": {Data: []byte(">> title: Apple Pie\nbake @apples{6} for ~{45%minutes}")},
		"notes.txt":               {Data: []byte("not a recipe")},
		"toast.cook":              {Data: []byte("toast @bread{2%slices}")},
	}
	n, err := c.LoadFS(ctx, fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 recipes, got %d", n)
	}

	rec, err := c.Get(ctx, "apple-pie")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Name != "Apple Pie" || rec.Path != "desserts/apple-pie.cook" {
		t.Fatalf("unexpected entry: %+v", rec)
	}

	_, err = c.LoadFS(ctx, fstest.MapFS{"bad.cook": {Data: []byte("wait ~{soon%min}")}})
	if err == nil || !strings.Contains(err.Error(), "bad.cook") {
		t.Fatalf("expected error naming bad.cook, got %v", err)
	}
}
