package domain

import "context"

// RecipeParser turns recipe markup into a Recipe. filename only labels
// positions in error messages.
type RecipeParser interface {
	Parse(ctx context.Context, filename string, src []byte) (*Recipe, error)
}

// RecipeSource provides recipes. Implementations can be in-memory,
// file-based, or backed by a RecipeStore.
type RecipeSource interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, id string) (*StoredRecipe, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// RecipeStore persists parsed recipes. Implementations can be in-memory,
// SQLite, or any other backend.
type RecipeStore interface {
	Save(ctx context.Context, recipe *StoredRecipe) error
	Load(ctx context.Context, id string) (*StoredRecipe, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*StoredRecipe, error)
}
