// Package domain defines the core types and interfaces for the recipe parser.
// All other packages depend on domain; domain depends on nothing but uuid.
package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Placeholders mark mentions in Recipe.Instruction. The n-th placeholder of
// a kind refers to the n-th entry of the matching Metadata list.
const (
	IngredientPlaceholder = '@'
	CookwarePlaceholder   = '#'
	TimerPlaceholder      = '~'
	// Escape precedes a literal placeholder character or a literal Escape.
	// An Escape before any other character is itself literal.
	Escape = '\\'
)

// Escapable reports whether r must follow an Escape to be read literally.
func Escapable(r rune) bool {
	switch r {
	case IngredientPlaceholder, CookwarePlaceholder, TimerPlaceholder, Escape:
		return true
	}
	return false
}

// StepSeparator joins the steps of a recipe in Recipe.Instruction.
const StepSeparator = "\n"

// TitleKey is the metadata key holding a recipe's display name.
const TitleKey = "title"

// Recipe is the reduced form of a recipe document. It is not mutated after
// construction; use Clone or ForServings to derive new values.
type Recipe struct {
	// Source is the text the recipe was parsed from.
	Source   string   `json:"source"`
	Metadata Metadata `json:"metadata"`
	// Instruction is the flattened step text with placeholders in place of
	// every ingredient, cookware and timer mention.
	Instruction string `json:"instruction"`
}

// Metadata holds everything extracted from a recipe besides the flattened
// instruction text.
type Metadata struct {
	// Servings lists the serving-count tiers, nil when undeclared.
	Servings []int `json:"servings"`
	// Ominous holds every other metadata entry.
	Ominous map[string]string `json:"ominous"`
	// Ingredients is the deduplicated registry, keyed by name as written.
	Ingredients map[string]*Ingredient `json:"ingredients"`
	// IngredientsSpecifiers has one entry per ingredient mention.
	IngredientsSpecifiers []IngredientSpecifier `json:"ingredientsSpecifiers"`
	// Cookware has one entry per cookware mention.
	Cookware []string `json:"cookware"`
	// Timer has one entry per timer mention.
	Timer []Timer `json:"timer"`
}

// Ingredient is a registry entry. Repeated mentions of the same name merge
// into one Ingredient.
type Ingredient struct {
	Name   string    `json:"name"`
	ID     uuid.UUID `json:"id"`
	Amount *Amount   `json:"amount"`
	Unit   *string   `json:"unit"`
}

// IngredientSpecifier describes one mention of an ingredient.
type IngredientSpecifier struct {
	// Ingredient is the registry key of the mentioned ingredient.
	Ingredient   string `json:"ingredient"`
	AmountInStep Amount `json:"amountInStep"`
	Unit         string `json:"unit,omitempty"`
}

// Timer is a timer mention.
type Timer struct {
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

var timerUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// Duration converts the timer to a time.Duration. It reports false when the
// unit is not a recognized time unit.
func (t Timer) Duration() (time.Duration, bool) {
	unit, ok := timerUnits[strings.ToLower(strings.TrimSpace(t.Unit))]
	if !ok {
		return 0, false
	}
	return time.Duration(t.Amount * float64(unit)), true
}

// Title returns the title metadata entry, or "" when absent.
func (r *Recipe) Title() string {
	return r.Metadata.Ominous[TitleKey]
}

// Steps returns the instruction split into steps, placeholders included.
func (r *Recipe) Steps() []string {
	if r.Instruction == "" {
		return nil
	}
	return strings.Split(r.Instruction, StepSeparator)
}

// Clone returns a deep copy of the recipe.
func (r *Recipe) Clone() *Recipe {
	out := &Recipe{
		Source:      r.Source,
		Instruction: r.Instruction,
		Metadata: Metadata{
			Servings:              slices.Clone(r.Metadata.Servings),
			Ominous:               maps.Clone(r.Metadata.Ominous),
			Ingredients:           make(map[string]*Ingredient, len(r.Metadata.Ingredients)),
			IngredientsSpecifiers: make([]IngredientSpecifier, len(r.Metadata.IngredientsSpecifiers)),
			Cookware:              slices.Clone(r.Metadata.Cookware),
			Timer:                 slices.Clone(r.Metadata.Timer),
		},
	}
	for name, ing := range r.Metadata.Ingredients {
		out.Metadata.Ingredients[name] = ing.clone()
	}
	for i, spec := range r.Metadata.IngredientsSpecifiers {
		spec.AmountInStep = spec.AmountInStep.Clone()
		out.Metadata.IngredientsSpecifiers[i] = spec
	}
	return out
}

// ForServings returns a copy of the recipe with every amount resolved to a
// fixed value for n servings. Unspecified amounts stay unspecified.
func (r *Recipe) ForServings(n int) (*Recipe, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%d servings: %w", n, ErrInvalidServings)
	}
	out := r.Clone()
	tiers := r.Metadata.Servings

	for name, ing := range out.Metadata.Ingredients {
		if ing.Amount == nil || ing.Amount.IsZero() {
			continue
		}
		v, err := ing.Amount.Resolve(n, tiers)
		if err != nil {
			return nil, fmt.Errorf("ingredient %q: %w", name, err)
		}
		resolved := Single(v)
		ing.Amount = &resolved
	}
	for i := range out.Metadata.IngredientsSpecifiers {
		spec := &out.Metadata.IngredientsSpecifiers[i]
		if spec.AmountInStep.IsZero() {
			continue
		}
		v, err := spec.AmountInStep.Resolve(n, tiers)
		if err != nil {
			return nil, fmt.Errorf("ingredient %q: %w", spec.Ingredient, err)
		}
		spec.AmountInStep = Single(v)
	}
	out.Metadata.Servings = []int{n}
	return out, nil
}

func (i *Ingredient) clone() *Ingredient {
	out := &Ingredient{Name: i.Name, ID: i.ID}
	if i.Amount != nil {
		a := i.Amount.Clone()
		out.Amount = &a
	}
	if i.Unit != nil {
		u := *i.Unit
		out.Unit = &u
	}
	return out
}

// RecipeSummary is a lightweight view of a catalog entry for listing.
type RecipeSummary struct {
	ID          string
	Name        string
	Description string
	Tags        []string
}

// StoredRecipe is a parsed recipe as kept by a RecipeStore.
type StoredRecipe struct {
	ID        string
	Name      string
	Path      string
	Recipe    *Recipe
	Version   int
	UpdatedAt time.Time
}

// Summary returns the listing view of the entry. Description and tags come
// from the "description" and comma separated "tags" metadata entries.
func (s *StoredRecipe) Summary() RecipeSummary {
	sum := RecipeSummary{ID: s.ID, Name: s.Name}
	if s.Recipe == nil {
		return sum
	}
	sum.Description = s.Recipe.Metadata.Ominous["description"]
	if tags := s.Recipe.Metadata.Ominous["tags"]; tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				sum.Tags = append(sum.Tags, tag)
			}
		}
	}
	return sum
}
