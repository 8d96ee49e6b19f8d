// Package reduce flattens parsed lines into a domain.Recipe.
//
// Every ingredient, cookware and timer mention is replaced in the
// instruction text by its placeholder and recorded in the matching metadata
// list. Repeated ingredient names share one registry entry whose amount is
// the sum of the quantified mentions.
package reduce

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hammamikhairi/cooklang/internal/ast"
	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/quantity"
)

// ServingsKey is the metadata key declaring the servings tiers. It is
// matched case-insensitively.
const ServingsKey = "servings"

// Option configures a reduction.
type Option func(*reducer)

// WithIDFunc replaces the generator of ingredient IDs.
func WithIDFunc(fn func() uuid.UUID) Option {
	return func(r *reducer) {
		if fn != nil {
			r.newID = fn
		}
	}
}

type reducer struct {
	newID func() uuid.UUID

	meta domain.Metadata
	buf  strings.Builder
	// unit of the first quantified mention per ingredient
	quantifiedUnit map[string]string
}

// Reduce builds the recipe for lines. source is kept verbatim in the result.
func Reduce(source string, lines []ast.Line, opts ...Option) (*domain.Recipe, error) {
	r := &reducer{
		newID: uuid.New,
		meta: domain.Metadata{
			Ominous:               make(map[string]string),
			Ingredients:           make(map[string]*domain.Ingredient),
			IngredientsSpecifiers: []domain.IngredientSpecifier{},
			Cookware:              []string{},
			Timer:                 []domain.Timer{},
		},
		quantifiedUnit: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}

	steps := 0
	for _, line := range lines {
		switch l := line.(type) {
		case *ast.Metadata:
			if err := r.metadata(l); err != nil {
				return nil, err
			}
		case *ast.Step:
			if steps > 0 {
				r.buf.WriteString(domain.StepSeparator)
			}
			if err := r.step(l); err != nil {
				return nil, err
			}
			steps++
		default:
			return nil, fmt.Errorf("unexpected line type %T", line)
		}
	}

	if err := r.checkServings(); err != nil {
		return nil, err
	}

	return &domain.Recipe{
		Source:      source,
		Metadata:    r.meta,
		Instruction: r.buf.String(),
	}, nil
}

func (r *reducer) metadata(m *ast.Metadata) error {
	if !strings.EqualFold(m.Key, ServingsKey) {
		r.meta.Ominous[m.Key] = m.Value
		return nil
	}
	tiers, err := quantity.ParseServings(m.Value)
	if err != nil {
		return fmt.Errorf("metadata %q: %w", m.Key, err)
	}
	r.meta.Servings = tiers
	return nil
}

func (r *reducer) step(s *ast.Step) error {
	start := r.buf.Len()
	for _, item := range s.Items {
		if item.WasSpaced() && r.buf.Len() > start {
			r.buf.WriteByte(' ')
		}

		switch it := item.(type) {
		case *ast.Content:
			writeEscaped(&r.buf, it.Text)
		case *ast.Ingredient:
			if err := r.ingredient(it); err != nil {
				return err
			}
		case *ast.Cookware:
			r.buf.WriteRune(domain.CookwarePlaceholder)
			r.meta.Cookware = append(r.meta.Cookware, it.Name)
		case *ast.Timer:
			r.buf.WriteRune(domain.TimerPlaceholder)
			r.meta.Timer = append(r.meta.Timer, domain.Timer{
				Name:   it.Name,
				Amount: float64(it.Duration),
				Unit:   it.Unit,
			})
		default:
			return fmt.Errorf("unexpected step item type %T", item)
		}
	}
	return nil
}

func (r *reducer) ingredient(in *ast.Ingredient) error {
	amount, unit, err := quantity.Parse(in.Amount)
	if err != nil {
		return fmt.Errorf("ingredient %q: %w", in.Name, err)
	}

	r.buf.WriteRune(domain.IngredientPlaceholder)
	r.meta.IngredientsSpecifiers = append(r.meta.IngredientsSpecifiers, domain.IngredientSpecifier{
		Ingredient:   in.Name,
		AmountInStep: amount,
		Unit:         unit,
	})

	ing, ok := r.meta.Ingredients[in.Name]
	if !ok {
		ing = &domain.Ingredient{Name: in.Name, ID: r.newID()}
		r.meta.Ingredients[in.Name] = ing
	}

	first, quantified := r.quantifiedUnit[in.Name]
	if amount.IsZero() {
		// A textual amount such as "a pinch" only names a unit.
		if unit != "" && ing.Unit == nil && !quantified {
			ing.Unit = &unit
		}
		return nil
	}

	// The first quantified mention fixes the unit, "" included; a bare
	// count never adds to a measured amount.
	switch {
	case !quantified:
		r.quantifiedUnit[in.Name] = unit
		ing.Unit = nil
		if unit != "" {
			ing.Unit = &unit
		}
	case first != unit:
		return fmt.Errorf("ingredient %q: %q and %q: %w", in.Name, first, unit, domain.ErrUnitMismatch)
	}

	if ing.Amount == nil {
		a := amount.Clone()
		ing.Amount = &a
		return nil
	}
	sum, err := ing.Amount.Add(amount)
	if err != nil {
		return fmt.Errorf("ingredient %q: %w", in.Name, err)
	}
	ing.Amount = &sum
	return nil
}

// checkServings runs once all lines are reduced since the servings line may
// follow the steps that use it.
func (r *reducer) checkServings() error {
	tiers := r.meta.Servings
	for _, spec := range r.meta.IngredientsSpecifiers {
		a := spec.AmountInStep
		if a.Kind != domain.AmountServings {
			continue
		}
		if len(tiers) == 0 {
			return fmt.Errorf("ingredient %q: %w", spec.Ingredient, domain.ErrServingsUndeclared)
		}
		if len(a.Values) != len(tiers) {
			return fmt.Errorf("ingredient %q: %d values for %d servings tiers: %w",
				spec.Ingredient, len(a.Values), len(tiers), domain.ErrAmountShape)
		}
	}
	return nil
}

// writeEscaped escapes placeholder characters in text. A backslash is only
// escaped where it could be read as an escape: before an escapable
// character or at the end of text, where a placeholder may follow.
func writeEscaped(b *strings.Builder, text string) {
	runes := []rune(text)
	for i, r := range runes {
		switch {
		case r == domain.Escape:
			if i+1 == len(runes) || domain.Escapable(runes[i+1]) {
				b.WriteRune(domain.Escape)
			}
		case domain.Escapable(r):
			b.WriteRune(domain.Escape)
		}
		b.WriteRune(r)
	}
}
