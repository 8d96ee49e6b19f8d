package render

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hammamikhairi/cooklang/internal/domain"
)

// Item is a shopping list entry.
type Item struct {
	Name   string
	Amount domain.Amount
	Unit   string
}

// Quantity formats the amount and unit, "" when neither is known.
func (it Item) Quantity() string {
	return strings.TrimSpace(it.Amount.String() + " " + it.Unit)
}

// ShoppingList returns one item per ingredient in first-mention order. With
// servings > 0 every amount is resolved for that many servings.
func ShoppingList(r *domain.Recipe, servings int) ([]Item, error) {
	if servings > 0 {
		scaled, err := r.ForServings(servings)
		if err != nil {
			return nil, err
		}
		r = scaled
	}

	seen := make(map[string]bool, len(r.Metadata.Ingredients))
	items := make([]Item, 0, len(r.Metadata.Ingredients))
	for _, spec := range r.Metadata.IngredientsSpecifiers {
		if seen[spec.Ingredient] {
			continue
		}
		seen[spec.Ingredient] = true

		item := Item{Name: spec.Ingredient}
		if ing, ok := r.Metadata.Ingredients[spec.Ingredient]; ok {
			if ing.Amount != nil {
				item.Amount = ing.Amount.Clone()
			}
			if ing.Unit != nil {
				item.Unit = *ing.Unit
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// document is a recipe prepared for one of the writers.
type document struct {
	recipe   *domain.Recipe
	items    []Item
	cookware []string
	steps    []string
}

func prepare(r *domain.Recipe, opts Options) (*document, error) {
	tpl, err := compile(opts)
	if err != nil {
		return nil, err
	}
	if opts.Servings > 0 {
		if r, err = r.ForServings(opts.Servings); err != nil {
			return nil, err
		}
	}

	items, err := ShoppingList(r, 0)
	if err != nil {
		return nil, err
	}
	steps, err := Steps(r)
	if err != nil {
		return nil, err
	}

	doc := &document{recipe: r, items: items}
	for _, c := range r.Metadata.Cookware {
		if !slices.Contains(doc.cookware, c) {
			doc.cookware = append(doc.cookware, c)
		}
	}
	for _, s := range steps {
		text, err := tpl.stepText(s)
		if err != nil {
			return nil, err
		}
		doc.steps = append(doc.steps, text)
	}
	return doc, nil
}

func (d *document) title() string {
	if t := d.recipe.Title(); t != "" {
		return t
	}
	return "Recipe"
}

func (d *document) servings() string {
	parts := make([]string, len(d.recipe.Metadata.Servings))
	for i, s := range d.recipe.Metadata.Servings {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "|")
}

// Text writes r as plain text.
func Text(w io.Writer, r *domain.Recipe, opts Options) error {
	doc, err := prepare(r, opts)
	if err != nil {
		return err
	}

	var b strings.Builder
	title := doc.title()
	fmt.Fprintf(&b, "%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
	if desc := doc.recipe.Metadata.Ominous["description"]; desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	if s := doc.servings(); s != "" {
		fmt.Fprintf(&b, "\nServings: %s\n", s)
	}

	if len(doc.items) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, it := range doc.items {
			if q := it.Quantity(); q != "" {
				fmt.Fprintf(&b, "  - %s: %s\n", it.Name, q)
			} else {
				fmt.Fprintf(&b, "  - %s\n", it.Name)
			}
		}
	}
	if len(doc.cookware) > 0 {
		b.WriteString("\nCookware:\n")
		for _, c := range doc.cookware {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	if len(doc.steps) > 0 {
		b.WriteString("\nSteps:\n")
		for i, s := range doc.steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// Markdown writes r as a Markdown document.
func Markdown(w io.Writer, r *domain.Recipe, opts Options) error {
	doc, err := prepare(r, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(doc.markdown())
	return err
}

// HTML writes r as an HTML fragment converted from its Markdown form.
func HTML(w io.Writer, r *domain.Recipe, opts Options) error {
	doc, err := prepare(r, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := goldmark.New().Convert(doc.markdown(), &buf); err != nil {
		return fmt.Errorf("markdown to html: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func (d *document) markdown() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n", d.title())
	if desc := d.recipe.Metadata.Ominous["description"]; desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	if s := d.servings(); s != "" {
		fmt.Fprintf(&b, "\n*Servings: %s*\n", s)
	}

	if len(d.items) > 0 {
		b.WriteString("\n## Ingredients\n\n")
		for _, it := range d.items {
			if q := it.Quantity(); q != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", it.Name, q)
			} else {
				fmt.Fprintf(&b, "- %s\n", it.Name)
			}
		}
	}
	if len(d.cookware) > 0 {
		b.WriteString("\n## Cookware\n\n")
		for _, c := range d.cookware {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if len(d.steps) > 0 {
		b.WriteString("\n## Steps\n\n")
		for i, s := range d.steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}
	return b.Bytes()
}
