// Package display prints catalog listings and shopping lists. Colors are
// only emitted when the destination is a terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/render"
)

const idWidth = 20

// Printer writes styled lines to w.
type Printer struct {
	w     io.Writer
	id    lipgloss.Style
	name  lipgloss.Style
	label lipgloss.Style
	hint  lipgloss.Style
}

// NewPrinter creates a printer whose color profile is detected from w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		id:    r.NewStyle().Foreground(lipgloss.Color("#fde68a")),
		name:  r.NewStyle().Foreground(lipgloss.Color("#bae6fd")),
		label: r.NewStyle().Foreground(lipgloss.Color("#a1a1aa")),
		hint:  r.NewStyle().Foreground(lipgloss.Color("#71717a")),
	}
}

// Summaries prints one line per recipe: the ID padded to a column, the
// name and the tags.
func (p *Printer) Summaries(recipes []domain.RecipeSummary) {
	for _, r := range recipes {
		pad := strings.Repeat(" ", max(1, idWidth+1-len(r.ID)))
		line := p.id.Render(r.ID) + pad + p.name.Render(r.Name)
		if len(r.Tags) > 0 {
			line += " " + p.label.Render("["+strings.Join(r.Tags, ", ")+"]")
		}
		fmt.Fprintln(p.w, line)
	}
}

// ShoppingList prints "name: quantity" per item, or just the name when the
// item has no quantity.
func (p *Printer) ShoppingList(items []render.Item) {
	for _, it := range items {
		if q := it.Quantity(); q != "" {
			fmt.Fprintf(p.w, "%s: %s\n", p.name.Render(it.Name), q)
		} else {
			fmt.Fprintln(p.w, p.name.Render(it.Name))
		}
	}
}

// Hint prints a secondary message.
func (p *Printer) Hint(format string, args ...any) {
	fmt.Fprintln(p.w, p.hint.Render(fmt.Sprintf(format, args...)))
}
