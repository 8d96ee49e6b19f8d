package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/render"
)

func TestSummaries(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summaries([]domain.RecipeSummary{
		{ID: "tomato-soup", Name: "Tomato Soup", Tags: []string{"soup", "quick"}},
		{ID: "a-very-long-recipe-identifier", Name: "Long"},
	})

	want := "tomato-soup          Tomato Soup [soup, quick]\n" +
		"a-very-long-recipe-identifier Long\n"
	require.Equal(t, want, buf.String())
}

func TestShoppingList(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).ShoppingList([]render.Item{
		{Name: "butter", Amount: domain.Amount{Kind: domain.AmountSingle, Value: 40}, Unit: "g"},
		{Name: "pepper"},
	})

	require.Equal(t, "butter: 40 g\npepper\n", buf.String())
}

func TestHint(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Hint("no recipes match %q", "x")
	require.Equal(t, "no recipes match \"x\"\n", buf.String())
}
