package render

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hammamikhairi/cooklang/internal/domain"
)

// Default mention templates.
const (
	DefaultIngredientTemplate = "${name}"
	DefaultCookwareTemplate   = "${name}"
	DefaultTimerTemplate      = "${quantity} ${unit}"
)

// Options controls rendering.
//
// The templates use HCL template syntax. Ingredient and timer templates see
// the variables name, quantity and unit; the cookware template sees name.
// An empty template selects the default.
type Options struct {
	// Servings scales the recipe before rendering. Zero renders the amounts
	// as written.
	Servings int

	IngredientTemplate string
	CookwareTemplate   string
	TimerTemplate      string
}

type templates struct {
	ingredient hclsyntax.Expression
	cookware   hclsyntax.Expression
	timer      hclsyntax.Expression
}

func compile(opts Options) (*templates, error) {
	var (
		t   templates
		err error
	)
	if t.ingredient, err = parseTemplate("ingredient", opts.IngredientTemplate, DefaultIngredientTemplate); err != nil {
		return nil, err
	}
	if t.cookware, err = parseTemplate("cookware", opts.CookwareTemplate, DefaultCookwareTemplate); err != nil {
		return nil, err
	}
	if t.timer, err = parseTemplate("timer", opts.TimerTemplate, DefaultTimerTemplate); err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTemplate(kind, src, def string) (hclsyntax.Expression, error) {
	if src == "" {
		src = def
	}
	expr, diags := hclsyntax.ParseTemplate([]byte(src), kind+" template", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s template: %w", kind, diags)
	}
	return expr, nil
}

func evaluate(expr hclsyntax.Expression, vars map[string]string) (string, error) {
	ctx := &hcl.EvalContext{Variables: make(map[string]cty.Value, len(vars))}
	for k, v := range vars {
		ctx.Variables[k] = cty.StringVal(v)
	}

	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return "", diags
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	if val.IsNull() || !val.IsKnown() {
		return "", nil
	}
	return strings.TrimSpace(val.AsString()), nil
}

// mention renders a non-text segment with the matching template.
func (t *templates) mention(seg Segment) (string, error) {
	switch seg.Kind {
	case SegmentIngredient:
		return evaluate(t.ingredient, map[string]string{
			"name":     seg.Ingredient.Ingredient,
			"quantity": seg.Ingredient.AmountInStep.String(),
			"unit":     seg.Ingredient.Unit,
		})
	case SegmentCookware:
		return evaluate(t.cookware, map[string]string{"name": seg.Cookware})
	case SegmentTimer:
		return evaluate(t.timer, map[string]string{
			"name":     seg.Timer.Name,
			"quantity": domain.FormatNumber(seg.Timer.Amount),
			"unit":     seg.Timer.Unit,
		})
	default:
		return seg.Text, nil
	}
}

// stepText joins the segments of s into plain text.
func (t *templates) stepText(s Step) (string, error) {
	var b strings.Builder
	for _, seg := range s.Segments {
		text, err := t.mention(seg)
		if err != nil {
			return "", fmt.Errorf("step %d: %w", s.Number, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
