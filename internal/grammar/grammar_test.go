package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cooklang/internal/ast"
)

var ignoreSpans = cmpopts.IgnoreTypes(ast.Span{})

func parse(t *testing.T, input string) []ast.Line {
	t.Helper()
	lines, diags := Parse([]byte(input), "test.cook", hcl.Pos{})
	require.False(t, diags.HasErrors(), "unexpected diagnostics: %v", diags)
	return lines
}

func assertLines(t *testing.T, input string, want ...ast.Line) {
	t.Helper()
	got := parse(t, input)
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Fatalf("input=%q: lines mismatch (-want +got):\n%s", input, diff)
	}
}

func md(key, value string) ast.Line { return &ast.Metadata{Key: key, Value: value} }

func step(items ...ast.StepItem) ast.Line { return &ast.Step{Items: items} }

func text(s string) ast.StepItem { return &ast.Content{Text: s} }

func ingredient(name, amount string) ast.StepItem {
	return &ast.Ingredient{Name: name, Amount: amount}
}

func cookware(name string) ast.StepItem { return &ast.Cookware{Name: name} }

func TestMetadata(t *testing.T) {
	assertLines(t, ">> servings: 2", md("servings", "2"))
	assertLines(t, "\t  >> a : b c \n \t >>3d:f g  ", md("a", "b c"), md("3d", "f g"))
	assertLines(t, ">> source: https://example.com/pie", md("source", "https://example.com/pie"))
	assertLines(t, `>> ratio\: flour: 2\:1`, md("ratio: flour", "2:1"))
}

func TestSteps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ast.Line
	}{
		{
			name:  "basic step",
			input: " do something ",
			want:  []ast.Line{step(text("do something"))},
		},
		{
			name:  "internal whitespace kept",
			input: "stir   gently,\tthen rest",
			want:  []ast.Line{step(text("stir   gently,\tthen rest"))},
		},
		{
			name:  "short ingredient",
			input: " chop @cucumber finely",
			want:  []ast.Line{step(text("chop"), ingredient("cucumber", ""), text("finely"))},
		},
		{
			name:  "short ingredient glued to text",
			input: "chop@cucumber finely",
			want:  []ast.Line{step(text("chop"), ingredient("cucumber", ""), text("finely"))},
		},
		{
			name:  "empty long ingredient",
			input: "chop@cucumber{}finely",
			want:  []ast.Line{step(text("chop"), ingredient("cucumber", ""), text("finely"))},
		},
		{
			name:  "long ingredient",
			input: "sprinkle @ground pepper{} to taste",
			want:  []ast.Line{step(text("sprinkle"), ingredient("ground pepper", ""), text("to taste"))},
		},
		{
			name:  "ingredient quantity",
			input: "chop @red bell pepper{1kg}",
			want:  []ast.Line{step(text("chop"), ingredient("red bell pepper", "1kg"))},
		},
		{
			name:  "short name stops at punctuation",
			input: "season with @salt, then serve",
			want:  []ast.Line{step(text("season with"), ingredient("salt", ""), text(", then serve"))},
		},
		{
			name:  "cookware",
			input: "#knife",
			want:  []ast.Line{step(cookware("knife"))},
		},
		{
			name:  "long cookware",
			input: "chop @cheese with #long knife{}",
			want: []ast.Line{step(
				text("chop"), ingredient("cheese", ""), text("with"), cookware("long knife"),
			)},
		},
		{
			name:  "timer",
			input: "cook @eggs{2} in #skillet for ~{25%minutes}.",
			want: []ast.Line{step(
				text("cook"),
				ingredient("eggs", "2"),
				text("in"),
				cookware("skillet"),
				text("for"),
				&ast.Timer{Duration: 25, Unit: "minutes"},
				text("."),
			)},
		},
		{
			name:  "named timer without unit",
			input: "boil ~eggs{3}",
			want:  []ast.Line{step(text("boil"), &ast.Timer{Name: "eggs", Duration: 3})},
		},
		{
			name:  "blank lines",
			input: "       a       \n    \n\nb\n\n",
			want:  []ast.Line{step(text("a")), step(text("b"))},
		},
		{
			name:  "comment lines",
			input: "-- prep first\nstir\r\n  -- done",
			want:  []ast.Line{step(text("stir"))},
		},
		{
			name:  "stray markers are literal",
			input: "email me @ home # 1 ~ ok @",
			want:  []ast.Line{step(text("email me @ home # 1 ~ ok @"))},
		},
		{
			name:  "escaped markers",
			input: `use \@handle and \\ then \#tag`,
			want:  []ast.Line{step(text(`use @handle and \ then #tag`))},
		},
		{
			name:  "bare backslash is literal",
			input: `path C:\temp or a\b \`,
			want:  []ast.Line{step(text(`path C:\temp or a\b \`))},
		},
		{
			name:  "image tag skipped",
			input: "plate it ![photo](dish.jpg) nicely",
			want:  []ast.Line{step(text("plate it  nicely"))},
		},
		{
			name:  "metadata between steps",
			input: "mix\n>> servings: 4\nbake",
			want:  []ast.Line{step(text("mix")), md("servings", "4"), step(text("bake"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertLines(t, tt.input, tt.want...)
		})
	}
}

func TestWhitespaceOnlyInput(t *testing.T) {
	require.Empty(t, parse(t, "   \n\t\n\n"))
	require.Empty(t, parse(t, ""))
}

func TestSpacedFlags(t *testing.T) {
	spaced := func(input string) []bool {
		lines := parse(t, input)
		require.Len(t, lines, 1)
		var out []bool
		for _, it := range lines[0].(*ast.Step).Items {
			out = append(out, it.WasSpaced())
		}
		return out
	}

	require.Equal(t, []bool{false, true, true}, spaced("chop @cucumber finely"))
	require.Equal(t, []bool{false, false, false}, spaced("chop@cucumber{}finely"))
	require.Equal(t, []bool{false, true, false}, spaced("cook for ~{2%min}."))
}

func TestRanges(t *testing.T) {
	lines := parse(t, "\ncook @eggs{2}")
	require.Len(t, lines, 1)

	items := lines[0].(*ast.Step).Items
	require.Len(t, items, 2)

	rng := items[1].SourceRange()
	require.Equal(t, "test.cook", rng.Filename)
	require.Equal(t, hcl.Pos{Line: 2, Column: 6, Byte: 6}, rng.Start)
	require.Equal(t, hcl.Pos{Line: 2, Column: 14, Byte: 14}, rng.End)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSummary string
		wantLine    int
		wantColumn  int
	}{
		{"unterminated ingredient", "a\nadd @salt{1 tsp", "Unterminated ingredient block", 2, 10},
		{"unterminated cookware", "heat #pot{", "Unterminated cookware block", 1, 10},
		{"unterminated timer", "wait ~{10%min", "Unterminated timer block", 1, 7},
		{"bad timer duration", "wait ~{ten%minutes}", "Invalid timer duration", 1, 8},
		{"metadata without colon", ">> servings 2", "Invalid metadata line", 1, 1},
		{"metadata without key", "  >> : 2", "Missing metadata key", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, diags := Parse([]byte(tt.input), "test.cook", hcl.Pos{})
			require.True(t, diags.HasErrors())
			require.Nil(t, lines)

			d := diags[0]
			require.Equal(t, hcl.DiagError, d.Severity)
			require.Equal(t, tt.wantSummary, d.Summary)
			require.NotNil(t, d.Subject)
			require.Equal(t, tt.wantLine, d.Subject.Start.Line)
			require.Equal(t, tt.wantColumn, d.Subject.Start.Column)
		})
	}
}

func TestErrorsAreCollectedAcrossLines(t *testing.T) {
	_, diags := Parse([]byte("add @salt{1\nadd @pepper{2"), "test.cook", hcl.Pos{})
	require.Len(t, diags.Errs(), 2)
}

func TestStartPosition(t *testing.T) {
	_, diags := Parse([]byte("add @salt{1"), "body.cook", hcl.Pos{Line: 5, Column: 1, Byte: 40})
	require.True(t, diags.HasErrors())
	require.Equal(t, 5, diags[0].Subject.Start.Line)
	require.Equal(t, 49, diags[0].Subject.Start.Byte)
}

func TestWarnings(t *testing.T) {
	lines, diags := Parse([]byte("heat #pot{2} and add ![x](y.png)"), "test.cook", hcl.Pos{})
	require.False(t, diags.HasErrors())
	require.Len(t, lines, 1)
	require.Len(t, diags, 2)
	require.Equal(t, hcl.DiagWarning, diags[0].Severity)
	require.Equal(t, "Cookware quantity ignored", diags[0].Summary)
	require.Equal(t, "Image tag ignored", diags[1].Summary)
}
