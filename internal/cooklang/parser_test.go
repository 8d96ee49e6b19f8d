package cooklang

import (
	"bytes"
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/logger"
)

func newTestParser() *Parser {
	return NewParser(logger.New(logger.LevelOff, nil))
}

func TestParse(t *testing.T) {
	src := ">> servings: 2\ncook @eggs{2} in #skillet for ~{25%minutes}.\nserve"
	r, err := newTestParser().Parse(context.Background(), "eggs.cook", []byte(src))
	require.NoError(t, err)

	require.Equal(t, src, r.Source)
	require.Equal(t, []int{2}, r.Metadata.Servings)
	require.Equal(t, "cook @ in # for ~.\nserve", r.Instruction)
	require.Equal(t, []string{"skillet"}, r.Metadata.Cookware)
}

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantTitle    string
		wantServings []int
		wantOminous  map[string]string
	}{
		{
			name:         "yaml",
			src:          "---\ntitle: Pancakes\nservings: [2, 4]\ntags:\n  - breakfast\n  - sweet\n---\nadd @milk{1|2%l}",
			wantTitle:    "Pancakes",
			wantServings: []int{2, 4},
			wantOminous:  map[string]string{"title": "Pancakes", "tags": "breakfast, sweet"},
		},
		{
			name:         "toml",
			src:          "+++\ntitle = \"Soup\"\nservings = 4\n+++\nboil @water{*0.5%l} in #pot",
			wantTitle:    "Soup",
			wantServings: []int{4},
			wantOminous:  map[string]string{"title": "Soup"},
		},
		{
			name:         "body overrides front matter",
			src:          "---\ntitle: Pancakes\n---\n>> title: Crepes\nflip @crepe",
			wantTitle:    "Crepes",
			wantOminous:  map[string]string{"title": "Crepes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := newTestParser().Parse(context.Background(), "test.cook", []byte(tt.src))
			require.NoError(t, err)
			require.Equal(t, tt.src, r.Source)
			require.Equal(t, tt.wantTitle, r.Title())
			require.Equal(t, tt.wantServings, r.Metadata.Servings)
			require.Equal(t, tt.wantOminous, r.Metadata.Ominous)
			require.Len(t, r.Steps(), 1)
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := newTestParser().Parse(context.Background(), "test.cook", []byte("mix\nadd @salt{1"))
	require.Error(t, err)
	require.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	require.Contains(t, err.Error(), "Unterminated ingredient block")
	require.Contains(t, err.Error(), "test.cook:2,")
}

func TestParseSyntaxErrorAfterFrontMatter(t *testing.T) {
	src := "---\ntitle: Salted\n---\nadd @salt{1"
	_, err := newTestParser().Parse(context.Background(), "test.cook", []byte(src))
	require.Error(t, err)
	require.Contains(t, err.Error(), "test.cook:4,")
}

func TestParseSemanticError(t *testing.T) {
	_, err := newTestParser().Parse(context.Background(), "test.cook", []byte("@flour{1%kg} then @flour{*1%kg}"))
	require.Error(t, err)
	require.True(t, goerrors.IsCategory(err, goerrors.CategoryValidation))
	require.Contains(t, err.Error(), `ingredient "flour"`)
}

func TestParseLogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewParser(logger.New(logger.LevelNormal, &buf))

	r, err := p.Parse(context.Background(), "test.cook", []byte("plate it ![photo](dish.jpg) on #board{large}"))
	require.NoError(t, err)
	require.Equal(t, "plate it  on #", r.Instruction)
	require.Contains(t, buf.String(), "Image tag ignored")
	require.Contains(t, buf.String(), "Cookware quantity ignored")
}

func TestParseCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestParser().Parse(ctx, "test.cook", []byte("mix"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestStringify(t *testing.T) {
	require.Equal(t, "", stringify(nil))
	require.Equal(t, "a", stringify(" a "))
	require.Equal(t, "1.5", stringify(1.5))
	require.Equal(t, "4", stringify(4))
	require.Equal(t, "true", stringify(true))
	require.Equal(t, "a, 2", stringify([]any{"a", 2}))
	require.Equal(t, domain.FormatNumber(0.25), stringify(0.25))
}
