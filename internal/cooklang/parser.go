// Package cooklang wires front matter, grammar and reduction into a single
// parse call.
package cooklang

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/hashicorp/hcl/v2"

	"github.com/hammamikhairi/cooklang/internal/domain"
	"github.com/hammamikhairi/cooklang/internal/grammar"
	"github.com/hammamikhairi/cooklang/internal/logger"
	"github.com/hammamikhairi/cooklang/internal/reduce"
)

const (
	// SyntaxErrorCode marks documents the grammar rejected.
	SyntaxErrorCode = "RECIPE_SYNTAX"
	// SemanticErrorCode marks documents that parsed but could not be reduced.
	SemanticErrorCode = "RECIPE_SEMANTIC"
)

// Compile-time interface check.
var _ domain.RecipeParser = (*Parser)(nil)

// Parser turns recipe documents into recipes. It holds no per-call state and
// is safe for concurrent use.
type Parser struct {
	log  *logger.Logger
	opts []reduce.Option
}

// NewParser creates a parser. opts are passed to every reduction.
func NewParser(log *logger.Logger, opts ...reduce.Option) *Parser {
	return &Parser{log: log, opts: opts}
}

// Parse parses src. Front matter entries come before the document's own
// metadata lines, so a ">>" line overrides a front matter key.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	header, body, start, err := splitFrontMatter(filename, src)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithTextCode(SyntaxErrorCode)
	}

	lines, diags := grammar.Parse(body, filename, start)
	p.report(diags)
	if diags.HasErrors() {
		return nil, goerrors.Wrap(diags, goerrors.CategoryValidation, diags.Error()).
			WithTextCode(SyntaxErrorCode)
	}

	recipe, err := reduce.Reduce(string(src), append(header, lines...), p.opts...)
	if err != nil {
		p.log.Debug("reduce %s: %v", filename, err)
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, filename+": "+err.Error()).
			WithTextCode(SemanticErrorCode)
	}

	p.log.Debug("parsed %s: %d ingredients, %d steps", filename,
		len(recipe.Metadata.Ingredients), len(recipe.Steps()))
	return recipe, nil
}

func (p *Parser) report(diags hcl.Diagnostics) {
	for _, d := range diags {
		switch d.Severity {
		case hcl.DiagWarning:
			p.log.Warn("%s", describe(d))
		default:
			p.log.Debug("%s", describe(d))
		}
	}
}

func describe(d *hcl.Diagnostic) string {
	if d.Subject == nil {
		return d.Summary
	}
	return d.Subject.String() + ": " + d.Summary + "; " + d.Detail
}
