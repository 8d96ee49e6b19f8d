// Package ast holds the line and step nodes produced by the grammar. Nodes
// keep the raw text of the document; interpretation of amounts and metadata
// happens during reduction.
package ast

import "github.com/hashicorp/hcl/v2"

// Span locates a node in the source.
type Span struct {
	Range hcl.Range
	// Spaced is set when whitespace separated the node from the previous
	// item of the same step.
	Spaced bool
}

// Line is either *Metadata or *Step.
type Line interface {
	SourceRange() hcl.Range
	isLine()
}

// Metadata is a ">> key: value" line.
type Metadata struct {
	Span
	Key   string
	Value string
}

// Step is an instruction line.
type Step struct {
	Span
	Items []StepItem
}

// StepItem is one of *Content, *Ingredient, *Cookware or *Timer.
type StepItem interface {
	SourceRange() hcl.Range
	WasSpaced() bool
	isStepItem()
}

// Content is a literal run of step text.
type Content struct {
	Span
	Text string
}

// Ingredient is an "@" mention. Amount is the raw text between braces, ""
// for the short form.
type Ingredient struct {
	Span
	Name   string
	Amount string
}

// Cookware is a "#" mention.
type Cookware struct {
	Span
	Name string
}

// Timer is a "~" mention.
type Timer struct {
	Span
	Name     string
	Duration int64
	Unit     string
}

func (s Span) SourceRange() hcl.Range { return s.Range }
func (s Span) WasSpaced() bool        { return s.Spaced }

func (*Metadata) isLine() {}
func (*Step) isLine()     {}

func (*Content) isStepItem()    {}
func (*Ingredient) isStepItem() {}
func (*Cookware) isStepItem()   {}
func (*Timer) isStepItem()      {}
