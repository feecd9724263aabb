package convert

import (
	"github.com/npillmayer/mdpdf/core/font/subset"
	"github.com/npillmayer/mdpdf/engine/validate"
	"github.com/npillmayer/mdpdf/input/markdown"
)

// Report is the outcome of a dry run.
type Report struct {
	Diagnostics []validate.Diagnostic
	Blocks      int                   // top-level blocks
	Tokens      int                   // tokens of the tree
	Images      int                   // image references
	Used        subset.UsedCharacters // characters per font role, for the default styles
}

// OK is a predicate: did the dry run find nothing to report?
func (rep *Report) OK() bool {
	return len(rep.Diagnostics) == 0
}

// DryRun checks Markdown text the way Convert does, without resolving fonts,
// subsetting or building a render plan.
func DryRun(text string, opts Options) (*Report, error) {
	text, diags := validate.Sanitize(text)
	doc := markdown.Lex(text)
	rep := &Report{
		Diagnostics: append(diags, validate.Check(text, doc, opts.checkOptions())...),
		Blocks:      len(doc.Tokens),
		Used:        subset.ExtractUsedCharacters(doc.Tokens),
	}
	markdown.WalkAll(doc.Tokens, func(t *markdown.Token) bool {
		rep.Tokens++
		if t.Kind == markdown.Image {
			rep.Images++
		}
		return true
	})
	tracer().Infof("dry run: %d tokens, %d diagnostics", rep.Tokens, len(rep.Diagnostics))
	return rep, nil
}
