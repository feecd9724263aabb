/*
Package plan builds render plans from Markdown token trees.

A render plan is a flat, ordered stream of abstract instructions: blocks
begin and end, text runs in a resolved style and font, images, list
markers, table rows and cells, rules and vertical space. It is what a PDF
backend consumes to emit pages; the backend needs no knowledge of
Markdown or of style sheets.

Builder

Build walks a token tree depth-first. Every block token resolves its style
from the style table, inheriting from the enclosing block. Vertical space
between blocks collapses: the gap between two blocks is the larger of the
first block's space-after and the second block's space-before, never
their sum. Inline styles compose additively: an emphasis span inside a
heading keeps the heading's size and adds italics.

While walking, the builder collects the characters rendered per font role
and per font, which is the input for font subsetting.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package plan

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.plan'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.plan")
}
