/*
Package markdown tokenizes Markdown text into a tree of tokens.

Markdown parsing is fairly local: a change at the start of a document has no
effect on blocks far behind it. It suffices to know the current block
context, which is threaded through the lexer as a Context.

The lexer is total. It never fails, and every malformed or unterminated
construct degrades to the exact literal text it was written as. Scanners for
individual constructs return the number of bytes consumed together with a
token; a nil token selects the literal-fallback branch of the caller.
Anomalies worth reporting to a user (unterminated fences, unmatched
brackets) are recorded in the resulting Document, never returned as errors.

Supported syntax is a pragmatic subset of CommonMark plus GFM tables:
ATX headings, paragraphs, block quotes, fenced code blocks, bullet and
ordered lists with arbitrary nesting, thematic breaks, pipe tables,
emphasis, code spans, links and images.

References

https://github.github.com/gfm/

https://www.markdownguide.org/basic-syntax

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package markdown

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.markdown'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.markdown")
}
