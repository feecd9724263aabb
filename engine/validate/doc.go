/*
Package validate checks Markdown documents for problems worth reporting
before or during a conversion.

Problems are reported as diagnostics: warnings with a kind, a message and
a suggestion for the user. None of them stops a conversion. Syntax
anomalies degrade to literal text, missing fonts are replaced by a
fallback font, missing images are left out. Diagnostics make these
silent repairs visible.

Check inspects a document without resolving fonts, which makes it suitable
for dry runs. Input recognizes data which is not Markdown text at all;
Sanitize repairs such data for the lexer and reports it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package validate

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.validate'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.validate")
}
