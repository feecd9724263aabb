/*
Package style implements style tables for rendering Markdown documents.

A style table maps token kinds (optionally qualified by a heading level or
a table-header flag) to style descriptors. Tables are immutable and are
supplied once per conversion run. They are built from style sheets, which
hold partial property sets per key. Every property omitted by a sheet entry
is inherited from the document-wide default, the entry for plain text.
A sheet without a text entry cannot be turned into a table; this is the
only hard error of the package.

Style sheets may be read from TOML, with one table per key:

    [margin]
    top = 8.0

    [heading.1]
    size = 14
    beforespacing = 0.8
    textcolor = { r = 0, g = 0, b = 0 }
    alignment = "center"
    bold = true

or from a small subset of CSS (element selectors only, plus a @page rule
for the margins):

    h1 { font-size: 14pt; margin-top: 0.8em; text-align: center }
    @page { margin: 10mm }

Spacing before and after blocks is measured in lines.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.style'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.style")
}
