/*
Package convert runs the stages of a Markdown to PDF conversion which
precede page output.

A conversion lexes the Markdown text, checks the document, builds a render
plan, resolves the plan's fonts together with their fallback chains, and
subsets every font to the characters it has to display. The result is
handed to a PDF backend, which is not part of this module.

	res, err := convert.Convert(text, convert.DefaultOptions())
	if err != nil {
	    return err
	}
	for _, d := range res.Diagnostics {
	    fmt.Println(d)
	}
	for _, emb := range res.Fonts {
	    backend.AddFont(emb.Font.Fontname, emb.Data())
	}

Problems which do not stop a conversion, like fonts which cannot be
found, are reported as diagnostics (see package validate). DryRun does the
checks only, without resolving fonts or building a plan.

Conversions are single-threaded. The font catalog is the only resource
shared between conversions.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package convert

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdpdf.convert'.
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.convert")
}
