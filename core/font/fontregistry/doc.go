/*
Package fontregistry manages a catalog of loaded fonts.

A Catalog maps font names to font resources. Fonts are resolved in this
order:

  1. exact (case-insensitive) match of a font already in the catalog
  2. built-in aliases, e.g. "helvetica" or "monospace"
  3. prefix and substring match of a font already in the catalog
  4. the catalog's search paths, which are scanned recursively for .ttf
     and .otf files on first use; every font found is registered
  5. the platform's font directories and fontconfig, if configured

If all of these fail, Resolve returns an embedded fallback font together
with an error carrying code core.EMISSING, which clients will usually treat
as a warning.

A catalog is safe for concurrent use. Population of a search target (a
search directory, a system font, a font file) happens at most once per
catalog, while lookups share a read lock. Fonts are immutable after loading
and may be shared freely.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'mdpdf.font'
func tracer() tracing.Trace {
	return tracing.Select("mdpdf.font")
}
