package convert

import (
	"fmt"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/fontregistry"
	"github.com/npillmayer/mdpdf/core/font/subset"
	"github.com/npillmayer/mdpdf/engine/plan"
	"github.com/npillmayer/mdpdf/engine/validate"
	"github.com/npillmayer/mdpdf/input/markdown"
	"go.uber.org/multierr"
)

// Embedding is a font to be embedded into the output, together with the
// characters it displays.
type Embedding struct {
	Font      *font.ScalableFont
	Keys      []plan.FontKey  // plan fonts drawing characters from this font
	Chars     *subset.RuneSet // characters displayed with this font
	Blob      *subset.Blob    // nil if the complete font is embedded
	SubsetErr error           // reason why there is no subset, if subsetting was requested
}

// Data returns the font data to embed.
func (emb *Embedding) Data() []byte {
	if emb.Blob != nil {
		return emb.Blob.Data
	}
	return emb.Font.Binary
}

// IsSubset is a predicate: is a subset of the font embedded?
func (emb *Embedding) IsSubset() bool {
	return emb.Blob != nil
}

func (emb *Embedding) addKey(key plan.FontKey) {
	for _, k := range emb.Keys {
		if k == key {
			return
		}
	}
	emb.Keys = append(emb.Keys, key)
}

// Result is the outcome of a conversion.
type Result struct {
	Plan        *plan.Plan
	Chains      map[plan.FontKey]fontregistry.FallbackChain
	Fonts       []*Embedding // in order of first use
	Diagnostics []validate.Diagnostic
	byFont      map[*font.ScalableFont]*Embedding
}

// FontFor returns the font which displays r for text set in a plan font.
func (res *Result) FontFor(key plan.FontKey, r rune) *font.ScalableFont {
	chain, ok := res.Chains[key]
	if !ok {
		return font.EmbeddedFont(key.Role)
	}
	return chain.FontFor(r)
}

// Embedding returns the embedding of a font, or nil.
func (res *Result) Embedding(f *font.ScalableFont) *Embedding {
	return res.byFont[f]
}

// Convert runs a conversion of Markdown text. It fails only for an unusable
// style table. All other problems, damaged input included, are reported as
// diagnostics of the result.
func Convert(text string, opts Options) (*Result, error) {
	text, diags := validate.Sanitize(text)
	doc := markdown.Lex(text)
	res := &Result{
		Chains: make(map[plan.FontKey]fontregistry.FallbackChain),
		byFont: make(map[*font.ScalableFont]*Embedding),
	}
	res.Diagnostics = append(diags, validate.Check(text, doc, opts.checkOptions())...)
	p, err := plan.Build(doc.Tokens, opts.styles(), opts.Fonts, opts.Plan)
	if err != nil {
		return nil, err
	}
	res.Plan = p
	r := newResolver(opts.catalog(), opts.Fonts)
	for _, key := range p.Fonts() {
		chain := r.chain(key)
		res.Chains[key] = chain
		res.distribute(key, chain, p.CharsFor(key))
	}
	res.Diagnostics = append(res.Diagnostics, r.diags...)
	if opts.Fonts.Subsetting {
		if err := res.subset(subset.NewCache()); err != nil {
			tracer().Infof("%d fonts embedded completely: %v", len(multierr.Errors(err)), err)
			for _, emb := range res.Fonts {
				if emb.SubsetErr != nil {
					res.Diagnostics = append(res.Diagnostics,
						validate.SubsetFailedWarning(emb.Font.Fontname, core.UserMessage(emb.SubsetErr)))
				}
			}
		}
	}
	tracer().Infof("conversion: %d instructions, %d fonts, %d diagnostics",
		len(p.Instructions), len(res.Fonts), len(res.Diagnostics))
	return res, nil
}

// distribute assigns every character of a plan font to the first font of
// the fallback chain covering it.
func (res *Result) distribute(key plan.FontKey, chain fontregistry.FallbackChain, chars *subset.RuneSet) {
	for _, r := range chars.Runes() {
		f := chain.FontFor(r)
		emb, ok := res.byFont[f]
		if !ok {
			emb = &Embedding{Font: f, Chars: subset.NewRuneSet()}
			res.byFont[f] = emb
			res.Fonts = append(res.Fonts, emb)
		}
		emb.Chars.Add(r)
		emb.addKey(key)
	}
}

// subset creates the subsets of all embedded fonts. Fonts which cannot be
// subsetted are embedded completely; their errors are returned combined.
func (res *Result) subset(cache *subset.Cache) error {
	var errs error
	for _, emb := range res.Fonts {
		blob, err := cache.Subset(emb.Font, emb.Chars)
		if err != nil {
			emb.SubsetErr = err
			errs = multierr.Append(errs, err)
			continue
		}
		emb.Blob = blob
	}
	return errs
}

func (opts Options) checkOptions() validate.Options {
	return validate.Options{
		BaseDir:    opts.BaseDir,
		Fonts:      opts.Fonts,
		StylePath:  opts.StylePath,
		OutputPath: opts.OutputPath,
	}
}

// --- Font resolution -------------------------------------------------------

// resolver finds the fonts of a conversion. Every font name is looked up
// and reported once.
type resolver struct {
	catalog    *fontregistry.Catalog
	fonts      plan.FontConfig
	fallbacks  []string
	configured map[bool]*font.ScalableFont // parsed font data, by code flag
	reported   map[string]bool
	diags      []validate.Diagnostic
}

func newResolver(catalog *fontregistry.Catalog, fonts plan.FontConfig) *resolver {
	r := &resolver{
		catalog:    catalog,
		fonts:      fonts,
		configured: make(map[bool]*font.ScalableFont),
		reported:   make(map[string]bool),
	}
	for _, name := range fonts.Fallbacks {
		if _, err := catalog.Resolve(name); err != nil {
			r.missing(name, err)
			continue
		}
		r.fallbacks = append(r.fallbacks, name)
	}
	return r
}

func (r *resolver) chain(key plan.FontKey) fontregistry.FallbackChain {
	chain, err := r.catalog.BuildFallbackChain(key.Role, r.primary(key), r.fallbacks)
	if err != nil {
		tracer().Errorf("fallback chain for %s: %v", key, err)
	}
	return chain
}

// primary returns the first font of a chain. nil selects the built-in font
// of the role.
func (r *resolver) primary(key plan.FontKey) *font.ScalableFont {
	if key.Family == "" {
		return r.fromBytes(key.Role == font.RoleCode)
	}
	var err error
	for _, name := range variantNames(key) {
		var f *font.ScalableFont
		if f, err = r.catalog.Resolve(name); err == nil {
			tracer().Debugf("font %s resolved to %s", key, f.Fontname)
			return f
		}
	}
	r.missing(key.Family, err)
	return nil
}

// fromBytes parses the font data configured for code or for text.
func (r *resolver) fromBytes(code bool) *font.ScalableFont {
	if f, ok := r.configured[code]; ok {
		return f
	}
	data, what := r.fonts.DefaultBytes, "text"
	if code {
		data, what = r.fonts.CodeBytes, "code"
	}
	var f *font.ScalableFont
	if data != nil {
		var err error
		if f, err = font.ParseOpenTypeFont(data); err != nil {
			r.diags = append(r.diags, validate.Diagnostic{
				Kind:       validate.MissingFont,
				Message:    fmt.Sprintf("font data configured for %s cannot be used: %s", what, core.UserMessage(err)),
				Suggestion: "a built-in fallback font is used",
			})
			f = nil
		}
	}
	r.configured[code] = f
	return f
}

func (r *resolver) missing(name string, err error) {
	tracer().Infof("font %q: %v", name, err)
	if r.reported[name] {
		return
	}
	r.reported[name] = true
	r.diags = append(r.diags, validate.MissingFontWarning(name))
}

// variantNames returns the names to look up for a family in a role, most
// specific first. Font files are looked up as they are.
func variantNames(key plan.FontKey) []string {
	if _, isFile := fontregistry.ResolveSource(key.Family); isFile {
		return []string{key.Family}
	}
	switch key.Role {
	case font.RoleBold:
		return []string{key.Family + " Bold", key.Family}
	case font.RoleItalic:
		return []string{key.Family + " Italic", key.Family}
	case font.RoleBoldItalic:
		return []string{key.Family + " Bold Italic", key.Family + " Bold", key.Family}
	}
	return []string{key.Family}
}
