package fontregistry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/derekparker/trie"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/ot"
	"github.com/npillmayer/mdpdf/core/locate/resources"
	"github.com/npillmayer/schuko"
	"go.uber.org/multierr"
	xfont "golang.org/x/image/font"
)

// Catalog holds fonts loaded for documents, indexed by name.
type Catalog struct {
	mx          sync.RWMutex
	index       *trie.Trie // normalized name → *font.ScalableFont
	aliases     *trie.Trie // alias → generic family
	failures    error      // font files which could not be loaded
	searchPaths []string
	conf        schuko.Configuration
	flightMx    sync.Mutex
	flights     map[string]*flight
}

// flight is the population of a single search target.
type flight struct {
	done chan struct{}
	err  error
}

var defaultCatalog *Catalog

var defaultCatalogCreation sync.Once

// Default is an application-wide catalog without search paths, resolving
// fonts from the platform's font directories.
func Default() *Catalog {
	defaultCatalogCreation.Do(func() {
		defaultCatalog = NewCatalog(nil)
	})
	return defaultCatalog
}

var shared = struct {
	sync.Mutex
	catalogs map[string]*Catalog
}{catalogs: make(map[string]*Catalog)}

// ForConfig returns the application-wide catalog for a configuration.
// Configurations with equal keys 'font-dirs' and 'fontconfig' share a
// catalog, and with it the fonts loaded so far. conf may be nil, which
// selects Default().
func ForConfig(conf schuko.Configuration) *Catalog {
	if conf == nil {
		return Default()
	}
	key := conf.GetString("font-dirs") + "\x00" + conf.GetString("fontconfig")
	shared.Lock()
	defer shared.Unlock()
	c, ok := shared.catalogs[key]
	if !ok {
		c = NewCatalog(conf)
		shared.catalogs[key] = c
	}
	return c
}

// NewCatalog creates a catalog containing the embedded fonts only.
// Fonts not in the catalog will be searched for in searchPaths, the
// directories of configuration key 'font-dirs' and the platform's font
// directories. conf may be nil.
func NewCatalog(conf schuko.Configuration, searchPaths ...string) *Catalog {
	c := &Catalog{
		searchPaths: searchPaths,
		conf:        conf,
	}
	c.init()
	return c
}

func (c *Catalog) init() {
	c.index = trie.New()
	c.aliases = trie.New()
	c.failures = nil
	for alias, g := range builtinAliases {
		c.aliases.Add(alias, g)
	}
	for _, role := range font.Roles() {
		c.registerFont(font.EmbeddedFont(role))
	}
	c.flightMx.Lock()
	c.flights = make(map[string]*flight)
	c.flightMx.Unlock()
}

// Release drops all fonts loaded into the catalog and forgets about
// populated search targets. The catalog may be used again afterwards.
func (c *Catalog) Release() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.init()
	tracer().Debugf("font catalog released")
}

// Register stores a font under a name, in addition to the names derived
// from the font itself. An existing entry for name is not overridden.
func (c *Catalog) Register(name string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("catalog cannot store null font")
		return
	}
	c.mx.Lock()
	defer c.mx.Unlock()
	c.registerAs(key(name), f)
	c.registerFont(f)
}

// RegisterBytes parses font data and registers the font under name.
// The font will have an empty file path.
func (c *Catalog) RegisterBytes(name string, data []byte) (*font.ScalableFont, error) {
	f, err := font.ParseOpenTypeFont(data)
	if err != nil {
		return nil, err
	}
	f.Style, f.Weight = font.GuessStyleAndWeight(name)
	c.Register(name, f)
	return f, nil
}

// Resolve finds a font by name. Names denoting a font file (see
// ResolveSource) are loaded from that file. If no font can be found, Resolve
// returns the embedded fallback font and an error with code core.EMISSING.
func (c *Catalog) Resolve(name string) (*font.ScalableFont, error) {
	if path, isFile := ResolveSource(name); isFile {
		return c.resolveFile(path)
	}
	k := key(name)
	if k == "" {
		return c.fallback(name)
	}
	if f := c.lookup(k); f != nil {
		return f, nil
	}
	if g, ok := c.alias(k); ok {
		return c.resolveGeneric(g), nil
	}
	if f := c.fuzzy(k); f != nil {
		return f, nil
	}
	c.populateSearchPaths()
	if f := c.lookup(k); f != nil {
		return f, nil
	}
	if f := c.fuzzy(k); f != nil {
		return f, nil
	}
	if f := c.resolveSystemFont(name, k); f != nil {
		return f, nil
	}
	return c.fallback(name)
}

// ResolveSource decides wether a font name denotes a font file: names
// containing a path separator or ending in .ttf or .otf are file sources.
// For file sources, the cleaned path is returned.
func ResolveSource(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') ||
		resources.IsFontFile(name) {
		return filepath.Clean(name), true
	}
	return name, false
}

// Coverage is a predicate: does font f have a glyph for r?
func (c *Catalog) Coverage(f *font.ScalableFont, r rune) bool {
	return f.Covers(r)
}

// Fonts returns the names of all entries of the catalog, sorted.
func (c *Catalog) Fonts() []string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	keys := c.index.Keys()
	sort.Strings(keys)
	return keys
}

// Failures returns the errors of font files which have been skipped during
// population, combined into one error.
func (c *Catalog) Failures() error {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.failures
}

// --- Lookup ----------------------------------------------------------------

// key normalizes a font name: lower case, single blanks, without
// font file extension.
func key(name string) string {
	name = strings.TrimSpace(name)
	if resources.IsFontFile(name) {
		name = name[:len(name)-len(filepath.Ext(name))]
	}
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (c *Catalog) lookup(k string) *font.ScalableFont {
	c.mx.RLock()
	defer c.mx.RUnlock()
	if n, ok := c.index.Find(k); ok {
		return n.Meta().(*font.ScalableFont)
	}
	return nil
}

// minFuzzyLength is the minimum length of a name for prefix and
// substring matching.
const minFuzzyLength = 3

// fuzzy tries a prefix match, then a substring match. From several
// candidates, the one sorting first wins.
func (c *Catalog) fuzzy(k string) *font.ScalableFont {
	if len(k) < minFuzzyLength {
		return nil
	}
	c.mx.RLock()
	defer c.mx.RUnlock()
	candidates := c.index.PrefixSearch(k)
	if len(candidates) == 0 {
		for _, name := range c.index.Keys() {
			if strings.Contains(name, k) {
				candidates = append(candidates, name)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Strings(candidates)
	tracer().Debugf("font name %q matches %q", k, candidates[0])
	if n, ok := c.index.Find(candidates[0]); ok {
		return n.Meta().(*font.ScalableFont)
	}
	return nil
}

func (c *Catalog) fallback(name string) (*font.ScalableFont, error) {
	tracer().Infof("font %q not found, using fallback font", name)
	return font.FallbackFont(), resources.NotFound(name, resources.FontResource)
}

// registerAs stores f under k. The caller must hold the write lock.
func (c *Catalog) registerAs(k string, f *font.ScalableFont) {
	if k == "" {
		return
	}
	if _, ok := c.index.Find(k); !ok {
		tracer().Debugf("catalog stores font %s as %q", f.Fontname, k)
		c.index.Add(k, f)
	}
}

// registerFont stores f under its full name, its file name and, for
// regular faces, its family name. The caller must hold the write lock.
func (c *Catalog) registerFont(f *font.ScalableFont) {
	c.registerAs(key(f.Fontname), f)
	if f.Filepath != "" && f.Filepath != "internal" {
		c.registerAs(key(filepath.Base(f.Filepath)), f)
	}
	if f.OT != nil && f.Style == xfont.StyleNormal && f.Weight == xfont.WeightNormal {
		c.registerAs(key(f.OT.Name(ot.NameTypographicFam)), f)
		c.registerAs(key(f.OT.Name(ot.NameFontFamily)), f)
	}
}

// --- Aliases ---------------------------------------------------------------

type generic int8

const (
	genericSans generic = iota
	genericSerif
	genericMono
)

var builtinAliases = map[string]generic{
	"helvetica":       genericSans,
	"arial":           genericSans,
	"sans-serif":      genericSans,
	"sans":            genericSans,
	"times":           genericSerif,
	"times new roman": genericSerif,
	"serif":           genericSerif,
	"courier":         genericMono,
	"courier new":     genericMono,
	"monospace":       genericMono,
}

// serifFamilies are tried, in order, for the serif aliases.
var serifFamilies = []string{"times new roman", "liberation serif", "dejavu serif", "noto serif"}

func (c *Catalog) alias(k string) (generic, bool) {
	c.mx.RLock()
	defer c.mx.RUnlock()
	if n, ok := c.aliases.Find(k); ok {
		return n.Meta().(generic), true
	}
	return genericSans, false
}

// resolveGeneric resolves a generic family. There is no embedded serif
// face; serif resolves to a font from the search paths, if present.
func (c *Catalog) resolveGeneric(g generic) *font.ScalableFont {
	switch g {
	case genericMono:
		return font.EmbeddedFont(font.RoleCode)
	case genericSerif:
		c.populateSearchPaths()
		for _, fam := range serifFamilies {
			if f := c.lookup(fam); f != nil {
				return f
			}
		}
		tracer().Infof("no serif font available, substituting %s", font.FallbackFont().Fontname)
	}
	return font.EmbeddedFont(font.RoleDefault)
}

// --- Population ------------------------------------------------------------

// populate runs load for a search target, at most once per catalog.
// Concurrent callers for the same target wait for the first one to
// complete and share its result.
func (c *Catalog) populate(target string, load func() error) error {
	c.flightMx.Lock()
	if fl, ok := c.flights[target]; ok {
		c.flightMx.Unlock()
		<-fl.done
		return fl.err
	}
	fl := &flight{done: make(chan struct{})}
	c.flights[target] = fl
	c.flightMx.Unlock()
	tracer().Debugf("populating font catalog from %s", target)
	fl.err = core.Error(core.EINTERNAL, "loading fonts from %s did not complete", target)
	defer close(fl.done)
	fl.err = load()
	return fl.err
}

func (c *Catalog) recordFailure(err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.failures = multierr.Append(c.failures, err)
}

// populateSearchPaths loads every font file below the search paths.
func (c *Catalog) populateSearchPaths() {
	dirs := append(append([]string{}, c.searchPaths...), resources.FontDirs(c.conf)...)
	for _, dir := range dirs {
		dir := dir
		c.populate("dir:"+dir, func() error {
			files, err := resources.ScanFontFiles([]string{dir})
			if err != nil {
				c.recordFailure(err)
			}
			var fonts []*font.ScalableFont
			for _, path := range files {
				f, err := font.LoadOpenTypeFont(path)
				if err != nil {
					tracer().Infof("skipping font file %s: %v", path, err)
					c.recordFailure(core.WrapError(err, core.Code(err), "font file %s skipped", path))
					continue
				}
				fonts = append(fonts, f)
			}
			c.mx.Lock()
			defer c.mx.Unlock()
			for _, f := range fonts {
				c.registerFont(f)
			}
			tracer().Infof("font catalog loaded %d fonts from %s", len(fonts), dir)
			return err
		})
	}
}

func (c *Catalog) resolveFile(path string) (*font.ScalableFont, error) {
	k := key(path)
	err := c.populate("file:"+path, func() error {
		f, err := font.LoadOpenTypeFont(path)
		if err != nil {
			c.recordFailure(err)
			return err
		}
		c.mx.Lock()
		defer c.mx.Unlock()
		c.registerAs(k, f)
		c.registerFont(f)
		return nil
	})
	if f := c.lookup(k); f != nil {
		return f, nil
	}
	if err == nil || core.IsCode(err, core.EMISSING) {
		return c.fallback(path)
	}
	return font.FallbackFont(), err
}

func (c *Catalog) resolveSystemFont(name string, k string) *font.ScalableFont {
	c.populate("system:"+k, func() error {
		style, weight := font.GuessStyleAndWeight(name)
		f, err := resources.ResolveFont(c.conf, nil, name, style, weight).Font()
		if err != nil {
			return err
		}
		c.mx.Lock()
		defer c.mx.Unlock()
		c.registerAs(k, f)
		c.registerFont(f)
		return nil
	})
	return c.lookup(k)
}

// --- Fallback chains -------------------------------------------------------

// FallbackChain is an ordered list of fonts for a role. Characters are
// rendered with the first font of the chain covering them.
type FallbackChain struct {
	Role  font.Role
	Fonts []*font.ScalableFont
}

// BuildFallbackChain creates a fallback chain for a role, starting with
// primary, followed by the fonts resolved for names and ending with the
// embedded font for the role. Names which cannot be resolved are left out;
// their errors are returned combined.
func (c *Catalog) BuildFallbackChain(role font.Role, primary *font.ScalableFont, names []string) (
	FallbackChain, error) {
	//
	chain := FallbackChain{Role: role}
	if primary == nil {
		primary = font.EmbeddedFont(role)
	}
	chain.add(primary)
	var errs error
	for _, name := range names {
		f, err := c.Resolve(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		chain.add(f)
	}
	chain.add(font.EmbeddedFont(role))
	tracer().Debugf("fallback chain for %s: %v", role, chain.Fonts)
	return chain, errs
}

func (fc *FallbackChain) add(f *font.ScalableFont) {
	for _, g := range fc.Fonts {
		if g == f {
			return
		}
	}
	fc.Fonts = append(fc.Fonts, f)
}

// Primary returns the first font of the chain.
func (fc FallbackChain) Primary() *font.ScalableFont {
	if len(fc.Fonts) == 0 {
		return font.FallbackFont()
	}
	return fc.Fonts[0]
}

// FontFor returns the first font of the chain covering r. If no font covers
// r, the primary font is returned.
func (fc FallbackChain) FontFor(r rune) *font.ScalableFont {
	for _, f := range fc.Fonts {
		if f.Covers(r) {
			return f
		}
	}
	return fc.Primary()
}
