package validate

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/locate/resources"
	"github.com/npillmayer/mdpdf/engine/plan"
	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/npillmayer/uax/grapheme"
	"golang.org/x/net/idna"
)

// LargeDocumentSize is the default number of characters above which a
// document is reported as large.
const LargeDocumentSize = 100000

// maxSamples is the number of uncovered characters shown in a diagnostic.
const maxSamples = 5

// Options configure a check.
type Options struct {
	BaseDir    string          // directory relative image paths are resolved against
	Fonts      plan.FontConfig // configured fonts
	StylePath  string          // style sheet file, if any
	OutputPath string          // output file, if any
	LargeSize  int             // threshold for LargeDocument; 0 for LargeDocumentSize
}

// unicodeFonts are name fragments of fonts with wide Unicode coverage.
var unicodeFonts = []string{"noto", "dejavu", "liberation", "arial unicode", "roboto",
	"sf pro", "segoe"}

// Check inspects a document and returns diagnostics, in the order: document
// size, files, character coverage, syntax, images. doc is the lexed text;
// if it is nil, text is lexed first. Check never resolves fonts.
func Check(text string, doc *markdown.Document, opts Options) []Diagnostic {
	if doc == nil {
		doc = markdown.Lex(text)
	}
	var diags []Diagnostic
	limit := opts.LargeSize
	if limit <= 0 {
		limit = LargeDocumentSize
	}
	if n := utf8.RuneCountInString(text); n > limit {
		diags = append(diags, LargeDocumentWarning(n))
	}
	diags = append(diags, checkFiles(opts)...)
	if !hasUnicodeFont(opts.Fonts) {
		if samples := UncoveredSamples(text, maxSamples); len(samples) > 0 {
			diags = append(diags, UnicodeWithoutFontWarning(samples))
		}
	}
	diags = append(diags, Syntax(doc)...)
	diags = append(diags, Images(doc.Tokens, opts.BaseDir)...)
	tracer().Infof("check found %d issues", len(diags))
	return diags
}

func checkFiles(opts Options) []Diagnostic {
	var diags []Diagnostic
	if opts.StylePath != "" {
		if _, err := os.Stat(opts.StylePath); err != nil {
			diags = append(diags, MissingConfigWarning(opts.StylePath))
		}
	}
	if opts.OutputPath != "" {
		if dir := filepath.Dir(opts.OutputPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); err != nil {
				diags = append(diags, Diagnostic{
					Kind:       SyntaxWarning,
					Message:    "output directory does not exist: " + dir,
					Suggestion: "create it with: mkdir -p " + dir,
				})
			}
		}
	}
	return diags
}

// hasUnicodeFont is a predicate: is a font with wide coverage configured,
// by font data or by a well-known name?
func hasUnicodeFont(fonts plan.FontConfig) bool {
	if fonts.DefaultBytes != nil {
		return true
	}
	names := append([]string{fonts.DefaultFont}, fonts.Fallbacks...)
	for _, name := range names {
		name = strings.ToLower(name)
		for _, hint := range unicodeFonts {
			if name != "" && strings.Contains(name, hint) {
				return true
			}
		}
	}
	return false
}

var setupGraphemes sync.Once

// UncoveredSamples returns up to n distinct grapheme clusters of text
// starting with a non-ASCII character the built-in fonts do not cover.
func UncoveredSamples(text string, n int) []string {
	if isASCII(text) {
		return nil
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	regular, mono := font.EmbeddedFont(font.RoleDefault), font.EmbeddedFont(font.RoleCode)
	var samples []string
	seen := make(map[string]bool)
	gstr := grapheme.StringFromString(text)
	for i := 0; i < gstr.Len() && len(samples) < n; i++ {
		g := gstr.Nth(i)
		r, _ := utf8.DecodeRuneInString(g)
		if r < utf8.RuneSelf || unicode.IsSpace(r) || unicode.IsControl(r) || seen[g] {
			continue
		}
		if !regular.Covers(r) && !mono.Covers(r) {
			seen[g] = true
			samples = append(samples, g)
		}
	}
	return samples
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Syntax converts the anomalies found by the lexer into diagnostics.
func Syntax(doc *markdown.Document) []Diagnostic {
	var diags []Diagnostic
	for _, a := range doc.Anomalies {
		var issue string
		switch a.Kind {
		case markdown.UnterminatedFence:
			issue = "unclosed code block, running to the end of the document"
		case markdown.UnterminatedCodeSpan:
			issue = "possibly unclosed inline code at " + quote(a.Excerpt)
		case markdown.UnmatchedBracket:
			issue = "unmatched square bracket at " + quote(a.Excerpt) + " (possibly broken link syntax)"
		default:
			issue = a.Kind.String()
		}
		diags = append(diags, SyntaxWarningAt(a.Line, issue))
	}
	return diags
}

func quote(s string) string {
	return "'" + s + "'"
}

// Images checks the images of a token tree. Local images are located
// concurrently; remote images are not fetched, but their host names are
// checked for validity.
func Images(tokens []*markdown.Token, basedir string) []Diagnostic {
	type pending struct {
		dest    string
		promise resources.ImagePromise
	}
	var diags []Diagnostic
	var local []pending
	markdown.WalkAll(tokens, func(t *markdown.Token) bool {
		if t.Kind != markdown.Image || t.Dest == "" {
			return true
		}
		if resources.IsRemote(t.Dest) {
			if err := checkHost(t.Dest); err != nil {
				diags = append(diags, MissingImageWarning(t.Dest, core.UserMessage(err)))
			}
			return true
		}
		local = append(local, pending{dest: t.Dest, promise: resources.ResolveImage(basedir, t.Dest)})
		return true
	})
	for _, p := range local {
		if _, err := p.promise.Image(); err != nil {
			tracer().Debugf("image %s: %v", p.dest, err)
			diags = append(diags, MissingImageWarning(p.dest, ""))
		}
	}
	return diags
}

// checkHost validates the host name of a URL as an internationalized
// domain name.
func checkHost(dest string) error {
	u, err := url.Parse(dest)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "malformed URL")
	}
	if _, err := idna.Lookup.ToASCII(u.Hostname()); err != nil {
		return core.WrapError(err, core.EINVALID, "invalid host name %q", u.Hostname())
	}
	return nil
}
