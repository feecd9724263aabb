package convert

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font/fontregistry"
	"github.com/npillmayer/mdpdf/engine/plan"
	"github.com/npillmayer/mdpdf/engine/style"
	"github.com/npillmayer/schuko"
)

// Options configure a conversion.
type Options struct {
	Catalog    *fontregistry.Catalog // font catalog; nil for fontregistry.Default()
	Fonts      plan.FontConfig
	Style      *style.Table // nil for style.DefaultTable()
	Plan       plan.Options
	BaseDir    string // directory relative image paths are resolved against
	StylePath  string // style sheet the table has been loaded from, if any
	OutputPath string // PDF output file, if known
}

// DefaultOptions returns options for a conversion with the built-in fonts
// and styles.
func DefaultOptions() Options {
	return Options{Fonts: plan.DefaultFontConfig()}
}

// OptionsFromConfig creates options from a configuration. Recognized keys
// are:
//
//   subsetting       embed font subsets, default true
//   list-numbering   "restart" (default) or "continue"
//   default-font     font name or font file for body text
//   code-font        font name or font file for code
//   fallback-fonts   comma separated list of fallback font names
//   font-dirs        additional font directories, path list separated
//
// If font-dirs is set, the options get the catalog shared by all
// configurations with these directories. conf may be nil.
func OptionsFromConfig(conf schuko.Configuration) Options {
	opts := DefaultOptions()
	if conf == nil {
		return opts
	}
	if conf.IsSet("subsetting") {
		opts.Fonts.Subsetting = conf.GetBool("subsetting")
	}
	switch n := strings.ToLower(conf.GetString("list-numbering")); n {
	case "continue":
		opts.Plan.ContinueNumbering = true
	case "", "restart":
	default:
		tracer().Errorf("unknown list numbering %q, numbering restarts", n)
	}
	opts.Fonts.DefaultFont = strings.TrimSpace(conf.GetString("default-font"))
	opts.Fonts.CodeFont = strings.TrimSpace(conf.GetString("code-font"))
	for _, name := range strings.Split(conf.GetString("fallback-fonts"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.Fonts.Fallbacks = append(opts.Fonts.Fallbacks, name)
		}
	}
	if conf.GetString("font-dirs") != "" {
		opts.Catalog = fontregistry.ForConfig(conf)
	}
	return opts
}

// LoadStyleSheet reads a style sheet file. Files with extension ".css" are
// parsed as CSS, all others as TOML. Entries missing from the file are taken
// from the default style sheet. A file which does not exist results in an
// error with code core.EMISSING.
func LoadStyleSheet(path string) (*style.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read style sheet %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".css") {
		return style.LoadCSS(string(data))
	}
	return style.LoadTOML(string(data))
}

func (opts Options) catalog() *fontregistry.Catalog {
	if opts.Catalog == nil {
		return fontregistry.Default()
	}
	return opts.Catalog
}

func (opts Options) styles() *style.Table {
	if opts.Style == nil {
		return style.DefaultTable()
	}
	return opts.Style
}
