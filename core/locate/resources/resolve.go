package resources

import (
	"context"
	"fmt"
	"image"
	_ "image/gif" // register image formats for DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/schuko"
	"go.uber.org/multierr"
	xfont "golang.org/x/image/font"
)

// ResourceType is the kind of a resource.
type ResourceType int

// Resource types
const (
	UnknownResource ResourceType = iota
	FontResource
	ImageResource
)

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype ResourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case ImageResource:
		s = fmt.Sprintf("image not found: %s", res)
	case FontResource:
		s = fmt.Sprintf("font not found: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	return core.WrapError(e, core.EMISSING, s)
}

// --- Images ---------------------------------------------------------------

// ImageInfo describes an image referenced by a document.
type ImageInfo struct {
	Source string // destination as written in the document
	Path   string // resolved local path; empty for remote images
	Remote bool   // image is referenced by URL and is not fetched
	Format string // "png", "jpeg", "gif"; empty if not determined
	Width  int    // in pixels, 0 if unknown
	Height int
}

// IsRemote is a predicate: does dest denote a network location?
func IsRemote(dest string) bool {
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return u.Host != ""
	}
	return false
}

// LocateImage resolves an image destination relative to a base directory
// and reads its dimensions. Remote images are not fetched; they are reported
// as remote without error. A local image which does not exist results in an
// error with code core.EMISSING.
func LocateImage(basedir string, dest string) (*ImageInfo, error) {
	info := &ImageInfo{Source: dest}
	if dest == "" {
		return info, NotFound("(empty image destination)", ImageResource)
	}
	if IsRemote(dest) {
		info.Remote = true
		return info, nil
	}
	p := strings.TrimPrefix(dest, "file://")
	if !filepath.IsAbs(p) && basedir != "" {
		p = filepath.Join(basedir, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return info, NotFound(dest, ImageResource)
	}
	defer f.Close()
	info.Path = p
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		tracer().Infof("cannot determine dimensions of image %s: %v", p, err)
		return info, nil
	}
	info.Format, info.Width, info.Height = format, cfg.Width, cfg.Height
	return info, nil
}

type imgPlusErr struct {
	img *ImageInfo
	err error
}

// ImagePromise is a handle for an image being located.
type ImagePromise interface {
	Image() (*ImageInfo, error)
}

type imageLoader struct {
	await func(ctx context.Context) (*ImageInfo, error)
}

func (loader imageLoader) Image() (*ImageInfo, error) {
	return loader.await(context.Background())
}

// ResolveImage locates an image asynchronously. See LocateImage.
func ResolveImage(basedir string, dest string) ImagePromise {
	ch := make(chan imgPlusErr, 1)
	go func(ch chan<- imgPlusErr) {
		result := imgPlusErr{}
		result.img, result.err = LocateImage(basedir, dest)
		ch <- result
		close(ch)
	}(ch)
	return imageLoader{
		await: func(ctx context.Context) (*ImageInfo, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.img, r.err
			}
		},
	}
}

// --- Font files ------------------------------------------------------------

// IsFontFile is a predicate: does a file name denote a font file we are
// able to load? Font collections (.ttc) are not loadable.
func IsFontFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".ttf" || ext == ".otf"
}

// FontDirs returns the font directories set with configuration key 'font-dirs'.
func FontDirs(conf schuko.Configuration) []string {
	if conf == nil || conf.GetString("font-dirs") == "" {
		return nil
	}
	var dirs []string
	for _, d := range filepath.SplitList(conf.GetString("font-dirs")) {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// ScanFontFiles recursively collects the font files below a list of
// directories. Directories which cannot be read are skipped, and the
// errors are returned combined. The result is sorted.
func ScanFontFiles(dirs []string) ([]string, error) {
	var files []string
	var errs error
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return err
				}
				tracer().Debugf("skipping %s: %v", path, err)
				return nil
			}
			if !d.IsDir() && IsFontFile(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, core.WrapError(err, core.EMISSING, "font directory %s cannot be scanned", dir))
		}
	}
	sort.Strings(files)
	tracer().Debugf("found %d font files in %d directories", len(files), len(dirs))
	return files, errs
}

// fileNameCandidates returns the file names a font name may be stored under,
// in order of preference.
func fileNameCandidates(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	bases := []string{name}
	if noMS := strings.TrimSpace(strings.ReplaceAll(name, " ms", "")); noMS != name {
		bases = append(bases, noMS)
	}
	if compact := strings.ReplaceAll(name, " ", ""); compact != name {
		bases = append(bases, compact)
	}
	var candidates []string
	for _, b := range bases {
		candidates = append(candidates, b+".ttf", b+".otf")
	}
	return candidates
}

// MatchFontFile selects the font file for a font name from a list of paths.
// Candidates are tried in this order: 'name.ttf', 'name.otf', the name with
// " MS" removed, the name with blanks removed, and finally any file whose
// base name starts with the name. Comparison ignores case.
func MatchFontFile(files []string, name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	for _, c := range fileNameCandidates(name) {
		for _, f := range files {
			if strings.ToLower(filepath.Base(f)) == c {
				return f, true
			}
		}
	}
	prefix := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
	for _, f := range files {
		base := strings.ReplaceAll(strings.ToLower(filepath.Base(f)), " ", "")
		if strings.HasPrefix(base, prefix) {
			return f, true
		}
	}
	return "", false
}

// FindSystemFont searches for a font in the platform's user and system font
// directories. Font collections are not returned.
func FindSystemFont(name string) (string, bool) {
	for _, c := range fileNameCandidates(name) {
		if fpath, err := findfont.Find(c); err == nil && IsFontFile(fpath) {
			tracer().Debugf("%s is a system font: %s", name, fpath)
			return fpath, true
		}
	}
	return "", false
}

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

// FontPromise is a handle for a font being loaded.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

// ResolveFont locates and loads a font file for a font name. It searches
// dirs, then the directories of configuration key 'font-dirs', then the
// platform's font directories and finally the fontconfig list, if
// configured. conf may be nil.
//
// A font which cannot be found results in an error with code core.EMISSING.
func ResolveFont(conf schuko.Configuration, dirs []string, name string, style xfont.Style,
	weight xfont.Weight) FontPromise {
	//
	ch := make(chan fontPlusErr, 1)
	go func(ch chan<- fontPlusErr) {
		result := fontPlusErr{}
		files, err := ScanFontFiles(append(append([]string{}, dirs...), FontDirs(conf)...))
		if err != nil {
			tracer().Infof("%v", err)
		}
		fpath, ok := MatchFontFile(files, name)
		if !ok {
			fpath, ok = FindSystemFont(name)
		}
		if !ok {
			if desc, variant := FindFontConfigFont(conf, name, style, weight); desc.Path != "" {
				tracer().Debugf("fontconfig found %s (%s)", desc.Path, variant)
				fpath, ok = desc.Path, true
			}
		}
		if ok {
			result.font, result.err = font.LoadOpenTypeFont(fpath)
		} else {
			result.err = NotFound(name, FontResource)
		}
		ch <- result
		close(ch)
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (*font.ScalableFont, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}
