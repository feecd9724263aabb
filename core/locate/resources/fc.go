package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
)

func findFontConfigBinary(conf schuko.Configuration) (string, error) {
	if conf == nil || conf.GetString("fontconfig") == "" {
		tracer().Debugf("fontconfig not configured: key 'fontconfig' should point location of 'fc-list' binary")
		return "", core.Error(core.EMISSING, "fontconfig not configured")
	}
	fcpath := conf.GetString("fontconfig")
	if !filepath.IsAbs(fcpath) {
		return "", core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
	}
	if fi, err := os.Stat(fcpath); err != nil || (fi.Mode().Perm()&0100) == 0 {
		return "", core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", fcpath)
	}
	return fcpath, nil
}

// cacheFontConfigList runs fc-list once and stores its output in the
// application's cache folder. Subsequent calls return the cached file
// unless update is set.
func cacheFontConfigList(conf schuko.Configuration, fcpath string, update bool) (string, error) {
	dir, err := CacheDirPath(conf, "fontconfig")
	if err != nil {
		return "", err
	}
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, nil
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		return "", core.WrapError(err, core.EINVALID,
			"fontconfig output file cannot be created: %s", fcListFilename)
	}
	return fcListFilename, nil
}

// parseFontConfigList reads lines of fc-list output, which have the form
//
//    /usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
//
func parseFontConfigList(r io.Reader) ([]font.Descriptor, error) {
	var descs []font.Descriptor
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		family := strings.TrimPrefix(strings.TrimSpace(fields[1]), ".")
		if i := strings.IndexByte(family, ','); i > 0 { // localized family names
			family = family[:i]
		}
		descs = append(descs, font.Descriptor{
			Family:   family,
			Path:     fontpath,
			Variants: []string{fontConfigVariant(strings.ToLower(fields[2]))},
		})
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: font collections not supported", ttc)
	}
	return descs, scanner.Err()
}

func fontConfigVariant(style string) string {
	switch {
	case strings.Contains(style, "bold") && (strings.Contains(style, "italic") || strings.Contains(style, "oblique")):
		return "bolditalic"
	case strings.Contains(style, "italic"), strings.Contains(style, "oblique"):
		return "italic"
	case strings.Contains(style, "bold"), strings.Contains(style, "black"):
		return "bold"
	case strings.Contains(style, "light"):
		return "light"
	}
	return "regular"
}

type fontConfigList struct {
	once  sync.Once
	descs []font.Descriptor
	err   error
}

// fontConfigLists holds one font list per fc-list binary.
var fontConfigLists sync.Map

func loadFontConfigList(conf schuko.Configuration) ([]font.Descriptor, error) {
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return nil, err
	}
	l, _ := fontConfigLists.LoadOrStore(fcpath, &fontConfigList{})
	list := l.(*fontConfigList)
	list.once.Do(func() {
		var fclist string
		if fclist, list.err = cacheFontConfigList(conf, fcpath, false); list.err != nil {
			return
		}
		var fc *os.File
		if fc, list.err = os.Open(fclist); list.err != nil {
			list.err = core.WrapError(list.err, core.EINVALID, "fontconfig font list cannot be opened: %s", fclist)
			return
		}
		defer fc.Close()
		if list.descs, list.err = parseFontConfigList(fc); list.err != nil {
			list.err = core.WrapError(list.err, core.EINVALID,
				"encountered a problem during reading of fontconfig font list: %s", fclist)
		}
		tracer().Infof("loaded fontconfig list with %d fonts", len(list.descs))
	})
	return list.descs, list.err
}

// FindFontConfigFont searches for a locally installed font variant using the fontconfig
// system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured in the application configuration by
// setting the absolute path of the 'fc-list' binary.
//
// FindFontConfigFont will copy the output of fc-list to the user's cache
// directory once. Subsequent calls will use the cached entries to search for
// a font, given a name pattern, a style and a weight.
//
// We call the binary instead of using the C library because of possible version
// issues. If fontconfig is not configured or no font matches with sufficient
// confidence, FindFontConfigFont returns an empty font descriptor and an
// empty variant name.
func FindFontConfigFont(conf schuko.Configuration, pattern string, style xfont.Style, weight xfont.Weight) (
	desc font.Descriptor, variant string) {
	//
	descs, err := loadFontConfigList(conf)
	if err != nil {
		if !core.IsCode(err, core.EMISSING) {
			tracer().Errorf("%v", err)
		}
		return
	}
	var confidence font.MatchConfidence
	desc, variant, confidence = font.ClosestMatch(descs, pattern, style, weight)
	tracer().Debugf("closest fontconfig match confidence for %s|%s = %d", desc.Family, variant, confidence)
	if confidence > font.LowConfidence {
		return
	}
	return font.Descriptor{}, ""
}
