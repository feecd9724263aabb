package resources

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

func TestLocateImage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "dot.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 2))))
	f.Close()
	info, err := ResolveImage(dir, "dot.png").Image()
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 3, info.Width)
	assert.Equal(t, 2, info.Height)
	//
	_, err = LocateImage(dir, "missing.png")
	assert.True(t, core.IsCode(err, core.EMISSING))
	_, err = LocateImage(dir, "")
	assert.True(t, core.IsCode(err, core.EMISSING))
	info, err = LocateImage(dir, "https://example.org/logo.png")
	require.NoError(t, err)
	assert.True(t, info.Remote)
	assert.Empty(t, info.Path)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("http://x.org/a.png"))
	assert.False(t, IsRemote("images/a.png"))
	assert.False(t, IsRemote("file:///tmp/a.png"))
	assert.False(t, IsRemote("http://"))
}

func TestScanFontFiles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	dir := t.TempDir()
	for _, name := range []string{"b.otf", "a.ttf", "c.ttc", "notes.txt", "sub/D.TTF"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte{}, 0644))
	}
	files, err := ScanFontFiles([]string{dir, filepath.Join(dir, "nonexistent")})
	assert.True(t, core.IsCode(err, core.EMISSING))
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.ttf"), files[0])
	assert.Equal(t, filepath.Join(dir, "sub", "D.TTF"), files[2])
}

func TestMatchFontFile(t *testing.T) {
	files := []string{
		"/f/Arial.ttf",
		"/f/DejaVuSans-Bold.ttf",
		"/f/DejaVuSans.ttf",
		"/f/Trebuchet.otf",
	}
	for name, expected := range map[string]string{
		"arial":           "/f/Arial.ttf",
		"Trebuchet MS":    "/f/Trebuchet.otf",
		"DejaVu Sans":     "/f/DejaVuSans.ttf",
		"dejavusans-bold": "/f/DejaVuSans-Bold.ttf",
		"Deja":            "/f/DejaVuSans-Bold.ttf",
	} {
		p, ok := MatchFontFile(files, name)
		assert.True(t, ok, name)
		assert.Equal(t, expected, p, name)
	}
	_, ok := MatchFontFile(files, "Garamond")
	assert.False(t, ok)
	_, ok = MatchFontFile(files, " ")
	assert.False(t, ok)
}

func TestResolveFontFromDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	dir := t.TempDir()
	fpath := filepath.Join(dir, "GoRegular.ttf")
	require.NoError(t, os.WriteFile(fpath, font.FallbackFont().Binary, 0644))
	conf := testconfig.Conf{"font-dirs": dir}
	f, err := ResolveFont(conf, nil, "Go Regular", xfont.StyleNormal, xfont.WeightNormal).Font()
	require.NoError(t, err)
	assert.Equal(t, fpath, f.Filepath)
	assert.True(t, f.Covers('A'))
	_, err = ResolveFont(nil, []string{dir}, "no-such-font-xyzzy", xfont.StyleNormal, xfont.WeightNormal).Font()
	assert.True(t, core.IsCode(err, core.EMISSING))
}

func TestFontDirs(t *testing.T) {
	conf := testconfig.Conf{"font-dirs": strings.Join([]string{"/a", " ", "/b"}, string(os.PathListSeparator))}
	assert.Equal(t, []string{"/a", "/b"}, FontDirs(conf))
	assert.Nil(t, FontDirs(nil))
}

func TestParseFontConfigList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	list := `/usr/share/fonts/DejaVuSans-Bold.ttf: DejaVu Sans:style=Bold
/usr/share/fonts/NotoSerif-Italic.ttf: Noto Serif,Noto Serif Display:style=Italic
/System/Library/Fonts/Helvetica.ttc: Helvetica:style=Regular

broken line
/usr/share/fonts/DejaVuSans.ttf: DejaVu Sans:style=Book
`
	descs, err := parseFontConfigList(strings.NewReader(list))
	require.NoError(t, err)
	require.Len(t, descs, 3)
	assert.Equal(t, "DejaVu Sans", descs[0].Family)
	assert.Equal(t, []string{"bold"}, descs[0].Variants)
	assert.Equal(t, "Noto Serif", descs[1].Family)
	assert.Equal(t, []string{"italic"}, descs[1].Variants)
	assert.Equal(t, []string{"regular"}, descs[2].Variants)
	d, v, c := font.ClosestMatch(descs, "dejavu", xfont.StyleNormal, xfont.WeightBold)
	assert.Equal(t, "/usr/share/fonts/DejaVuSans-Bold.ttf", d.Path)
	assert.Equal(t, "bold", v)
	assert.Equal(t, font.PerfectConfidence, c)
}

func TestFontConfigNotConfigured(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	desc, variant := FindFontConfigFont(testconfig.Conf{}, "dejavu", xfont.StyleNormal, xfont.WeightNormal)
	assert.Empty(t, desc.Path)
	assert.Empty(t, variant)
	_, err := findFontConfigBinary(testconfig.Conf{"fontconfig": "fc-list"})
	assert.True(t, core.IsCode(err, core.EINVALID))
}

func TestCacheDirPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.resources")
	defer teardown()
	//
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	dir, err := CacheDirPath(testconfig.Conf{"app-key": "mdpdf-test"}, "fonts")
	require.NoError(t, err)
	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, "fonts", filepath.Base(dir))
	_, err = CacheDirPath(testconfig.Conf{})
	assert.True(t, core.IsCode(err, core.EINVALID))
}
