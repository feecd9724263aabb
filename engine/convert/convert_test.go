package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/core/font/fontregistry"
	"github.com/npillmayer/mdpdf/core/font/subset"
	"github.com/npillmayer/mdpdf/engine/plan"
	"github.com/npillmayer/mdpdf/engine/style"
	"github.com/npillmayer/mdpdf/engine/validate"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.Catalog = fontregistry.NewCatalog(nil, t.TempDir())
	return opts
}

func TestConvertWithBuiltinFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	res, err := Convert("# Title\n\nSome text with `code`.\n", testOptions(t))
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	require.Len(t, res.Fonts, 3)
	assert.Equal(t, font.EmbeddedFont(font.RoleBold), res.Fonts[0].Font)
	assert.Equal(t, font.EmbeddedFont(font.RoleDefault), res.Fonts[1].Font)
	assert.Equal(t, font.EmbeddedFont(font.RoleCode), res.Fonts[2].Font)
	for _, emb := range res.Fonts {
		assert.True(t, emb.IsSubset(), emb.Font.Fontname)
		assert.Less(t, len(emb.Data()), len(emb.Font.Binary))
	}
	assert.Equal(t, "Teilt", res.Fonts[0].Chars.String())
	assert.True(t, res.Fonts[2].Chars.Contains('d'))
	assert.False(t, res.Fonts[1].Chars.Contains('d'))
}

func TestConvertWithoutSubsetting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	opts := testOptions(t)
	opts.Fonts.Subsetting = false
	res, err := Convert("text\n", opts)
	require.NoError(t, err)
	require.Len(t, res.Fonts, 1)
	assert.False(t, res.Fonts[0].IsSubset())
	assert.Nil(t, res.Fonts[0].SubsetErr)
	assert.Equal(t, font.FallbackFont().Binary, res.Fonts[0].Data())
}

func TestFallbackChains(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	// a primary font covering "abc" only
	small, err := subset.Subset(font.FallbackFont(), subset.NewRuneSet('a', 'b', 'c'))
	require.NoError(t, err)
	opts := testOptions(t)
	opts.Fonts.DefaultBytes = small.Data
	opts.Fonts.Fallbacks = []string{"Go Bold"}
	opts.Fonts.Subsetting = false
	res, err := Convert("abcd\n", opts)
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	key := plan.FontKey{Role: font.RoleDefault}
	primary := res.FontFor(key, 'a')
	assert.False(t, font.IsEmbedded(primary))
	assert.Equal(t, primary, res.FontFor(key, 'c'))
	assert.Equal(t, font.EmbeddedFont(font.RoleBold), res.FontFor(key, 'd'))
	require.Len(t, res.Fonts, 2)
	assert.Equal(t, "abc", res.Embedding(primary).Chars.String())
	assert.Equal(t, "d", res.Embedding(font.EmbeddedFont(font.RoleBold)).Chars.String())
	assert.Equal(t, []plan.FontKey{key}, res.Fonts[1].Keys)
	//
	opts.Fonts.Fallbacks = nil
	res, err = Convert("abcd\n", opts)
	require.NoError(t, err)
	assert.Equal(t, font.EmbeddedFont(font.RoleDefault), res.FontFor(key, 'd'))
}

func TestFontVariants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	opts := testOptions(t)
	opts.Fonts.DefaultFont = "Go"
	res, err := Convert("plain **bold** *it* ***bi***\n", opts)
	require.NoError(t, err)
	assert.Empty(t, validate.Filter(res.Diagnostics, validate.MissingFont))
	for _, role := range []font.Role{font.RoleDefault, font.RoleBold, font.RoleItalic, font.RoleBoldItalic} {
		key := plan.FontKey{Family: "Go", Role: role}
		assert.Equal(t, font.EmbeddedFont(role), res.FontFor(key, 'i'), role.String())
	}
}

func TestMissingFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	opts := testOptions(t)
	opts.Fonts.DefaultFont = "xyzzy-no-such-font"
	opts.Fonts.Fallbacks = []string{"xyzzy-missing-fallback"}
	res, err := Convert("**b** a\n", opts)
	require.NoError(t, err)
	missing := validate.Filter(res.Diagnostics, validate.MissingFont)
	require.Len(t, missing, 2, "every missing font is reported once")
	assert.Contains(t, missing[0].Message, "xyzzy-missing-fallback")
	assert.Contains(t, missing[1].Message, "xyzzy-no-such-font")
	bold := plan.FontKey{Family: "xyzzy-no-such-font", Role: font.RoleBold}
	assert.Equal(t, font.EmbeddedFont(font.RoleBold), res.FontFor(bold, 'b'))
	//
	opts = testOptions(t)
	opts.Fonts.CodeBytes = []byte("not a font")
	res, err = Convert("`x`\n", opts)
	require.NoError(t, err)
	missing = validate.Filter(res.Diagnostics, validate.MissingFont)
	require.Len(t, missing, 1)
	assert.Contains(t, missing[0].Message, "code")
	assert.Equal(t, font.EmbeddedFont(font.RoleCode), res.FontFor(plan.FontKey{Role: font.RoleCode}, 'x'))
}

func TestConvertRepairsMalformedInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	res, err := Convert("abc\xffdef\n", testOptions(t))
	require.NoError(t, err)
	require.Len(t, validate.Filter(res.Diagnostics, validate.MalformedInput), 1)
	assert.True(t, res.Plan.Used.For(font.RoleDefault).Contains('\uFFFD'))
	rep, err := DryRun("a\x00b", DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, validate.Filter(rep.Diagnostics, validate.MalformedInput), 1)
	assert.Equal(t, 1, rep.Blocks)
}

func TestConvertTableWithEmptyCell(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	res, err := Convert("| a | b |\n|---|---|\n| 1 |   |\n", testOptions(t))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Plan.Instructions)
	rep, err := DryRun("| a | b |\n|---|---|\n| 1 |   |\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Blocks)
}

func TestDryRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	opts := DefaultOptions()
	opts.BaseDir = t.TempDir()
	rep, err := DryRun("# Head\n\n![pic](missing.png)\n\n```\nopen\n", opts)
	require.NoError(t, err)
	assert.False(t, rep.OK())
	assert.Len(t, validate.Filter(rep.Diagnostics, validate.MissingImage), 1)
	assert.Len(t, validate.Filter(rep.Diagnostics, validate.SyntaxWarning), 1)
	assert.Equal(t, 3, rep.Blocks)
	assert.Equal(t, 1, rep.Images)
	assert.True(t, rep.Used.For(font.RoleBold).Contains('H'))
	assert.True(t, rep.Used.For(font.RoleCode).Contains('o'))
	//
	rep, err = DryRun("fine\n", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, rep.OK())
}

func TestOptionsFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	opts := OptionsFromConfig(nil)
	assert.True(t, opts.Fonts.Subsetting)
	assert.False(t, opts.Plan.ContinueNumbering)
	assert.Nil(t, opts.Catalog)
	//
	opts = OptionsFromConfig(testconfig.Conf{
		"subsetting":     false,
		"list-numbering": "Continue",
		"default-font":   " Noto Sans ",
		"code-font":      "Go Mono",
		"fallback-fonts": "A, B,,",
		"font-dirs":      t.TempDir(),
	})
	assert.False(t, opts.Fonts.Subsetting)
	assert.True(t, opts.Plan.ContinueNumbering)
	assert.Equal(t, "Noto Sans", opts.Fonts.DefaultFont)
	assert.Equal(t, "Go Mono", opts.Fonts.CodeFont)
	assert.Equal(t, []string{"A", "B"}, opts.Fonts.Fallbacks)
	assert.NotNil(t, opts.Catalog)
}

func TestOptionsShareCatalog(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	dir := t.TempDir()
	first := OptionsFromConfig(testconfig.Conf{"font-dirs": dir})
	second := OptionsFromConfig(testconfig.Conf{"font-dirs": dir, "subsetting": false})
	require.NotNil(t, first.Catalog)
	assert.Same(t, first.Catalog, second.Catalog)
	other := OptionsFromConfig(testconfig.Conf{"font-dirs": t.TempDir()})
	assert.NotSame(t, first.Catalog, other.Catalog)
}

func TestLoadStyleSheet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.convert")
	defer teardown()
	//
	dir := t.TempDir()
	cssPath := filepath.Join(dir, "style.css")
	require.NoError(t, os.WriteFile(cssPath, []byte("h1 { font-size: 20pt }"), 0644))
	table, err := LoadStyleSheet(cssPath)
	require.NoError(t, err)
	assert.Equal(t, 20*dimen.PT, table.Style(style.HeadingKey(1)).Size)
	//
	tomlPath := filepath.Join(dir, "style.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[text]\nsize = 9\n"), 0644))
	table, err = LoadStyleSheet(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, 9*dimen.BP, table.Text().Size)
	//
	_, err = LoadStyleSheet(filepath.Join(dir, "none.toml"))
	assert.True(t, core.IsCode(err, core.EMISSING))
}
