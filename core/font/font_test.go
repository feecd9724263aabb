package font

import (
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

type sw struct {
	s xfont.Style
	w xfont.Weight
}

func TestGuess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.font")
	defer teardown()
	//
	for k, v := range map[string]sw{
		"fonts/Clarendon-bold.ttf":               {xfont.StyleNormal, xfont.WeightBold},
		"Microsoft/Gill Sans MT Bold Italic.ttf": {xfont.StyleItalic, xfont.WeightBold},
		"Cambria Math.ttf":                       {xfont.StyleNormal, xfont.WeightNormal},
		"DejaVuSans-Oblique.ttf":                 {xfont.StyleItalic, xfont.WeightNormal},
	} {
		style, weight := GuessStyleAndWeight(k)
		t.Logf("style = %d, weight = %d", style, weight)
		if style != v.s || weight != v.w {
			t.Errorf("expected different style or weight for %s", k)
		}
	}
}

func TestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.font")
	defer teardown()
	//
	if !Matches("fonts/Clarendon-bold.ttf",
		"clarendon", xfont.StyleNormal, xfont.WeightBold) {
		t.Errorf("expected match for Clarendon, haven't")
	}
	if !Matches("Microsoft/Gill Sans MT Bold Italic.ttf",
		"gill sans", xfont.StyleItalic, xfont.WeightBold) {
		t.Errorf("expected match for Gill, haven't")
	}
	if Matches("Cambria Math.ttf", "cambria", xfont.StyleItalic, xfont.WeightNormal) {
		t.Errorf("expected no match for italic Cambria Math")
	}
}

func TestNormalizeFont(t *testing.T) {
	n := NormalizeFontname("Clarendon", xfont.StyleItalic, xfont.WeightBold)
	assert.Equal(t, "clarendon-italic-bold", n)
	n = NormalizeFontname(" Times New Roman.ttf", xfont.StyleNormal, xfont.WeightNormal)
	assert.Equal(t, "times_new_roman", n)
}

func TestClosestMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.font")
	defer teardown()
	//
	descs := []Descriptor{
		{Family: "Noto Sans", Path: "/a/NotoSans-Regular.ttf", Variants: []string{"regular"}},
		{Family: "Noto Sans", Path: "/a/NotoSans-Italic.ttf", Variants: []string{"italic"}},
		{Family: "Roboto", Path: "/a/Roboto.ttf", Variants: []string{"regular"}},
	}
	d, v, c := ClosestMatch(descs, "noto", xfont.StyleItalic, xfont.WeightNormal)
	assert.Equal(t, "/a/NotoSans-Italic.ttf", d.Path)
	assert.Equal(t, "italic", v)
	assert.Equal(t, PerfectConfidence, c)
	_, _, c = ClosestMatch(descs, "garamond", xfont.StyleNormal, xfont.WeightNormal)
	assert.Equal(t, NoConfidence, c)
}

func TestEmbeddedFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.font")
	defer teardown()
	//
	for _, role := range Roles() {
		f := EmbeddedFont(role)
		require.NotNil(t, f, "role %s", role)
		assert.True(t, IsEmbedded(f))
		assert.True(t, f.IsTrueType())
		assert.True(t, f.Covers('A'), "role %s", role)
		assert.Same(t, f, EmbeddedFont(role), "embedded fonts are shared")
	}
	assert.Equal(t, "Go Mono", EmbeddedFont(RoleCode).Fontname)
	assert.Same(t, EmbeddedFont(RoleDefault), FallbackFont())
	s, w := EmbeddedFont(RoleBoldItalic).Style, EmbeddedFont(RoleBoldItalic).Weight
	assert.Equal(t, xfont.StyleItalic, s)
	assert.Equal(t, xfont.WeightBold, w)
}

func TestCoverage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.font")
	defer teardown()
	//
	f := FallbackFont()
	assert.True(t, f.Covers('é'))
	assert.False(t, f.Covers('漢'))
	assert.False(t, f.Covers(-1))
	assert.Equal(t, []rune{'漢'}, f.Coverage().Missing([]rune{'a', '漢', 'z'}))
	n := 0
	prev := rune(-1)
	f.Coverage().Each(func(r rune) {
		assert.Greater(t, r, prev)
		prev = r
		n++
	})
	assert.Equal(t, f.Coverage().Count(), n)
	var nilFont *ScalableFont
	assert.False(t, nilFont.Covers('a'))
}

func TestRoles(t *testing.T) {
	assert.Equal(t, RoleCode, RoleFor(true, true, true))
	assert.Equal(t, RoleBoldItalic, RoleFor(false, true, true))
	assert.Equal(t, RoleItalic, RoleFor(false, false, true))
	assert.Equal(t, RoleDefault, RoleFor(false, false, false))
	assert.Equal(t, "bold-italic", RoleBoldItalic.String())
}

func TestParseInvalidFont(t *testing.T) {
	_, err := ParseOpenTypeFont([]byte("definitely not a font"))
	assert.True(t, core.IsCode(err, core.EINVALID))
	_, err = LoadOpenTypeFont("/does/not/exist.ttf")
	assert.True(t, core.IsCode(err, core.EMISSING))
}
