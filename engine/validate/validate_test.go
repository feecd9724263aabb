package validate

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/engine/plan"
	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	diags := Check("# Title\n\nSome *text* with café.\n", nil, Options{})
	assert.Empty(t, diags)
}

func TestSyntaxDiagnostics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	diags := Check("intro\n\n```go\nfunc main()\n", nil, Options{})
	syntax := Filter(diags, SyntaxWarning)
	require.Len(t, syntax, 1)
	assert.Equal(t, 3, syntax[0].Line)
	assert.Contains(t, syntax[0].Message, "unclosed code block")
	assert.True(t, strings.HasPrefix(syntax[0].String(), "line 3: "))
	//
	diags = Check("a `b\n\n![broken(\n", nil, Options{})
	syntax = Filter(diags, SyntaxWarning)
	require.GreaterOrEqual(t, len(syntax), 2)
	assert.Contains(t, syntax[0].Message, "inline code")
	assert.Contains(t, syntax[len(syntax)-1].Message, "square bracket")
	assert.Equal(t, 3, syntax[len(syntax)-1].Line)
}

func TestLargeDocument(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	text := strings.Repeat("ab ", 40)
	assert.Empty(t, Filter(Check(text, nil, Options{}), LargeDocument))
	diags := Filter(Check(text, nil, Options{LargeSize: 100}), LargeDocument)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "120 characters")
}

func TestUnicodeWithoutFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	text := "Kanji 漢字 and 漢 again\n"
	diags := Filter(Check(text, nil, Options{}), UnicodeWithoutFont)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "漢字")
	assert.Equal(t, []string{"漢", "字"}, UncoveredSamples(text, 5))
	assert.Equal(t, []string{"漢"}, UncoveredSamples(text, 1))
	//
	fonts := plan.FontConfig{DefaultFont: "Noto Sans"}
	assert.Empty(t, Filter(Check(text, nil, Options{Fonts: fonts}), UnicodeWithoutFont))
	fonts = plan.FontConfig{DefaultFont: "Times", Fallbacks: []string{"DejaVu Sans"}}
	assert.Empty(t, Filter(Check(text, nil, Options{Fonts: fonts}), UnicodeWithoutFont))
	fonts = plan.FontConfig{DefaultBytes: []byte{0}}
	assert.Empty(t, Filter(Check(text, nil, Options{Fonts: fonts}), UnicodeWithoutFont))
	assert.Nil(t, UncoveredSamples("plain ascii", 5))
}

func TestImages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "ok.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())
	//
	md := "![a](ok.png) ![b](gone.png) ![c](http://example.com/c.png) ![d](http://-bad-.example/d.png)\n"
	doc := markdown.Lex(md)
	diags := Check(md, doc, Options{BaseDir: dir})
	images := Filter(diags, MissingImage)
	require.Len(t, images, 2)
	var msgs []string
	for _, d := range images {
		msgs = append(msgs, d.Message)
	}
	assert.Contains(t, strings.Join(msgs, "\n"), "image not found: gone.png")
	assert.Contains(t, strings.Join(msgs, "\n"), "-bad-.example")
}

func TestFiles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	dir := t.TempDir()
	opts := Options{
		StylePath:  filepath.Join(dir, "nope.toml"),
		OutputPath: filepath.Join(dir, "missing", "out.pdf"),
	}
	diags := Check("x\n", nil, opts)
	require.Len(t, Filter(diags, MissingConfig), 1)
	out := Filter(diags, SyntaxWarning)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Suggestion, "mkdir -p")
	//
	opts.OutputPath = filepath.Join(dir, "out.pdf")
	assert.Empty(t, Filter(Check("x\n", nil, opts), SyntaxWarning))
}

func TestInput(t *testing.T) {
	assert.NoError(t, Input([]byte("# Hello\n\n\tindented\r\n")))
	assert.NoError(t, Input(nil))
	err := Input([]byte{'a', 0xff, 'b'})
	assert.Equal(t, core.EINVALID, core.Code(err))
	assert.Contains(t, core.UserMessage(err), "UTF-8")
	err = Input([]byte("abc\x00def"))
	assert.Contains(t, core.UserMessage(err), "binary")
	noisy := []byte(strings.Repeat("a", 62) + "\x01\x02")
	assert.Error(t, Input(noisy))
	assert.NoError(t, Input([]byte(strings.Repeat("a", 40)+"\x01")), "short inputs are not judged by share")
}

func TestSanitize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.validate")
	defer teardown()
	//
	text, diags := Sanitize("# fine\n")
	assert.Equal(t, "# fine\n", text)
	assert.Empty(t, diags)
	text, diags = Sanitize("abc\xffdef\x00g")
	assert.Equal(t, "abc\uFFFDdef\uFFFDg", text)
	require.Len(t, diags, 1)
	assert.Equal(t, MalformedInput, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "UTF-8")
	esc := "```\n" + strings.Repeat("\x1b[1mbold\x1b[0m\n", 8) + "```\n"
	text, diags = Sanitize(esc)
	assert.Equal(t, esc, text, "control characters are kept")
	require.Len(t, diags, 1)
	assert.Equal(t, "malformed-input", diags[0].Kind.String())
}

func TestDiagnosticText(t *testing.T) {
	d := MissingFontWarning("Fancy")
	assert.Equal(t, MissingFont, d.Kind)
	assert.Equal(t, "font 'Fancy' not found\n   hint: install 'Fancy' or specify fallback fonts; a built-in fallback font is used",
		d.String())
	assert.Equal(t, "missing-image", MissingImage.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
