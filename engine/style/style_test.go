package style

import (
	"testing"

	"github.com/npillmayer/mdpdf/core"
	"github.com/npillmayer/mdpdf/core/dimen"
	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table := DefaultTable()
	h1 := table.Style(HeadingKey(1))
	assert.Equal(t, 14*dimen.BP, h1.Size)
	assert.Equal(t, AlignCenter, h1.Align)
	assert.True(t, h1.Bold)
	assert.Equal(t, 0.8, h1.SpaceBefore)
	assert.Equal(t, 0.5, h1.SpaceAfter)
	assert.Equal(t, AlignLeft, table.Style(HeadingKey(2)).Align)
	assert.Equal(t, 10*dimen.BP, table.Style(HeadingKey(3)).Size)
	code := table.Style(CodeKey)
	assert.Equal(t, RGB(128, 128, 128), code.Color)
	assert.Equal(t, RGB(230, 230, 230), code.Background)
	assert.Equal(t, 8*dimen.BP, code.Size, "inherited from text")
	assert.True(t, table.Style(LinkKey).Underline)
	assert.False(t, table.Text().HasBackground())
	assert.Equal(t, UniformMargins(8*dimen.MM), table.Margins())
}

func TestFallbackEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table := DefaultTable()
	assert.Equal(t, table.Style(HeadingKey(3)), table.Style(HeadingKey(6)))
	assert.Equal(t, table.Text(), table.Style(Key{Kind: markdown.Paragraph}))
	assert.Equal(t, table.Text(), table.Style(TableCellKey))
	assert.True(t, table.Style(TableHeaderKey).Bold)
	assert.Equal(t, table.Style(StrongKey), table.Style(Key{Kind: markdown.Emphasis, Level: 3}))
	//
	sheet := Sheet{Styles: map[Key]Props{
		TextKey: Props{}.Size(10 * dimen.BP),
		CodeKey: Props{}.Family("Go Mono"),
	}}
	table, err := NewTable(sheet)
	require.NoError(t, err)
	assert.Equal(t, "Go Mono", table.Style(CodeBlockKey).Family)
	assert.True(t, table.Props(CodeBlockKey).Has(PFamily))
	assert.True(t, table.Props(LinkKey).IsEmpty())
}

func TestMissingTextEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	_, err := NewTable(Sheet{Styles: map[Key]Props{
		HeadingKey(1): Props{}.Bold(true),
	}})
	require.Error(t, err)
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestInheritance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table, err := NewTable(Sheet{Styles: map[Key]Props{
		TextKey:     Props{}.Family("Dolly").Size(11 * dimen.BP).Color(RGB(1, 2, 3)),
		EmphasisKey: Props{}.Italic(true),
	}})
	require.NoError(t, err)
	em := table.Style(EmphasisKey)
	assert.Equal(t, "Dolly", em.Family)
	assert.Equal(t, 11*dimen.BP, em.Size)
	assert.Equal(t, RGB(1, 2, 3), em.Color)
	assert.True(t, em.Italic)
	// inline composition applies only explicit properties
	heading := Descriptor{Size: 20 * dimen.BP, Bold: true}
	composed := table.Props(EmphasisKey).Apply(heading)
	assert.Equal(t, 20*dimen.BP, composed.Size)
	assert.True(t, composed.Bold)
	assert.True(t, composed.Italic)
}

func TestPropsMerge(t *testing.T) {
	p := Props{}.Size(10 * dimen.BP).Bold(true)
	q := Props{}.Bold(false).Underline(true)
	m := p.Merge(q)
	d := m.Apply(Descriptor{Italic: true})
	assert.Equal(t, 10*dimen.BP, d.Size)
	assert.False(t, d.Bold)
	assert.True(t, d.Underline)
	assert.True(t, d.Italic)
	assert.True(t, m.Has(PBold))
	assert.False(t, m.Has(PColor))
	assert.True(t, p.Has(PBold), "setters do not modify the receiver")
	assert.False(t, p.Has(PUnderline))
}

const tomlSheet = `
[margin]
top = 10.0
left = 12

[heading.1]
size = 18
textcolor = { r = 200, g = 0, b = 0 }
alignment = "right"

[heading.7]
size = 3

[text]
size = 9
fontfamily = "Dolly"
beforespacing = 0.25

[code]
backgroundcolor = { r = 1, g = 2 }
strikethrough = true

[frontmatter]
title = "ignored"
`

func TestLoadTOML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table, err := LoadTOML(tomlSheet)
	require.NoError(t, err)
	h1 := table.Style(HeadingKey(1))
	assert.Equal(t, 18*dimen.BP, h1.Size)
	assert.Equal(t, RGB(200, 0, 0), h1.Color)
	assert.Equal(t, AlignRight, h1.Align)
	assert.True(t, h1.Bold, "merged with the default sheet")
	assert.Equal(t, "Dolly", h1.Family, "inherited from text")
	text := table.Text()
	assert.Equal(t, 9*dimen.BP, text.Size)
	assert.Equal(t, 0.25, text.SpaceBefore)
	code := table.Style(CodeKey)
	assert.True(t, code.Strikethrough)
	assert.Equal(t, RGB(230, 230, 230), code.Background, "incomplete color is ignored")
	m := table.Margins()
	assert.Equal(t, 10*dimen.MM, m.Top)
	assert.Equal(t, 12*dimen.MM, m.Left)
	assert.Equal(t, 8*dimen.MM, m.Right)
}

func TestTOMLErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	_, err := ParseTOML("[text\nsize = 9")
	assert.Equal(t, core.EINVALID, core.Code(err))
	_, err = ParseTOML("[text]\nsize = \"large\"")
	assert.Equal(t, core.EINVALID, core.Code(err))
	sheet, err := ParseTOML("[heading.1]\nbold = false")
	require.NoError(t, err)
	_, err = NewTable(sheet)
	assert.Equal(t, core.EINVALID, core.Code(err), "no text entry without defaults")
}

const cssSheet = `
body { font-family: "Dolly", serif; font-size: 10pt }
h1, h2 { color: #c00; text-align: justify; margin-top: 1.5em; margin-bottom: 0.2 }
code { background-color: rgb(1, 2, 3); font-weight: normal }
th { font-weight: 700; text-decoration: underline line-through }
blockquote { font-style: normal; color: navy; width: 50% }
nav { color: red }
@page { margin: 10mm 20mm }
`

func TestLoadCSS(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table, err := LoadCSS(cssSheet)
	require.NoError(t, err)
	text := table.Text()
	assert.Equal(t, "Dolly", text.Family)
	assert.Equal(t, 10*dimen.PT, text.Size)
	for _, level := range []int{1, 2} {
		h := table.Style(HeadingKey(level))
		assert.Equal(t, RGB(0xcc, 0, 0), h.Color)
		assert.Equal(t, AlignJustify, h.Align)
		assert.Equal(t, 1.5, h.SpaceBefore)
		assert.Equal(t, 0.2, h.SpaceAfter)
		assert.True(t, h.Bold)
	}
	assert.Equal(t, RGB(1, 2, 3), table.Style(CodeKey).Background)
	th := table.Style(TableHeaderKey)
	assert.True(t, th.Bold)
	assert.True(t, th.Underline)
	assert.True(t, th.Strikethrough)
	quote := table.Style(QuoteKey)
	assert.False(t, quote.Italic)
	assert.Equal(t, RGB(0, 0, 0x80), quote.Color)
	m := table.Margins()
	assert.Equal(t, 10*dimen.MM, m.Top)
	assert.Equal(t, 20*dimen.MM, m.Right)
	assert.Equal(t, 10*dimen.MM, m.Bottom)
}

func TestKeys(t *testing.T) {
	for name, key := range map[string]Key{
		"text":            TextKey,
		"heading.2":       HeadingKey(2),
		"strong_emphasis": StrongKey,
		"table_header":    TableHeaderKey,
		"Block_Quote":     QuoteKey,
	} {
		k, ok := KeyForSection(name)
		assert.True(t, ok, name)
		assert.Equal(t, key, k, name)
	}
	for _, name := range []string{"heading.0", "heading.x", "footer", ""} {
		_, ok := KeyForSection(name)
		assert.False(t, ok, name)
	}
	assert.Equal(t, "heading.4", HeadingKey(4).String())
	keys := DefaultTable().Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, HeadingKey(1), keys[0])
	a, ok := ParseAlignment(" Center ")
	assert.True(t, ok)
	assert.Equal(t, AlignCenter, a)
}

func TestPaper(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdpdf.style")
	defer teardown()
	//
	table := DefaultTable()
	assert.Equal(t, dimen.DINA4, table.Paper())
	content := table.Content()
	assert.Equal(t, dimen.DINA4.X-16*dimen.MM, content.Width())
	//
	table, err := LoadCSS("@page { size: A5 landscape; margin: 10mm }")
	require.NoError(t, err)
	assert.Equal(t, dimen.DINA5.Landscape(), table.Paper())
	assert.Equal(t, dimen.DINA5.Y-20*dimen.MM, table.Content().Width())
	table, err = LoadCSS("@page { size: 100mm 50mm }")
	require.NoError(t, err)
	assert.Equal(t, dimen.Point{X: 100 * dimen.MM, Y: 50 * dimen.MM}, table.Paper())
	table, err = LoadCSS("@page { size: huge }")
	require.NoError(t, err)
	assert.Equal(t, dimen.DINA4, table.Paper())
	//
	table, err = LoadTOML("[page]\nsize = \"letter\"\nlandscape = true\n")
	require.NoError(t, err)
	assert.Equal(t, dimen.USLetter.Landscape(), table.Paper())
	_, err = LoadTOML("[page]\nsize = \"folio\"\n")
	assert.Error(t, err)
}
