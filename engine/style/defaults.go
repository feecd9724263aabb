package style

import (
	"sync"

	"github.com/npillmayer/mdpdf/core/dimen"
)

// DefaultSheet returns the built-in style sheet. Headings are bold with
// sizes 14, 12 and 10pt; code is gray on a light gray background; links
// are gray and underlined. Page margins are 8mm.
func DefaultSheet() Sheet {
	black := RGB(0, 0, 0)
	gray := RGB(128, 128, 128)
	heading := Props{}.Color(black).SpaceBefore(0.8).SpaceAfter(0.5).Bold(true).Align(AlignLeft)
	margins := UniformMargins(8 * dimen.MM)
	return Sheet{
		Margins: &margins,
		Styles: map[Key]Props{
			TextKey:        Props{}.Size(8 * dimen.BP).Color(black),
			HeadingKey(1):  heading.Size(14 * dimen.BP).Align(AlignCenter),
			HeadingKey(2):  heading.Size(12 * dimen.BP),
			HeadingKey(3):  heading.Size(10 * dimen.BP),
			EmphasisKey:    Props{}.Italic(true),
			StrongKey:      Props{}.Bold(true),
			CodeKey:        Props{}.Color(gray).Background(RGB(230, 230, 230)),
			CodeBlockKey:   Props{}.Color(gray).Background(RGB(230, 230, 230)).SpaceBefore(0.4).SpaceAfter(0.4),
			QuoteKey:       Props{}.Color(gray).Background(RGB(245, 245, 245)).Italic(true),
			ListItemKey:    Props{}.SpaceAfter(0.5),
			LinkKey:        Props{}.Color(gray).Underline(true),
			ImageKey:       Props{}.Align(AlignCenter),
			RuleKey:        Props{}.SpaceAfter(0.5),
			TableHeaderKey: Props{}.Bold(true),
		},
	}
}

var defaultTable struct {
	once  sync.Once
	table *Table
}

// DefaultTable returns the style table for the built-in style sheet.
func DefaultTable() *Table {
	defaultTable.once.Do(func() {
		t, err := NewTable(DefaultSheet())
		if err != nil {
			panic(err) // cannot happen: the default sheet has a text entry
		}
		defaultTable.table = t
	})
	return defaultTable.table
}
