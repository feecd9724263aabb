package plan

import (
	"sync"

	"github.com/npillmayer/mdpdf/input/markdown"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
)

var setupGraphemes sync.Once

// DisplayWidth returns the width of a text in character cells. East Asian
// wide characters take two cells, combining sequences take the width of
// their base character.
func DisplayWidth(text string) int {
	if text == "" {
		return 0
	}
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	gstr := grapheme.StringFromString(text)
	w := 0
	for i := 0; i < gstr.Len(); i++ {
		w += uax11.Width([]byte(gstr.Nth(i)), uax11.LatinContext)
	}
	return w
}

// ColumnWidths returns the width of every column of a table in character
// cells, measured as the widest cell text of the column. Rows with excess
// cells widen the table.
func ColumnWidths(table *markdown.Token) []int {
	var widths []int
	for _, row := range table.Children {
		if row.Kind != markdown.TableRow {
			continue
		}
		for col, cell := range row.Children {
			if col >= len(widths) {
				widths = append(widths, 0)
			}
			if w := DisplayWidth(markdown.PlainText(cell.Children)); w > widths[col] {
				widths[col] = w
			}
		}
	}
	return widths
}
