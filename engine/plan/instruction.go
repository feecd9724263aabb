package plan

import (
	"fmt"
	"strings"

	"github.com/npillmayer/mdpdf/core/dimen"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/engine/style"
	"github.com/npillmayer/mdpdf/input/markdown"
)

// Op is the operation of an instruction.
type Op uint8

const (
	OpSpace      Op = iota // vertical space of Lines lines
	OpBeginBlock           // start of a block of Kind
	OpEndBlock             // end of a block of Kind
	OpText                 // a run of text
	OpImage                // an image
	OpMarker               // a list item marker
	OpBeginRow             // start of a table row
	OpEndRow               // end of a table row
	OpBeginCell            // start of a table cell
	OpEndCell              // end of a table cell
	OpRule                 // a horizontal rule
)

var opNames = [...]string{"space", "begin", "end", "text", "image", "marker",
	"row", "/row", "cell", "/cell", "rule"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// FontKey identifies the font a run of text is set in: a family name and
// a role. An empty family selects the configured font for the role.
type FontKey struct {
	Family string
	Role   font.Role
}

func (k FontKey) String() string {
	if k.Family == "" {
		return k.Role.String()
	}
	return k.Family + "/" + k.Role.String()
}

// Instruction is a single step of a render plan. Fields not meaningful for
// an operation stay at their zero value.
type Instruction struct {
	Op      Op
	Kind    markdown.Kind    // OpBeginBlock, OpEndBlock
	Style   style.Descriptor // resolved style, for all but OpSpace
	Font    FontKey          // OpText, OpMarker
	Text    string           // OpText, OpMarker; alt text for OpImage
	Dest    string           // link destination of OpText, source of OpImage
	Lang    string           // code blocks
	Level   int              // headings
	Ordered bool             // lists
	Depth   int              // lists and list items
	Indent  dimen.Dimen      // list items
	Header  bool             // table rows and cells
	Column  int              // table cells
	Widths  []int            // tables: column widths in character cells
	Lines   float64          // OpSpace
}

func (ins Instruction) String() string {
	var b strings.Builder
	b.WriteString(ins.Op.String())
	switch ins.Op {
	case OpSpace:
		fmt.Fprintf(&b, " %.2g", ins.Lines)
	case OpBeginBlock, OpEndBlock:
		b.WriteString(" " + ins.Kind.String())
		if ins.Kind == markdown.Heading {
			fmt.Fprintf(&b, "[%d]", ins.Level)
		}
	case OpText, OpMarker:
		fmt.Fprintf(&b, " %q (%s)", ins.Text, ins.Font)
		if ins.Dest != "" {
			b.WriteString(" → " + ins.Dest)
		}
	case OpImage:
		fmt.Fprintf(&b, " %s %q", ins.Dest, ins.Text)
	case OpBeginCell:
		fmt.Fprintf(&b, " %d", ins.Column)
		if ins.Header {
			b.WriteString(" header")
		}
	}
	return b.String()
}
