package markdown

import "fmt"

// Kind is the type of a token. The set of kinds is closed; consumers are
// expected to switch over all of them.
type Kind int8

const (
	Paragraph Kind = iota
	Heading
	Text
	Emphasis
	InlineCode
	CodeBlock
	Link
	Image
	List
	ListItem
	BlockQuote
	Table
	TableRow
	TableCell
	HorizontalRule
	kindCount
)

var kindNames = [...]string{
	"Paragraph", "Heading", "Text", "Emphasis", "InlineCode", "CodeBlock", "Link",
	"Image", "List", "ListItem", "BlockQuote", "Table", "TableRow", "TableCell",
	"HorizontalRule",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsBlock is a predicate: is k a block-level kind?
func (k Kind) IsBlock() bool {
	switch k {
	case Paragraph, Heading, CodeBlock, List, ListItem, BlockQuote, Table, TableRow,
		TableCell, HorizontalRule:
		return true
	}
	return false
}

// Token is a node of the document tree. Fields not meaningful for a kind
// stay at their zero value:
//
//   Heading         Level (1…6), Children
//   Text            Text
//   Emphasis        Level (1…3), Children
//   InlineCode      Text
//   CodeBlock       Lang, Text (lines joined by '\n')
//   Link            Dest, Children (display text)
//   Image           Dest, Text (alt text)
//   List            Ordered, Start, Depth, Children (ListItems)
//   ListItem        Depth, Children (inline tokens, then nested blocks)
//   BlockQuote      Children (blocks)
//   Table           Header, Children (TableRows)
//   TableRow        Header, Children (TableCells)
//   TableCell       Header, Children (inline tokens only)
//   Paragraph       Children (inline tokens)
//
// A token exclusively owns its children.
type Token struct {
	Kind     Kind
	Text     string
	Level    int
	Lang     string
	Dest     string
	Ordered  bool
	Start    int
	Depth    int
	Header   bool
	Children []*Token
}

func (t *Token) String() string {
	switch t.Kind {
	case Text, InlineCode:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	case Heading, Emphasis:
		return fmt.Sprintf("%s[%d]", t.Kind, t.Level)
	case CodeBlock:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Lang)
	case Link, Image:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Dest)
	case List:
		return fmt.Sprintf("%s[ordered=%v,depth=%d]", t.Kind, t.Ordered, t.Depth)
	case ListItem:
		return fmt.Sprintf("%s[depth=%d]", t.Kind, t.Depth)
	}
	return t.Kind.String()
}

// Walk visits t and all of its descendants depth-first. If f returns false,
// the children of the current token are skipped.
func Walk(t *Token, f func(*Token) bool) {
	if t == nil || !f(t) {
		return
	}
	for _, ch := range t.Children {
		Walk(ch, f)
	}
}

// WalkAll calls Walk for each token of a sequence.
func WalkAll(tokens []*Token, f func(*Token) bool) {
	for _, t := range tokens {
		Walk(t, f)
	}
}

// Equal compares two token trees structurally.
func Equal(a, b *Token) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Text != b.Text || a.Level != b.Level || a.Lang != b.Lang ||
		a.Dest != b.Dest || a.Ordered != b.Ordered || a.Start != b.Start ||
		a.Depth != b.Depth || a.Header != b.Header || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// --- Constructors -----------------------------------------------------------

func textToken(s string) *Token {
	return &Token{Kind: Text, Text: s}
}

func container(k Kind, children []*Token) *Token {
	return &Token{Kind: k, Children: children}
}
