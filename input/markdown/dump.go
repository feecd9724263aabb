package markdown

import (
	"encoding/json"
	"io"
	"strings"
)

// PlainText concatenates the text content of a token sequence, with markup
// stripped. Blocks are separated by a newline.
func PlainText(tokens []*Token) string {
	var b strings.Builder
	for _, t := range tokens {
		writePlain(&b, t)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writePlain(b *strings.Builder, t *Token) {
	if t.Kind.IsBlock() && t.Kind != TableCell && b.Len() > 0 &&
		!strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	switch t.Kind {
	case Text, InlineCode, CodeBlock, Image:
		b.WriteString(t.Text)
	case TableCell:
		for _, ch := range t.Children {
			writePlain(b, ch)
		}
		b.WriteByte('\t')
		return
	}
	for _, ch := range t.Children {
		writePlain(b, ch)
	}
}

// --- JSON dump -------------------------------------------------------------

type dumpNode struct {
	Kind     string     `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Level    int        `json:"level,omitempty"`
	Lang     string     `json:"lang,omitempty"`
	Dest     string     `json:"dest,omitempty"`
	Ordered  bool       `json:"ordered,omitempty"`
	Start    int        `json:"start,omitempty"`
	Depth    int        `json:"depth,omitempty"`
	Header   bool       `json:"header,omitempty"`
	Children []dumpNode `json:"children,omitempty"`
}

func toDumpNode(t *Token) dumpNode {
	n := dumpNode{
		Kind:    t.Kind.String(),
		Text:    t.Text,
		Level:   t.Level,
		Lang:    t.Lang,
		Dest:    t.Dest,
		Ordered: t.Ordered,
		Start:   t.Start,
		Depth:   t.Depth,
		Header:  t.Header,
	}
	for _, ch := range t.Children {
		n.Children = append(n.Children, toDumpNode(ch))
	}
	return n
}

// Dump writes a token sequence as indented JSON, for debugging.
func Dump(w io.Writer, tokens []*Token) error {
	nodes := make([]dumpNode, len(tokens))
	for i, t := range tokens {
		nodes[i] = toDumpNode(t)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}
