package markdown

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// AnomalyKind classifies recoverable syntax problems found while lexing.
type AnomalyKind int8

const (
	UnterminatedFence AnomalyKind = iota
	UnterminatedCodeSpan
	UnmatchedBracket
)

func (k AnomalyKind) String() string {
	switch k {
	case UnterminatedFence:
		return "unterminated code fence"
	case UnterminatedCodeSpan:
		return "unterminated code span"
	case UnmatchedBracket:
		return "unmatched bracket"
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

// Anomaly is a recoverable syntax problem. The offending text has been
// kept as literal text (or, for fences, as a code block running to the end
// of input).
type Anomaly struct {
	Kind    AnomalyKind
	Line    int    // 1-based line number of the enclosing block
	Excerpt string // a short excerpt starting at the offending marker
}

// Document is the result of lexing a Markdown text.
type Document struct {
	Tokens    []*Token
	Anomalies []Anomaly
}

// Tokenize splits Markdown text into an ordered sequence of block tokens.
// It never fails.
func Tokenize(text string) []*Token {
	return Lex(text).Tokens
}

// Lex tokenizes Markdown text and additionally reports syntax anomalies.
// Input is normalized to NFC and to '\n' line endings first.
func Lex(text string) *Document {
	l := &lexer{doc: &Document{}}
	lines := splitLines(text)
	l.doc.Tokens = l.parseBlocks(lines, Context{})
	tracer().Debugf("lexed %d lines into %d blocks, %d anomalies", len(lines),
		len(l.doc.Tokens), len(l.doc.Anomalies))
	return l.doc
}

type lexer struct {
	doc  *Document
	line int // line number of the block currently scanned
}

func (l *lexer) anomaly(kind AnomalyKind, excerpt string) {
	tracer().Infof("line %d: %s at %q", l.line, kind, excerpt)
	l.doc.Anomalies = append(l.doc.Anomalies, Anomaly{Kind: kind, Line: l.line, Excerpt: excerpt})
}

// srcLine is a line of input, possibly with container prefixes stripped.
type srcLine struct {
	text string
	no   int
}

func splitLines(text string) []srcLine {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	lines := make([]srcLine, len(raw))
	for i, r := range raw {
		lines[i] = srcLine{text: expandTabs(r), no: i + 1}
	}
	return lines
}

// expandTabs replaces tabs in the leading whitespace of a line, with tab
// stops every 4 columns.
func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ':
			b.WriteByte(' ')
			col++
		case '\t':
			n := 4 - col%4
			b.WriteString(strings.Repeat(" ", n))
			col += n
		default:
			b.WriteString(s[i:])
			return b.String()
		}
	}
	return b.String()
}

// --- Block scanning --------------------------------------------------------

// parseBlocks scans a sequence of lines into block tokens. In cell mode
// only inline content is produced.
func (l *lexer) parseBlocks(lines []srcLine, ctx Context) []*Token {
	var blocks []*Token
	for i := 0; i < len(lines); {
		if isBlank(lines[i].text) {
			i++
			continue
		}
		l.line = lines[i].no
		if ctx.BlockMarkers() {
			n, tok := l.scanBlock(lines, i, ctx)
			if tok != nil {
				blocks = append(blocks, tok)
				i += n
				continue
			}
		}
		n, para := l.scanParagraph(lines, i, ctx)
		if ctx.InCell() {
			blocks = append(blocks, para.Children...)
		} else {
			blocks = append(blocks, para)
		}
		i += n
	}
	return blocks
}

// scanBlock tries all block scanners in order of precedence.
func (l *lexer) scanBlock(lines []srcLine, i int, ctx Context) (int, *Token) {
	if n, tok := l.scanFence(lines, i); tok != nil {
		return n, tok
	}
	if tok := l.scanHeading(lines[i].text, ctx); tok != nil {
		return 1, tok
	}
	if isThematicBreak(lines[i].text) {
		return 1, &Token{Kind: HorizontalRule}
	}
	if n, tok := l.scanQuote(lines, i, ctx); tok != nil {
		return n, tok
	}
	if n, tok := l.scanList(lines, i, ctx); tok != nil {
		return n, tok
	}
	if n, tok := l.scanTable(lines, i, ctx); tok != nil {
		return n, tok
	}
	return 0, nil
}

// startsBlock is a predicate: does line i interrupt a running paragraph?
func (l *lexer) startsBlock(lines []srcLine, i int, ctx Context) bool {
	if !ctx.BlockMarkers() {
		return false
	}
	s := lines[i].text
	if _, ok := parseFence(s); ok {
		return true
	}
	if _, _, ok := parseHeading(s); ok {
		return true
	}
	if isThematicBreak(s) {
		return true
	}
	if _, ok := quoteContent(s); ok {
		return true
	}
	if m, ok := parseListMarker(s); ok && m.content != "" && (!m.ordered || m.start == 1) {
		return true
	}
	return isTableStart(lines, i)
}

func (l *lexer) scanParagraph(lines []srcLine, i int, ctx Context) (int, *Token) {
	j := i
	var parts []string
	for j < len(lines) && !isBlank(lines[j].text) {
		if j > i && l.startsBlock(lines, j, ctx) {
			break
		}
		parts = append(parts, strings.TrimLeft(lines[j].text, " "))
		j++
	}
	text := strings.Join(parts, "\n")
	return j - i, container(Paragraph, l.scanInlineBlock(text, ctx))
}

// --- Headings and rules ----------------------------------------------------

func (l *lexer) scanHeading(s string, ctx Context) *Token {
	level, content, ok := parseHeading(s)
	if !ok {
		return nil
	}
	return &Token{Kind: Heading, Level: level, Children: l.scanInlineBlock(content, ctx)}
}

// parseHeading recognizes ATX headings: up to 3 spaces, 1–6 '#', then a
// space or end of line. An optional closing sequence of '#' is removed.
func parseHeading(s string) (level int, content string, ok bool) {
	ind := indentOf(s)
	if ind > 3 {
		return 0, "", false
	}
	s = s[ind:]
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if level < len(s) && s[level] != ' ' && s[level] != '\t' {
		return 0, "", false
	}
	content = strings.TrimSpace(s[level:])
	if t := strings.TrimRight(content, "#"); t != content {
		if t == "" {
			content = ""
		} else if strings.HasSuffix(t, " ") {
			content = strings.TrimSpace(t)
		}
	}
	return level, content, true
}

func isThematicBreak(s string) bool {
	if indentOf(s) > 3 {
		return false
	}
	var marker byte
	count := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ':
			continue
		case '-', '*', '_':
			if marker != 0 && c != marker {
				return false
			}
			marker = c
			count++
		default:
			return false
		}
	}
	return count >= 3
}

// --- Fenced code -----------------------------------------------------------

type fence struct {
	indent int
	char   byte
	length int
	lang   string
}

func parseFence(s string) (fence, bool) {
	ind := indentOf(s)
	if ind > 3 {
		return fence{}, false
	}
	s = s[ind:]
	if len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return fence{}, false
	}
	f := fence{indent: ind, char: s[0], length: runLength(s, 0, s[0])}
	if f.length < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(s[f.length:])
	if f.char == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		f.lang = fields[0]
	}
	return f, true
}

func (f fence) closedBy(s string) bool {
	ind := indentOf(s)
	if ind > 3 {
		return false
	}
	s = s[ind:]
	n := runLength(s, 0, f.char)
	return n >= f.length && strings.TrimSpace(s[n:]) == ""
}

// scanFence scans a fenced code block. A fence which is never closed runs
// to the end of input and still yields a code block.
func (l *lexer) scanFence(lines []srcLine, i int) (int, *Token) {
	f, ok := parseFence(lines[i].text)
	if !ok {
		return 0, nil
	}
	var body []string
	closed := false
	j := i + 1
	for ; j < len(lines); j++ {
		if f.closedBy(lines[j].text) {
			closed = true
			j++
			break
		}
		body = append(body, stripIndent(lines[j].text, f.indent))
	}
	if !closed {
		for len(body) > 0 && isBlank(body[len(body)-1]) {
			body = body[:len(body)-1]
		}
		l.anomaly(UnterminatedFence, excerpt(strings.TrimSpace(lines[i].text), 0))
	}
	return j - i, &Token{Kind: CodeBlock, Lang: f.lang, Text: strings.Join(body, "\n")}
}

// --- Block quotes ----------------------------------------------------------

func quoteContent(s string) (string, bool) {
	ind := indentOf(s)
	if ind > 3 || ind >= len(s) || s[ind] != '>' {
		return "", false
	}
	s = s[ind+1:]
	if strings.HasPrefix(s, " ") {
		s = s[1:]
	}
	return s, true
}

func (l *lexer) scanQuote(lines []srcLine, i int, ctx Context) (int, *Token) {
	if !ctx.BlockMarkers() {
		return 0, nil
	}
	var inner []srcLine
	j := i
	for ; j < len(lines); j++ {
		content, ok := quoteContent(lines[j].text)
		if !ok {
			break
		}
		inner = append(inner, srcLine{text: content, no: lines[j].no})
	}
	if len(inner) == 0 {
		return 0, nil
	}
	return j - i, container(BlockQuote, l.parseBlocks(inner, ctx.InQuote()))
}

// --- Lists -----------------------------------------------------------------

type listMarker struct {
	indent  int    // spaces before the marker
	width   int    // marker plus following spaces
	ordered bool   // "N." or "N)" marker
	bullet  byte   // '-', '*', '+', or the delimiter of an ordered marker
	start   int    // number of an ordered marker
	content string // rest of the line
}

// contentIndent is the column where item content starts.
func (m listMarker) contentIndent() int {
	return m.indent + m.width
}

func parseListMarker(s string) (listMarker, bool) {
	m := listMarker{indent: indentOf(s)}
	rest := s[m.indent:]
	if rest == "" {
		return m, false
	}
	n := 0
	switch c := rest[0]; {
	case c == '-' || c == '*' || c == '+':
		m.bullet, n = c, 1
	case c >= '0' && c <= '9':
		for n < len(rest) && n < 9 && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n >= len(rest) || (rest[n] != '.' && rest[n] != ')') {
			return m, false
		}
		m.start, _ = strconv.Atoi(rest[:n])
		m.ordered, m.bullet = true, rest[n]
		n++
	default:
		return m, false
	}
	if n < len(rest) && rest[n] != ' ' {
		return m, false
	}
	spaces := indentOf(rest[n:])
	switch {
	case n+spaces == len(rest):
		m.width = n + 1
	case spaces > 4:
		m.width = n + 1
		m.content = rest[n+1:]
	default:
		m.width = n + spaces
		m.content = rest[n+spaces:]
	}
	return m, true
}

// scanList scans a list and all of its items. The depth of the list is one
// more than the depth of the enclosing list, no matter how far it is
// indented; items more indented than the content of the current item are
// content of that item, and are scanned recursively.
func (l *lexer) scanList(lines []srcLine, i int, ctx Context) (int, *Token) {
	first, ok := parseListMarker(lines[i].text)
	if !ok {
		return 0, nil
	}
	inner := ctx.InList()
	list := &Token{Kind: List, Ordered: first.ordered, Depth: inner.ListDepth}
	if first.ordered {
		list.Start = first.start
	}
	j := i
	for j < len(lines) {
		if isThematicBreak(lines[j].text) {
			break
		}
		m, ok := parseListMarker(lines[j].text)
		if !ok || m.ordered != first.ordered || m.indent >= first.contentIndent() {
			break
		}
		n, body := l.itemBody(lines, j, m, ctx)
		l.line = lines[j].no
		item := &Token{Kind: ListItem, Depth: inner.ListDepth, Children: l.itemContent(body, inner)}
		list.Children = append(list.Children, item)
		j += n
	}
	tracer().Debugf("list at line %d: depth=%d, ordered=%v, %d items", lines[i].no,
		list.Depth, list.Ordered, len(list.Children))
	return j - i, list
}

// itemBody collects the lines of one list item, de-indented to the item's
// content column.
func (l *lexer) itemBody(lines []srcLine, i int, m listMarker, ctx Context) (int, []srcLine) {
	body := []srcLine{{text: m.content, no: lines[i].no}}
	ci := m.contentIndent()
	j := i + 1
	lastBlank := false
	for j < len(lines) {
		s := lines[j].text
		if isBlank(s) {
			body = append(body, srcLine{no: lines[j].no})
			lastBlank = true
			j++
			continue
		}
		ind := indentOf(s)
		if ind >= ci {
			body = append(body, srcLine{text: stripIndent(s, ci), no: lines[j].no})
		} else if nested, ok := parseListMarker(s); ok {
			if nested.indent < m.indent+2 {
				break // sibling or outdented item
			}
			body = append(body, srcLine{text: stripIndent(s, ind), no: lines[j].no})
		} else if lastBlank || l.startsBlock(lines, j, ctx) {
			break
		} else { // lazy continuation
			body = append(body, srcLine{text: strings.TrimLeft(s, " "), no: lines[j].no})
		}
		lastBlank = false
		j++
	}
	return j - i, body
}

// itemContent scans the body of a list item. A leading paragraph is
// unwrapped, so that tight list items hold their inline content directly.
func (l *lexer) itemContent(body []srcLine, ctx Context) []*Token {
	blocks := l.parseBlocks(body, ctx)
	if len(blocks) > 0 && blocks[0].Kind == Paragraph {
		content := append([]*Token{}, blocks[0].Children...)
		return append(content, blocks[1:]...)
	}
	return blocks
}

// --- Tables ----------------------------------------------------------------

func isTableStart(lines []srcLine, i int) bool {
	if i+1 >= len(lines) || !strings.Contains(lines[i].text, "|") {
		return false
	}
	return isTableSeparator(lines[i+1].text, len(splitRow(lines[i].text)))
}

func isTableSeparator(s string, columns int) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	cells := splitRow(s)
	if len(cells) != columns {
		return false
	}
	for _, c := range cells {
		c = strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return true
}

// splitRow splits a table row at unescaped pipes outside of code spans.
// Leading and trailing pipes are optional.
func splitRow(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}
	var cells []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '`':
			if e := codeSpanEnd(s, i); e > 0 {
				i = e - 1
			}
		case '|':
			cells = append(cells, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(cells, strings.TrimSpace(s[start:]))
}

func (l *lexer) scanTable(lines []srcLine, i int, ctx Context) (int, *Token) {
	if !isTableStart(lines, i) {
		return 0, nil
	}
	header := splitRow(lines[i].text)
	table := &Token{Kind: Table, Header: true}
	table.Children = append(table.Children, l.tableRow(header, len(header), true, ctx))
	j := i + 2
	for ; j < len(lines); j++ {
		s := lines[j].text
		if isBlank(s) || !strings.Contains(s, "|") {
			break
		}
		l.line = lines[j].no
		table.Children = append(table.Children, l.tableRow(splitRow(s), len(header), false, ctx))
	}
	return j - i, table
}

// tableRow creates a row. Short rows are padded with empty cells, excess
// cells are kept.
func (l *lexer) tableRow(cells []string, columns int, header bool, ctx Context) *Token {
	row := &Token{Kind: TableRow, Header: header}
	for c := 0; c < len(cells) || c < columns; c++ {
		cell := &Token{Kind: TableCell, Header: header}
		if c < len(cells) && cells[c] != "" {
			cell.Children = l.parseBlocks([]srcLine{{text: cells[c], no: l.line}}, ctx.Cell())
		}
		row.Children = append(row.Children, cell)
	}
	return row
}

// --- Helpers ---------------------------------------------------------------

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func indentOf(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// stripIndent removes up to n leading spaces.
func stripIndent(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// excerpt returns up to 24 bytes of s starting at i, cut at a rune boundary.
func excerpt(s string, i int) string {
	s = s[i:]
	if len(s) <= 24 {
		return s
	}
	n := 24
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
