package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Inline scanning works on the text of one block. Every scanner has the
// shape
//
//     func(s string, i int, …) (n int, tok *Token)
//
// and either consumes n bytes starting at i to produce tok, or returns a nil
// token. In the latter case the caller copies n bytes (at least one rune)
// to the current literal text run. Nothing is ever dropped.

// scanInlineBlock is the entry point for the inline content of a block.
// Bracket balance is checked once per block.
func (l *lexer) scanInlineBlock(s string, ctx Context) []*Token {
	d := newDelimiters(s)
	l.checkBrackets(d)
	return l.inlineWith(d, ctx)
}

func (l *lexer) inline(s string, ctx Context) []*Token {
	return l.inlineWith(newDelimiters(s), ctx)
}

func (l *lexer) inlineWith(d *delimiters, ctx Context) []*Token {
	s := d.s
	var out []*Token
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			out = append(out, textToken(string(lit)))
			lit = lit[:0]
		}
	}
	for i := 0; i < len(s); {
		var n int
		var tok *Token
		switch s[i] {
		case '\\':
			if i+1 < len(s) && isEscapable(s[i+1]) {
				lit = append(lit, s[i+1])
				i += 2
				continue
			}
		case '\n': // line breaks collapse to a single space
			for len(lit) > 0 && lit[len(lit)-1] == ' ' {
				lit = lit[:len(lit)-1]
			}
			lit = append(lit, ' ')
			i++
			for i < len(s) && s[i] == ' ' {
				i++
			}
			continue
		case '`':
			n, tok = l.scanCodeSpan(d, i)
		case '!':
			n, tok = l.scanImage(d, i, ctx)
		case '[':
			n, tok = l.scanLink(d, i, ctx)
		case '*', '_':
			n, tok = l.scanEmphasis(d, i, ctx)
		}
		if tok == nil {
			if n == 0 {
				_, n = utf8.DecodeRuneInString(s[i:])
			}
			lit = append(lit, s[i:i+n]...)
			i += n
			continue
		}
		flush()
		out = append(out, tok)
		i += n
	}
	flush()
	return out
}

// delimiters holds the partners of brackets, parentheses and backtick runs
// of an inline text, found in one pass each and only when first needed.
// Failed searches for emphasis closers are remembered, as no later run of
// the same marker and length can succeed either.
type delimiters struct {
	s         string
	brackets  map[int]int // '[' → matching ']', or -1
	parens    map[int]int // '(' → matching ')'
	spanEnds  map[int]int // backtick run → index after its closing run, or 0
	spanFails map[int]int // run length → first position without a closing run
	noCloser  map[markerRun]int
	strays    []int // unmatched brackets, in report order
}

type markerRun struct {
	c byte
	k int
}

func newDelimiters(s string) *delimiters {
	return &delimiters{
		s:         s,
		spanEnds:  make(map[int]int),
		spanFails: make(map[int]int),
		noCloser:  make(map[markerRun]int),
	}
}

// --- Emphasis --------------------------------------------------------------

// scanEmphasis scans a run of k emphasis markers and looks for a closing
// run of the same length. The emphasis level is k, clamped to 3. An
// unmatched run is literal text.
func (l *lexer) scanEmphasis(d *delimiters, i int, ctx Context) (int, *Token) {
	s := d.s
	c := s[i]
	k := runLength(s, i, c)
	if !opens(s, i, k, c) {
		return k, nil
	}
	run := markerRun{c: c, k: k}
	if from, ok := d.noCloser[run]; ok && i >= from {
		return k, nil
	}
	for j := i + k; j < len(s); {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '`':
			if e := d.codeSpanEnd(j); e > 0 {
				j = e
				continue
			}
		}
		if s[j] != c {
			j++
			continue
		}
		m := runLength(s, j, c)
		if m == k && closes(s, j, m, c) {
			level := k
			if level > 3 {
				level = 3
			}
			return j + m - i, &Token{
				Kind:     Emphasis,
				Level:    level,
				Children: l.inline(s[i+k:j], ctx),
			}
		}
		j += m
	}
	d.noCloser[run] = i
	return k, nil
}

// opens is a predicate: may the marker run s[i:i+k] open emphasis?
func opens(s string, i, k int, c byte) bool {
	if i+k >= len(s) {
		return false
	}
	next, _ := utf8.DecodeRuneInString(s[i+k:])
	if unicode.IsSpace(next) {
		return false
	}
	if c == '_' && i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		return !isWordRune(prev)
	}
	return true
}

// closes is a predicate: may the marker run s[j:j+m] close emphasis?
func closes(s string, j, m int, c byte) bool {
	if j == 0 {
		return false
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:j])
	if unicode.IsSpace(prev) {
		return false
	}
	if c == '_' && j+m < len(s) {
		next, _ := utf8.DecodeRuneInString(s[j+m:])
		return !isWordRune(next)
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// --- Code spans ------------------------------------------------------------

// scanCodeSpan scans a code span opened by a run of backticks. Without a
// closing run of equal length the backticks are literal text.
func (l *lexer) scanCodeSpan(d *delimiters, i int) (int, *Token) {
	s := d.s
	k := runLength(s, i, '`')
	end := d.codeSpanEnd(i)
	if end == 0 {
		l.anomaly(UnterminatedCodeSpan, excerpt(s, i))
		return k, nil
	}
	content := strings.ReplaceAll(s[i+k:end-k], "\n", " ")
	if len(content) >= 2 && content[0] == ' ' && content[len(content)-1] == ' ' &&
		strings.Trim(content, " ") != "" {
		content = content[1 : len(content)-1]
	}
	return end - i, &Token{Kind: InlineCode, Text: content}
}

// codeSpanEnd returns the index after the closing backtick run of a code
// span opened at i, or 0 if the span is not closed.
func codeSpanEnd(s string, i int) int {
	k := runLength(s, i, '`')
	for j := i + k; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		m := runLength(s, j, '`')
		if m == k {
			return j + m
		}
		j += m
	}
	return 0
}

// codeSpanEnd is codeSpanEnd for the text of d, remembering results.
func (d *delimiters) codeSpanEnd(i int) int {
	if e, ok := d.spanEnds[i]; ok {
		return e
	}
	k := runLength(d.s, i, '`')
	if from, ok := d.spanFails[k]; ok && i >= from {
		return 0
	}
	e := codeSpanEnd(d.s, i)
	d.spanEnds[i] = e
	if e == 0 {
		d.spanFails[k] = i
	}
	return e
}

// --- Links and images ------------------------------------------------------

func (l *lexer) scanLink(d *delimiters, i int, ctx Context) (int, *Token) {
	text, dest, n, ok := l.linkParts(d, i, true)
	if !ok {
		return 0, nil
	}
	return n, &Token{Kind: Link, Dest: dest, Children: l.inline(text, ctx)}
}

// scanImage scans "![alt](src)". The leading '!' is what distinguishes an
// image from a link; a lone '!' is literal text. Broken syntax is reported
// when the bracket is scanned as a link.
func (l *lexer) scanImage(d *delimiters, i int, ctx Context) (int, *Token) {
	if i+1 >= len(d.s) || d.s[i+1] != '[' {
		return 0, nil
	}
	alt, dest, n, ok := l.linkParts(d, i+1, false)
	if !ok {
		return 0, nil
	}
	return n + 1, &Token{Kind: Image, Dest: dest, Text: PlainText(l.inline(alt, ctx))}
}

// linkParts splits "[text](dest)" starting at s[i] == '['.
func (l *lexer) linkParts(d *delimiters, i int, report bool) (text, dest string, n int, ok bool) {
	s := d.s
	closing := d.matchBracket(i)
	if closing < 0 || closing+1 >= len(s) || s[closing+1] != '(' {
		return "", "", 0, false
	}
	end := d.matchParen(closing + 1)
	if end < 0 {
		if report {
			l.anomaly(UnmatchedBracket, excerpt(s, i))
		}
		return "", "", 0, false
	}
	return s[i+1 : closing], destination(s[closing+2 : end]), end + 1 - i, true
}

// matchBracket returns the index of the ']' matching the '[' at i, or -1.
// Escaped brackets and brackets in code spans do not count.
func (d *delimiters) matchBracket(i int) int {
	if d.brackets == nil {
		d.pairBrackets()
	}
	if j, ok := d.brackets[i]; ok {
		return j
	}
	return -1
}

func (d *delimiters) pairBrackets() {
	s := d.s
	d.brackets = make(map[int]int)
	open := arraystack.New()
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '`':
			if e := d.codeSpanEnd(i); e > 0 {
				i = e - 1
			} else {
				i += runLength(s, i, '`') - 1
			}
		case '[':
			open.Push(i)
		case ']':
			if v, ok := open.Pop(); ok {
				d.brackets[v.(int)] = i
			} else {
				d.strays = append(d.strays, i)
			}
		}
	}
	for _, v := range open.Values() {
		d.brackets[v.(int)] = -1
		d.strays = append(d.strays, v.(int))
	}
}

// matchParen returns the index of the ')' matching the '(' at i, or -1.
// A blank line ends every open parenthesis.
func (d *delimiters) matchParen(i int) int {
	if d.parens == nil {
		d.pairParens()
	}
	if j, ok := d.parens[i]; ok {
		return j
	}
	return -1
}

func (d *delimiters) pairParens() {
	s := d.s
	d.parens = make(map[int]int)
	open := arraystack.New()
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			if j+1 < len(s) && s[j+1] == '\n' {
				open.Clear()
			}
		case '(':
			open.Push(j)
		case ')':
			if v, ok := open.Pop(); ok {
				d.parens[v.(int)] = j
			}
		}
	}
}

// destination extracts the URL of a link destination, dropping an optional
// title. Angle brackets are removed; backslash escapes are resolved.
func destination(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") {
		if e := strings.IndexByte(raw, '>'); e > 0 {
			return unescape(raw[1:e])
		}
	}
	if f := strings.IndexAny(raw, " \t\n"); f >= 0 {
		raw = raw[:f]
	}
	return unescape(raw)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isEscapable(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// isEscapable is a predicate: is c an ASCII punctuation character?
func isEscapable(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

// checkBrackets reports every '[' and ']' of a block which has no partner.
// Escaped brackets and brackets in code spans do not count.
func (l *lexer) checkBrackets(d *delimiters) {
	if d.brackets == nil {
		d.pairBrackets()
	}
	for _, i := range d.strays {
		l.anomaly(UnmatchedBracket, excerpt(d.s, i))
	}
}
