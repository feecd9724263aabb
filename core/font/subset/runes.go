package subset

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/mdpdf/core/font"
	"github.com/npillmayer/mdpdf/input/markdown"
)

// RuneSet is an ordered set of characters.
type RuneSet struct {
	set *treeset.Set
}

// NewRuneSet creates a set holding rs.
func NewRuneSet(rs ...rune) *RuneSet {
	s := &RuneSet{set: treeset.NewWith(utils.Int32Comparator)}
	s.Add(rs...)
	return s
}

// Add inserts characters into the set. Control characters are ignored.
func (s *RuneSet) Add(rs ...rune) {
	for _, r := range rs {
		if r < 0 || unicode.IsControl(r) {
			continue
		}
		s.set.Add(r)
	}
}

// AddString inserts the characters of str into the set.
func (s *RuneSet) AddString(str string) {
	for _, r := range str {
		s.Add(r)
	}
}

// Union adds all characters of other to s.
func (s *RuneSet) Union(other *RuneSet) {
	if other == nil {
		return
	}
	for _, r := range other.Runes() {
		s.set.Add(r)
	}
}

// Contains is a predicate: is r an element of s?
func (s *RuneSet) Contains(r rune) bool {
	return s != nil && s.set.Contains(r)
}

// Len returns the number of characters in s.
func (s *RuneSet) Len() int {
	if s == nil {
		return 0
	}
	return s.set.Size()
}

// Runes returns the characters of s in ascending order.
func (s *RuneSet) Runes() []rune {
	if s == nil {
		return nil
	}
	values := s.set.Values()
	rs := make([]rune, len(values))
	for i, v := range values {
		rs[i] = v.(rune)
	}
	return rs
}

// String returns the characters of s, in ascending order, as a string.
func (s *RuneSet) String() string {
	return string(s.Runes())
}

// --- Used characters -------------------------------------------------------

// UsedCharacters maps font roles to the characters rendered in that role.
type UsedCharacters map[font.Role]*RuneSet

// Add records the characters of str for a role.
func (u UsedCharacters) Add(role font.Role, str string) {
	u.For(role).AddString(str)
}

// For returns the character set of a role, creating it if necessary.
func (u UsedCharacters) For(role font.Role) *RuneSet {
	s, ok := u[role]
	if !ok {
		s = NewRuneSet()
		u[role] = s
	}
	return s
}

// Bullet is the marker glyph of unordered list items.
const Bullet = "•"

// ListMarker returns the marker text for item number n of a list.
func ListMarker(ordered bool, n int) string {
	if ordered {
		return strconv.Itoa(n) + "."
	}
	return Bullet
}

// ExtractUsedCharacters collects the characters of a token tree per font
// role, including list markers emitted by a renderer. It assumes the
// default role assignment: headings and table headers are bold, block
// quotes italic, code in the code font. Render plans built with a custom
// style table collect their own character sets.
func ExtractUsedCharacters(tokens []*markdown.Token) UsedCharacters {
	used := UsedCharacters{}
	for _, t := range tokens {
		extract(used, t, inlineState{})
	}
	for role, s := range used {
		tracer().Debugf("role %s uses %d characters", role, s.Len())
	}
	return used
}

type inlineState struct {
	bold, italic, code bool
}

func (st inlineState) role() font.Role {
	return font.RoleFor(st.code, st.bold, st.italic)
}

func extract(used UsedCharacters, t *markdown.Token, st inlineState) {
	switch t.Kind {
	case markdown.Text:
		used.Add(st.role(), t.Text)
		return
	case markdown.InlineCode, markdown.CodeBlock:
		st.code = true
		used.Add(st.role(), strings.ReplaceAll(t.Text, "\t", "    "))
		return
	case markdown.Image:
		return
	case markdown.Heading:
		st.bold = true
	case markdown.BlockQuote:
		st.italic = true
	case markdown.TableCell:
		if t.Header {
			st.bold = true
		}
	case markdown.Emphasis:
		st.italic = st.italic || t.Level != 2
		st.bold = st.bold || t.Level >= 2
	case markdown.List:
		if t.Ordered {
			used.Add(font.RoleDefault, "0123456789.")
		} else {
			used.Add(font.RoleDefault, Bullet)
		}
	}
	for _, ch := range t.Children {
		extract(used, ch, st)
	}
}
