package font

import (
	"math/bits"

	"github.com/npillmayer/mdpdf/core/font/ot"
)

// CoverageMap is a bitmap of the characters a font maps to a glyph.
type CoverageMap struct {
	words []uint64
	count int
}

// NewCoverageMap creates the coverage bitmap from a font's cmap.
// A nil font yields an empty map.
func NewCoverageMap(otf *ot.Font) *CoverageMap {
	cm := &CoverageMap{}
	if otf == nil {
		return cm
	}
	otf.EachMapping(func(r rune, g ot.GlyphIndex) {
		cm.add(r)
	})
	return cm
}

func (cm *CoverageMap) add(r rune) {
	w := int(r) >> 6
	if w >= len(cm.words) {
		words := make([]uint64, w+1+w/4)
		copy(words, cm.words)
		cm.words = words
	}
	if cm.words[w]&(1<<(uint(r)&63)) == 0 {
		cm.words[w] |= 1 << (uint(r) & 63)
		cm.count++
	}
}

// Contains is a predicate: is r covered?
func (cm *CoverageMap) Contains(r rune) bool {
	if cm == nil || r < 0 {
		return false
	}
	w := int(r) >> 6
	return w < len(cm.words) && cm.words[w]&(1<<(uint(r)&63)) != 0
}

// Count returns the number of covered characters.
func (cm *CoverageMap) Count() int {
	if cm == nil {
		return 0
	}
	return cm.count
}

// Missing returns the characters of rs which are not covered, in the order
// given.
func (cm *CoverageMap) Missing(rs []rune) []rune {
	var missing []rune
	for _, r := range rs {
		if !cm.Contains(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Each calls f for every covered character, in ascending order.
func (cm *CoverageMap) Each(f func(rune)) {
	if cm == nil {
		return
	}
	for i, w := range cm.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			f(rune(i<<6 + b))
			w &= w - 1
		}
	}
}
