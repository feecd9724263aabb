package subset

import (
	"sync"

	"github.com/npillmayer/mdpdf/core/font"
)

// Cache holds subsets created during a conversion run. Requests for the
// same font and character set return the same blob. A Cache is safe for
// concurrent use; its lifetime is bound to the run which created it.
type Cache struct {
	sync.Mutex
	blobs map[cacheKey]*Blob
}

type cacheKey struct {
	f     *font.ScalableFont
	chars string
}

// NewCache creates an empty subset cache.
func NewCache() *Cache {
	return &Cache{blobs: make(map[cacheKey]*Blob)}
}

// Subset returns a cached subset of f for chars, creating it if necessary.
// Errors are not cached.
func (c *Cache) Subset(f *font.ScalableFont, chars *RuneSet) (*Blob, error) {
	key := cacheKey{f: f, chars: chars.String()}
	c.Lock()
	defer c.Unlock()
	if b, ok := c.blobs[key]; ok {
		tracer().Debugf("subset cache hit for font %s", f.Fontname)
		return b, nil
	}
	b, err := Subset(f, chars)
	if err != nil {
		return nil, err
	}
	c.blobs[key] = b
	return b, nil
}

// Len returns the number of cached subsets.
func (c *Cache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.blobs)
}
