package editor

import "strings"

// StringPool is a free-list of reusable *strings.Builder values. Every
// acquire must be matched by an explicit Release; there is no
// finalizer-based auto-return, so ownership stays visible at each call
// site the way the rest of this package's resource handling does.
type StringPool struct {
	free []*strings.Builder
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{}
}

// Acquire returns an empty builder, reusing a freed one if available.
func (p *StringPool) Acquire() *strings.Builder {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return b
	}
	return &strings.Builder{}
}

// AcquireWith returns a builder preloaded with value.
func (p *StringPool) AcquireWith(value string) *strings.Builder {
	b := p.Acquire()
	b.WriteString(value)
	return b
}

// Release clears b and returns it to the pool.
func (p *StringPool) Release(b *strings.Builder) {
	b.Reset()
	p.free = append(p.free, b)
}
