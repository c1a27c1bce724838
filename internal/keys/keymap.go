package keys

// MatchKind is the result of matching a candidate key sequence against
// a KeyMap's entries.
type MatchKind int

const (
	// NoMatch: no `from` sequence starts with the candidate.
	NoMatch MatchKind = iota
	// Prefix: at least one `from` begins with the candidate but none
	// equals it yet; the caller should wait for more keys.
	Prefix
	// Replaced: some `from` equals the candidate exactly; To holds its
	// replacement.
	Replaced
)

// MatchResult is returned by KeyMap.Matches.
type MatchResult struct {
	Kind MatchKind
	To   []Key
}

type binding struct {
	from []Key
	to   []Key
}

// KeyMap is one mode's remap table: an ordered list of (from, to)
// bindings, consulted in registration order so earlier bindings take
// precedence over later, more general ones.
type KeyMap struct {
	bindings []binding
}

// NewKeyMap returns an empty key map.
func NewKeyMap() *KeyMap {
	return &KeyMap{}
}

// Map registers a binding from `from` to `to`, both parsed with the
// key DSL.
func (m *KeyMap) Map(from, to string) error {
	fromKeys, err := Parse(from)
	if err != nil {
		return err
	}
	toKeys, err := Parse(to)
	if err != nil {
		return err
	}
	m.bindings = append(m.bindings, binding{from: fromKeys, to: toKeys})
	return nil
}

// Matches checks candidate against every binding's `from` sequence.
func (m *KeyMap) Matches(candidate []Key) MatchResult {
	prefix := false
	for _, b := range m.bindings {
		if len(candidate) > len(b.from) {
			continue
		}
		if !keysEqual(b.from[:len(candidate)], candidate) {
			continue
		}
		if len(candidate) == len(b.from) {
			return MatchResult{Kind: Replaced, To: b.to}
		}
		prefix = true
	}
	if prefix {
		return MatchResult{Kind: Prefix}
	}
	return MatchResult{Kind: NoMatch}
}

func keysEqual(a, b []Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Collection is the per-mode set of key maps (Normal, Insert,
// Command, ReadLine, Picker).
type Collection struct {
	maps map[string]*KeyMap
}

// NewCollection returns a collection with an empty KeyMap for every
// name in modes.
func NewCollection(modes ...string) *Collection {
	c := &Collection{maps: make(map[string]*KeyMap, len(modes))}
	for _, m := range modes {
		c.maps[m] = NewKeyMap()
	}
	return c
}

// For returns the KeyMap for mode, creating an empty one if absent.
func (c *Collection) For(mode string) *KeyMap {
	if km, ok := c.maps[mode]; ok {
		return km
	}
	km := NewKeyMap()
	c.maps[mode] = km
	return km
}
