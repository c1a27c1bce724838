// Package worddb implements a reference-counted word set with stable
// integer indices, used to seed the picker's fuzzy-matched word list.
package worddb

import "hash/fnv"

// Index is a stable slot into the database; it survives add/remove
// cycles of other words.
type Index int

type entry struct {
	text     string
	refcount int
}

// Database maps stable indices to {text, refcount}. Lookup by text
// goes through a precomputed 64-bit hash so repeated add/remove of the
// same word never re-hashes it.
type Database struct {
	entries []entry
	free    []Index
	// buckets maps a precomputed hash to the candidate indices sharing
	// it, emulating an identity-hash map keyed by the hash itself so
	// lookups never re-hash; text equality is only checked to break a
	// (vanishingly unlikely) collision.
	buckets map[uint64][]Index
}

// New returns an empty word database.
func New() *Database {
	return &Database{buckets: make(map[uint64][]Index)}
}

func hashOf(word string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(word))
	return h.Sum64()
}

func (d *Database) find(word string, h uint64) (Index, bool) {
	for _, idx := range d.buckets[h] {
		if d.entries[idx].refcount > 0 && d.entries[idx].text == word {
			return idx, true
		}
	}
	return 0, false
}

// Add increments word's refcount, allocating a new (or reused) index
// the first time it is seen.
func (d *Database) Add(word string) Index {
	h := hashOf(word)
	if idx, ok := d.find(word, h); ok {
		d.entries[idx].refcount++
		return idx
	}

	var idx Index
	if n := len(d.free); n > 0 {
		idx = d.free[n-1]
		d.free = d.free[:n-1]
		d.entries[idx] = entry{text: word, refcount: 1}
	} else {
		idx = Index(len(d.entries))
		d.entries = append(d.entries, entry{text: word, refcount: 1})
	}
	d.buckets[h] = append(d.buckets[h], idx)
	return idx
}

// Remove decrements word's refcount, freeing its index once the count
// reaches zero. Removing a word not present is a no-op.
func (d *Database) Remove(word string) {
	h := hashOf(word)
	idx, ok := d.find(word, h)
	if !ok {
		return
	}
	d.entries[idx].refcount--
	if d.entries[idx].refcount == 0 {
		d.free = append(d.free, idx)
		d.entries[idx].text = ""
	}
}

// Text returns the text stored at idx.
func (d *Database) Text(idx Index) string {
	return d.entries[idx].text
}

// Refcount returns the refcount stored at idx.
func (d *Database) Refcount(idx Index) int {
	return d.entries[idx].refcount
}

// Len returns the number of live (refcount > 0) words.
func (d *Database) Len() int {
	n := 0
	for _, e := range d.entries {
		if e.refcount > 0 {
			n++
		}
	}
	return n
}

// Iterate calls fn for every live word, in index order.
func (d *Database) Iterate(fn func(idx Index, word string)) {
	for i, e := range d.entries {
		if e.refcount > 0 {
			fn(Index(i), e.text)
		}
	}
}

// AddAllWords splits text into words on any non-identifier rune and
// adds each one (used by BufferCollection's file-read path).
func AddAllWords(d *Database, text string) {
	for _, w := range SplitWords(text) {
		d.Add(w)
	}
}

// RemoveAllWords is the inverse of AddAllWords, used when content is
// deleted from or a buffer backed by the database is closed.
func RemoveAllWords(d *Database, text string) {
	for _, w := range SplitWords(text) {
		d.Remove(w)
	}
}

// SplitWords splits s into maximal runs of identifier runes (ASCII
// letters, ASCII digits, underscore); any other rune, including a
// non-ASCII letter, separates words.
func SplitWords(s string) []string {
	var words []string
	start := -1
	isWord := func(r rune) bool {
		return r == '_' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9')
	}
	for i, r := range s {
		if isWord(r) {
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			words = append(words, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}
