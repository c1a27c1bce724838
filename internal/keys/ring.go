package keys

import "strings"

// Ring is the append-only buffer of decoded input keys that mode
// dispatch consumes from. Parsing a bad DSL string leaves the ring
// untouched; the caller sees the error instead of a partial append.
type Ring struct {
	keys       []Key
	recording  bool
	recordBuf  strings.Builder
}

// StartRecording begins capturing the textual form of every key passed
// to RecordKey, for macro register `q<key>` recording.
func (r *Ring) StartRecording() {
	r.recording = true
	r.recordBuf.Reset()
}

// IsRecording reports whether a macro recording is in progress.
func (r *Ring) IsRecording() bool { return r.recording }

// RecordKey appends k's textual DSL form to the in-progress recording.
// It is a no-op when not recording.
func (r *Ring) RecordKey(k Key) {
	if r.recording {
		r.recordBuf.WriteString(k.String())
	}
}

// StopRecording ends the in-progress recording and returns its text,
// ready to be stored in a register and replayed later via Parse.
func (r *Ring) StopRecording() string {
	r.recording = false
	return r.recordBuf.String()
}

// NewRing returns an empty key ring.
func NewRing() *Ring {
	return &Ring{}
}

// Parse decodes s and appends the result, returning an Iterator
// positioned at the start of the newly-appended tail.
func (r *Ring) Parse(s string) (Iterator, error) {
	index := len(r.keys)
	parsed, err := Parse(s)
	if err != nil {
		return Iterator{}, err
	}
	r.keys = append(r.keys, parsed...)
	return Iterator{index: index}, nil
}

// AppendKey appends a single already-decoded key (e.g. one read
// straight off the wire protocol, which has no textual DSL form to
// re-parse) to the tail of the ring.
func (r *Ring) AppendKey(k Key) {
	r.keys = append(r.keys, k)
}

// All returns every key currently held in the ring.
func (r *Ring) All() []Key {
	return r.keys
}

// Reset clears the ring, e.g. once a full dispatch pass has consumed it.
func (r *Ring) Reset() {
	r.keys = r.keys[:0]
}

// Iterator walks a Ring from a fixed starting point forward.
type Iterator struct {
	index int
}

// Next returns the next key, or a None key once the ring is exhausted.
func (it *Iterator) Next(r *Ring) Key {
	if it.index < len(r.keys) {
		k := r.keys[it.index]
		it.index++
		return k
	}
	return Key{Kind: None}
}

// Index returns the iterator's current position in the ring.
func (it *Iterator) Index() int {
	return it.index
}

// Rewind resets the iterator to index i, used by key-map replacement
// to re-dispatch from the start of a matched sequence.
func (it *Iterator) Rewind(i int) {
	it.index = i
}

// Replace splices replacement in place of r.keys[from:to], used when a
// key-map match rewrites a matched `from` sequence into its `to` form.
func (r *Ring) Replace(from, to int, replacement []Key) {
	tail := append([]Key{}, r.keys[to:]...)
	r.keys = append(r.keys[:from], replacement...)
	r.keys = append(r.keys, tail...)
}

// DropFront removes the first n keys, used once mode dispatch has
// consumed them from the head of the ring.
func (r *Ring) DropFront(n int) {
	r.keys = append([]Key{}, r.keys[n:]...)
}
