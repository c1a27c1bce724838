// Package picker implements the fuzzy-filtered entry list shared by
// find-file, find-pattern, command completion, and buffer switching.
package picker

import (
	"github.com/google/btree"
	"github.com/sahilm/fuzzy"

	"github.com/quill-editor/quill/internal/worddb"
)

// Entry is one line of the filtered, score-sorted result list.
type Entry struct {
	Name        string
	Description string
	Score       int
}

type source int

const (
	sourceCustom source = iota
	sourceWord
)

type customEntry struct {
	name        string
	description string
}

type filteredEntry struct {
	source source
	index  int
	score  int
}

// Picker holds a pooled set of custom entries plus the last filter
// pass's score-sorted results. Cursor and scroll are tracked
// independently so update_scroll can keep the cursor in view without
// disturbing the caller's own scroll bookkeeping.
type Picker struct {
	customEntries []customEntry
	customLen     int

	filtered []filteredEntry

	cursor int
	scroll int
}

// New returns an empty picker.
func New() *Picker {
	return &Picker{}
}

// Cursor returns the index of the selected entry within Entries.
func (p *Picker) Cursor() int { return p.cursor }

// Scroll returns the first visible entry index.
func (p *Picker) Scroll() int { return p.scroll }

// Len returns the number of filtered entries.
func (p *Picker) Len() int { return len(p.filtered) }

// Height returns how many rows the list occupies given maxHeight.
func (p *Picker) Height(maxHeight int) int {
	if len(p.filtered) < maxHeight {
		return len(p.filtered)
	}
	return maxHeight
}

// Clear drops both the filtered results and the custom entries.
func (p *Picker) Clear() {
	p.ClearFiltered()
	p.customLen = 0
}

// ClearFiltered drops the filtered results and resets cursor/scroll,
// leaving the custom entry pool intact for reuse by AddCustomEntry.
func (p *Picker) ClearFiltered() {
	p.filtered = p.filtered[:0]
	p.cursor = 0
	p.scroll = 0
}

// AddCustomEntry appends a (name, description) pair, reusing a pooled
// slot from a previous Clear when one is available.
func (p *Picker) AddCustomEntry(name, description string) {
	if p.customLen < len(p.customEntries) {
		p.customEntries[p.customLen] = customEntry{name: name, description: description}
	} else {
		p.customEntries = append(p.customEntries, customEntry{name: name, description: description})
	}
	p.customLen++
}

// MoveCursor shifts the cursor by offset, wrapping around at either
// end of the filtered list.
func (p *Picker) MoveCursor(offset int) {
	if len(p.filtered) == 0 {
		return
	}
	endIndex := len(p.filtered) - 1
	switch {
	case offset > 0:
		if p.cursor == endIndex {
			offset--
			p.cursor = 0
		}
		if offset < endIndex-p.cursor {
			p.cursor += offset
		} else {
			p.cursor = endIndex
		}
	case offset < 0:
		offset = -offset
		if p.cursor == 0 {
			offset--
			p.cursor = endIndex
		}
		if offset < p.cursor {
			p.cursor -= offset
		} else {
			p.cursor = 0
		}
	}
}

// UpdateScroll clamps the scroll offset so the cursor stays within the
// maxHeight-row visible window, and returns the resulting height.
func (p *Picker) UpdateScroll(maxHeight int) int {
	height := p.Height(maxHeight)
	if p.cursor < p.scroll {
		p.scroll = p.cursor
	} else if p.cursor >= p.scroll+height {
		p.scroll = p.cursor + 1 - height
	}
	if max := len(p.filtered) - height; p.scroll > max {
		if max < 0 {
			max = 0
		}
		p.scroll = max
	}
	return height
}

// matchScore fuzzy-matches pattern against candidate, applying the
// same-length exact-match tiebreak. ok is false if there is no match
// at all (including when candidate is shorter than what the matcher
// can align).
func matchScore(candidate, pattern string) (score int, ok bool) {
	if pattern == "" {
		return 0, true
	}
	matches := fuzzy.Find(pattern, []string{candidate})
	if len(matches) == 0 {
		return 0, false
	}
	score = matches[0].Score
	if len(candidate) == len(pattern) {
		score++
	}
	return score, true
}

type wordSource struct {
	indices []worddb.Index
	words   []string
}

func (s wordSource) String(i int) string { return s.words[i] }
func (s wordSource) Len() int            { return len(s.words) }

// rankedEntry is a btree.Item ordering filtered entries by descending
// score, ties broken by insertion order so equally-scored entries keep
// a stable relative position across Filter calls.
type rankedEntry struct {
	negScore int
	seq      int
	entry    filteredEntry
}

func (a rankedEntry) Less(than btree.Item) bool {
	b := than.(rankedEntry)
	if a.negScore != b.negScore {
		return a.negScore < b.negScore
	}
	return a.seq < b.seq
}

// Filter scores every live word in words plus every custom entry
// against pattern, keeping only entries that match at all. Survivors
// are ranked through a btree keyed by (score, insertion order) rather
// than sorted after the fact, so the score-ordered walk and the
// stable tiebreak fall out of the tree's own ordering.
func (p *Picker) Filter(words *worddb.Database, pattern string) {
	rank := btree.New(32)
	seq := 0
	insert := func(e filteredEntry) {
		rank.ReplaceOrInsert(rankedEntry{negScore: -e.score, seq: seq, entry: e})
		seq++
	}

	src := wordSource{}
	if words != nil {
		words.Iterate(func(idx worddb.Index, word string) {
			src.indices = append(src.indices, idx)
			src.words = append(src.words, word)
		})
	}
	if pattern == "" {
		for _, idx := range src.indices {
			insert(filteredEntry{source: sourceWord, index: int(idx), score: 0})
		}
	} else if len(src.words) > 0 {
		for _, m := range fuzzy.FindFrom(pattern, src) {
			score := m.Score
			if len(src.words[m.Index]) == len(pattern) {
				score++
			}
			insert(filteredEntry{source: sourceWord, index: int(src.indices[m.Index]), score: score})
		}
	}

	for i := 0; i < p.customLen; i++ {
		e := p.customEntries[i]
		nameScore, nameOK := matchScore(e.name, pattern)
		descScore, descOK := matchScore(e.description, pattern)
		switch {
		case !nameOK && !descOK:
			continue
		case nameOK && descOK:
			score := nameScore
			if descScore > score {
				score = descScore
			}
			insert(filteredEntry{source: sourceCustom, index: i, score: score})
		case nameOK:
			insert(filteredEntry{source: sourceCustom, index: i, score: nameScore})
		default:
			insert(filteredEntry{source: sourceCustom, index: i, score: descScore})
		}
	}

	p.filtered = p.filtered[:0]
	rank.Ascend(func(it btree.Item) bool {
		p.filtered = append(p.filtered, it.(rankedEntry).entry)
		return true
	})

	if last := len(p.filtered) - 1; p.cursor > last {
		if last < 0 {
			last = 0
		}
		p.cursor = last
	}
}

func (p *Picker) toEntry(f filteredEntry, words *worddb.Database) Entry {
	switch f.source {
	case sourceCustom:
		e := p.customEntries[f.index]
		return Entry{Name: e.name, Description: e.description, Score: f.score}
	default:
		return Entry{Name: words.Text(worddb.Index(f.index)), Score: f.score}
	}
}

// CurrentEntry returns the entry under the cursor, or false if the
// filtered list is empty.
func (p *Picker) CurrentEntry(words *worddb.Database) (Entry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return Entry{}, false
	}
	return p.toEntry(p.filtered[p.cursor], words), true
}

// Entries returns every filtered entry in score order.
func (p *Picker) Entries(words *worddb.Database) []Entry {
	out := make([]Entry, len(p.filtered))
	for i, f := range p.filtered {
		out[i] = p.toEntry(f, words)
	}
	return out
}
