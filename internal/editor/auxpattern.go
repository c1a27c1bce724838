package editor

import (
	"fmt"
	"regexp"
)

// AuxPattern is the single compiled pattern shared by `/`, `?`, `n`,
// `N`, and the `find-pattern` command: whichever last compiled a
// pattern leaves it here for the others to reuse.
type AuxPattern struct {
	source   string
	compiled *regexp.Regexp
}

// NewAuxPattern returns an empty (never-matching) pattern holder.
func NewAuxPattern() *AuxPattern {
	return &AuxPattern{}
}

// Compile parses and stores source as the new shared pattern. An
// invalid pattern leaves the previous compiled pattern untouched.
func (a *AuxPattern) Compile(source string) error {
	if a.compiled != nil && source == a.source {
		return nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", source, err)
	}
	a.source = source
	a.compiled = re
	return nil
}

// Source returns the raw pattern text last compiled, or "" if none.
func (a *AuxPattern) Source() string {
	return a.source
}

// Regexp returns the compiled pattern, or nil if none has been set.
func (a *AuxPattern) Regexp() *regexp.Regexp {
	return a.compiled
}

// FindFrom returns the byte range of the next match in text at or
// after byteOffset, or false if there is none.
func (a *AuxPattern) FindFrom(text string, byteOffset int) (start, end int, ok bool) {
	if a.compiled == nil || byteOffset > len(text) {
		return 0, 0, false
	}
	loc := a.compiled.FindStringIndex(text[byteOffset:])
	if loc == nil {
		return 0, 0, false
	}
	return byteOffset + loc[0], byteOffset + loc[1], true
}

// FindLastBefore returns the byte range of the match with the
// greatest start position strictly before byteOffset, searching
// backward for `?`/N semantics. It scans all matches in text since
// Go's regexp package has no native reverse search.
func (a *AuxPattern) FindLastBefore(text string, byteOffset int) (start, end int, ok bool) {
	if a.compiled == nil {
		return 0, 0, false
	}
	var bestStart, bestEnd int
	found := false
	for _, loc := range a.compiled.FindAllStringIndex(text, -1) {
		if loc[0] >= byteOffset {
			break
		}
		bestStart, bestEnd = loc[0], loc[1]
		found = true
	}
	return bestStart, bestEnd, found
}
