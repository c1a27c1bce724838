package command

import (
	"hash/fnv"
	"os"
	"sort"
	"strings"
)

// Completer computes candidates for the argument being edited at the
// end of a command line. Directory listings for the Files source are
// cached per parent directory, keyed by a hash of the parent path, so
// repeated keystrokes in one prompt don't rescan the same directory.
type Completer struct {
	registry  *Registry
	fileCache map[uint64][]string
}

// NewCompleter returns a Completer resolving command names and
// argument sources against r.
func NewCompleter(r *Registry) *Completer {
	return &Completer{registry: r, fileCache: make(map[uint64][]string)}
}

// Invalidate drops the cached directory listings; callers invoke it
// when a prompt closes so the next prompt observes fresh files.
func (c *Completer) Invalidate() {
	c.fileCache = make(map[uint64][]string)
}

// Complete returns the fixed prefix of line and the candidate
// replacements for the argument being edited at its end. buffers
// supplies the Buffers source's paths; custom the Custom source's
// values. An empty candidate list means nothing to offer.
func (c *Completer) Complete(line string, buffers, custom []string) (string, []string) {
	trailingSpace := line == "" || strings.HasSuffix(line, " ")
	tokens := Tokenize(line)

	// Still editing the command name itself.
	if len(tokens) == 0 || (len(tokens) == 1 && !trailingSpace) {
		prefix := ""
		if len(tokens) == 1 {
			prefix = tokens[0].Text
		}
		return "", filterPrefix(c.registry.Names(), prefix)
	}

	name := strings.TrimSuffix(tokens[0].Text, "!")
	argIndex := len(tokens) - 1
	argPrefix := ""
	if !trailingSpace {
		argIndex = len(tokens) - 2
		argPrefix = tokens[len(tokens)-1].Text
	}
	base := line[:len(line)-len(argPrefix)]

	source, ok := c.registry.CompletionsFor(name, argIndex)
	if !ok {
		return base, nil
	}
	switch source {
	case Commands:
		return base, filterPrefix(c.registry.Names(), argPrefix)
	case Buffers:
		return base, filterPrefix(buffers, argPrefix)
	case Custom:
		return base, filterPrefix(custom, argPrefix)
	case Files:
		return base, c.completeFile(argPrefix)
	}
	return base, nil
}

// completeFile lists the parent directory of arg (cached) and returns
// the entries whose names extend arg's final path component.
// Directories gain a trailing slash so completing one positions the
// cursor to descend into it.
func (c *Completer) completeFile(arg string) []string {
	parent := ""
	base := arg
	if i := strings.LastIndexByte(arg, '/'); i >= 0 {
		parent = arg[:i+1]
		base = arg[i+1:]
	}

	key := hashPath(parent)
	names, ok := c.fileCache[key]
	if !ok {
		dir := parent
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			c.fileCache[key] = nil
			return nil
		}
		names = make([]string, 0, len(entries))
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
		c.fileCache[key] = names
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, base) {
			out = append(out, parent+name)
		}
	}
	sort.Strings(out)
	return out
}

func hashPath(p string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(p))
	return h.Sum64()
}

func filterPrefix(items []string, prefix string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if strings.HasPrefix(it, prefix) {
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}
