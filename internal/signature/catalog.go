package signature

import (
	"fmt"
	"sync"

	"gamemode/internal/input"
)

// Catalog is the ordered, append-only signature table. Standard signatures
// are checked first, then vendor, added and learned signatures in insertion
// order, then wildcards. It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	standard  []Signature
	custom    []Signature
	wildcards []Signature
	names     map[string]struct{}
	seeded    int // leading entries of custom that came from NewCatalog
}

// NewCatalog seeds the standard signatures followed by extra.
func NewCatalog(extra ...Signature) (*Catalog, error) {
	c := &Catalog{names: make(map[string]struct{})}
	for _, s := range Standard() {
		c.standard = append(c.standard, s.normalize())
		c.names[s.Name] = struct{}{}
	}
	for _, s := range extra {
		if err := c.add(s); err != nil {
			return nil, err
		}
	}
	c.seeded = len(c.custom)
	return c, nil
}

// Classify returns the name of the first signature ev matches.
func (c *Catalog) Classify(ev input.Event) (string, bool) {
	s, ok := c.Match(ev)
	return s.Name, ok
}

// Match is Classify returning the whole signature.
func (c *Catalog) Match(ev input.Event) (Signature, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := firstMatch(c.standard, ev); ok {
		return s, true
	}
	if s, ok := firstMatch(c.custom, ev); ok {
		return s, true
	}
	return firstMatch(c.wildcards, ev)
}

// Recognized reports whether ev matches a signature other than a wildcard.
func (c *Catalog) Recognized(ev input.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := firstMatch(c.standard, ev); ok {
		return true
	}
	_, ok := firstMatch(c.custom, ev)
	return ok
}

func firstMatch(list []Signature, ev input.Event) (Signature, bool) {
	for i := range list {
		if list[i].Matches(ev) {
			return list[i], true
		}
	}
	return Signature{}, false
}

// Learn appends an exact-match signature for ev under name.
func (c *Catalog) Learn(ev input.Event, name string) (Signature, error) {
	s := Exact(name, ev)
	if err := c.Add(s); err != nil {
		return Signature{}, err
	}
	return s, nil
}

// Add appends s. Wildcards are kept after every other signature.
func (c *Catalog) Add(s Signature) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(s)
}

func (c *Catalog) add(s Signature) error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if _, dup := c.names[s.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateName, s.Name)
	}
	s = s.normalize()
	if s.IsWildcard() {
		c.wildcards = append(c.wildcards, s)
	} else {
		c.custom = append(c.custom, s)
	}
	c.names[s.Name] = struct{}{}
	return nil
}

// Learned returns the signatures added after construction, excluding wildcards.
func (c *Catalog) Learned() []Signature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Signature, len(c.custom)-c.seeded)
	copy(out, c.custom[c.seeded:])
	return out
}

// Signatures returns every signature in classification order.
func (c *Catalog) Signatures() []Signature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Signature, 0, len(c.standard)+len(c.custom)+len(c.wildcards))
	out = append(out, c.standard...)
	out = append(out, c.custom...)
	return append(out, c.wildcards...)
}

// Len returns the number of signatures.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.standard) + len(c.custom) + len(c.wildcards)
}
