// Package skill normalizes skill names so that "Go", " go" and "GO" compare equal.
package skill

import (
	"sort"
	"strings"
)

func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NormalizeSet normalizes, de-duplicates and sorts names. Empty names are dropped.
func NormalizeSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Set is a lookup view over already-normalized names.
type Set map[string]struct{}

func NewSet(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

func (s Set) Has(name string) bool {
	_, ok := s[Normalize(name)]
	return ok
}

// ContainsAll reports whether every name in names is present. An empty
// names list is trivially contained.
func (s Set) ContainsAll(names []string) bool {
	for _, n := range names {
		if Normalize(n) == "" {
			continue
		}
		if !s.Has(n) {
			return false
		}
	}
	return true
}
