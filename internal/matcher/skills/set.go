package skills

import "sort"

// Set is an unordered collection of skill phrases.
type Set map[string]struct{}

// NewSet returns a Set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func (s Set) Contains(item string) bool {
	_, ok := s[item]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Intersect returns the items present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for it := range s {
		if other.Contains(it) {
			out[it] = struct{}{}
		}
	}
	return out
}

// Difference returns the items of s that are in none of others.
func (s Set) Difference(others ...Set) Set {
	out := make(Set)
outer:
	for it := range s {
		for _, o := range others {
			if o.Contains(it) {
				continue outer
			}
		}
		out[it] = struct{}{}
	}
	return out
}

// Sorted returns the items in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for it := range s {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}
