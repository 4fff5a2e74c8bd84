package rules

import "sort"

// Snapshot is an immutable set of blocked domains
type Snapshot struct {
	domains map[string]struct{}
}

// NewSnapshot creates a snapshot from already normalized domains
func NewSnapshot(domains ...string) *Snapshot {
	s := &Snapshot{domains: make(map[string]struct{}, len(domains))}

	for _, d := range domains {
		s.domains[d] = struct{}{}
	}

	return s
}

// Contains returns true if the domain is an exact member of the set
func (s *Snapshot) Contains(domain string) bool {
	if s == nil {
		return false
	}

	_, found := s.domains[domain]

	return found
}

// Len returns the number of domains
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.domains)
}

// Domains returns the sorted domains
func (s *Snapshot) Domains() []string {
	result := make([]string, 0, s.Len())

	if s != nil {
		for d := range s.domains {
			result = append(result, d)
		}
	}

	sort.Strings(result)

	return result
}
