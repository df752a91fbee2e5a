// Package bloom provides a URL set backed by a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// URLSet records URLs for crawl deduplication. A Bloom filter answers
// negative lookups; positives are confirmed against an exact set so a
// false positive never reports an unseen URL as present.
// It is not safe for concurrent use.
type URLSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}

	// FalsePositives counts lookups the filter matched but the exact set did not.
	FalsePositives int
}

// NewURLSet returns a set sized for n expected URLs with the given
// filter false positive rate.
func NewURLSet(n uint, fpRate float64) *URLSet {
	return &URLSet{
		filter: bloom.NewWithEstimates(n, fpRate),
		exact:  make(map[string]struct{}),
	}
}

// Add inserts url and reports whether it was absent.
func (s *URLSet) Add(url string) bool {
	if s.Contains(url) {
		return false
	}
	s.filter.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Contains reports whether url has been added.
func (s *URLSet) Contains(url string) bool {
	if !s.filter.TestString(url) {
		return false
	}
	if _, ok := s.exact[url]; ok {
		return true
	}
	s.FalsePositives++
	return false
}

// Len returns the number of URLs in the set.
func (s *URLSet) Len() int {
	return len(s.exact)
}
