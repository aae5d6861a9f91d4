package dataset

import (
	"sort"

	"github.com/crimecast/crimecast/internal/analytics"
)

// Record is one row of the dataset
type Record struct {
	Jurisdiction string  `json:"jurisdiction"`
	Category     string  `json:"category"`
	Year         int     `json:"year"`
	Count        float64 `json:"count"`
}

type selection struct {
	jurisdiction string
	category     string
}

// Store is the in-memory dataset. It is built once and only read
// afterwards, so it is safe for concurrent use.
type Store struct {
	records       []Record
	index         map[selection][]int
	jurisdictions []string
	categories    map[string][]string
	version       string
}

// NewStore builds a store from records; version identifies the content
// and is used in cache keys.
func NewStore(records []Record, version string) *Store {
	copied := append([]Record(nil), records...)
	return newStore(copied, version)
}

func newStore(records []Record, version string) *Store {
	s := &Store{
		records:    records,
		index:      make(map[selection][]int),
		categories: make(map[string][]string),
		version:    version,
	}

	seenCategory := make(map[selection]bool)
	for i, r := range records {
		key := selection{jurisdiction: r.Jurisdiction, category: r.Category}
		s.index[key] = append(s.index[key], i)
		if _, ok := s.categories[r.Jurisdiction]; !ok {
			s.jurisdictions = append(s.jurisdictions, r.Jurisdiction)
			s.categories[r.Jurisdiction] = nil
		}
		if !seenCategory[key] {
			seenCategory[key] = true
			s.categories[r.Jurisdiction] = append(s.categories[r.Jurisdiction], r.Category)
		}
	}

	sort.Strings(s.jurisdictions)
	for _, cats := range s.categories {
		sort.Strings(cats)
	}
	return s
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Version returns the content hash of the loaded dataset
func (s *Store) Version() string {
	return s.version
}

// Records returns the records of one jurisdiction and category in file order
func (s *Store) Records(jurisdiction, category string) []Record {
	idx := s.index[selection{jurisdiction: jurisdiction, category: category}]
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = s.records[j]
	}
	return out
}

// Filter returns the (year, count) rows of one jurisdiction and category.
// The result is empty when nothing matches.
func (s *Store) Filter(jurisdiction, category string) []analytics.Row {
	idx := s.index[selection{jurisdiction: jurisdiction, category: category}]
	rows := make([]analytics.Row, len(idx))
	for i, j := range idx {
		rows[i] = analytics.Row{Period: s.records[j].Year, Value: s.records[j].Count}
	}
	return rows
}

// Jurisdictions returns the distinct jurisdictions in sorted order
func (s *Store) Jurisdictions() []string {
	return append([]string(nil), s.jurisdictions...)
}

// Categories returns the categories recorded for a jurisdiction in sorted
// order; nil if the jurisdiction is unknown.
func (s *Store) Categories(jurisdiction string) []string {
	cats, ok := s.categories[jurisdiction]
	if !ok {
		return nil
	}
	return append([]string(nil), cats...)
}

// HasJurisdiction reports whether the jurisdiction appears in the dataset
func (s *Store) HasJurisdiction(jurisdiction string) bool {
	_, ok := s.categories[jurisdiction]
	return ok
}
