package services

import (
	"fmt"
)

// Catalog lists the selections available in the dataset
type Catalog interface {
	Jurisdictions() []string
	Categories(jurisdiction string) []string
	Len() int
	Version() string
}

// DatasetService answers listing queries over the loaded dataset
type DatasetService struct {
	catalog Catalog
}

// NewDatasetService creates a new DatasetService
func NewDatasetService(catalog Catalog) *DatasetService {
	return &DatasetService{catalog: catalog}
}

// Jurisdictions returns all jurisdictions in sorted order
func (s *DatasetService) Jurisdictions() []string {
	return s.catalog.Jurisdictions()
}

// Categories returns the categories recorded for a jurisdiction
func (s *DatasetService) Categories(jurisdiction string) ([]string, error) {
	if jurisdiction == "" {
		return nil, NewServiceError(CodeInvalidRequest, "jurisdiction is required")
	}
	cats := s.catalog.Categories(jurisdiction)
	if cats == nil {
		return nil, NewServiceError(CodeNotFound, fmt.Sprintf("unknown jurisdiction %q", jurisdiction))
	}
	return cats, nil
}

// Summary describes the loaded dataset
type Summary struct {
	Records       int    `json:"records"`
	Jurisdictions int    `json:"jurisdictions"`
	Version       string `json:"version"`
}

// Summary returns counts and the content version of the dataset
func (s *DatasetService) Summary() Summary {
	return Summary{
		Records:       s.catalog.Len(),
		Jurisdictions: len(s.catalog.Jurisdictions()),
		Version:       s.catalog.Version(),
	}
}
