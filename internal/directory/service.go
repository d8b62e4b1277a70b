package directory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultDatasetPath is the bundled scored dataset.
const DefaultDatasetPath = "data/final_merged_dataset_with_knn.csv"

// ServiceConfig holds configuration for the directory service.
type ServiceConfig struct {
	// DatasetPath is the CSV file to read country names from.
	// The first (unlabeled) column is the country name; every other column
	// is a feature value the resolver ignores.
	DatasetPath string

	// Resolver maps names to codes. If nil, uses the default chain.
	Resolver *Resolver

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service builds country directories from the scored dataset.
type Service struct {
	datasetPath string
	resolver    *Resolver
	logger      zerolog.Logger
}

// NewService creates a new directory service.
func NewService(cfg ServiceConfig) *Service {
	path := cfg.DatasetPath
	if path == "" {
		path = DefaultDatasetPath
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver()
	}

	return &Service{
		datasetPath: path,
		resolver:    resolver,
		logger:      cfg.Logger,
	}
}

// DatasetPath returns the configured dataset location.
func (s *Service) DatasetPath() string {
	return s.datasetPath
}

// Build reads the dataset and resolves every country name to a directory
// entry. Duplicate names collapse to the first occurrence. Per-name
// resolution failures mark the entry unresolved instead of aborting the
// build; a dataset read failure returns an error and no entries, and the
// caller degrades to an empty directory.
func (s *Service) Build() ([]Entry, error) {
	names, err := s.loadCountryNames()
	if err != nil {
		s.logger.Error().Err(err).Str("dataset", s.datasetPath).Msg("failed to load country dataset")
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	entries := make([]Entry, 0, len(names))

	for _, name := range names {
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		code, ok := s.resolver.Resolve(name)
		if !ok {
			s.logger.Warn().Str("country", name).Msg("no ISO code found for country")
			entries = append(entries, Entry{Country: name, Code: CodeUnresolved})
			continue
		}
		entries = append(entries, Entry{Country: name, Code: code, HasData: true})
	}

	return entries, nil
}

// loadCountryNames reads the first column of the dataset CSV, skipping the
// header row.
func (s *Service) loadCountryNames() ([]string, error) {
	f, err := os.Open(s.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // feature columns vary; only the first matters

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing dataset: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	names := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}
