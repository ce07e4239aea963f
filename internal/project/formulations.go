package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/tabletpath/internal/formulation"
)

// DefaultFormulationsPath returns the default file path for the paste
// catalog, ~/.tabletpath/formulations.json.
func DefaultFormulationsPath() string {
	return filepath.Join(DefaultConfigDir(), "formulations.json")
}

// SaveFormulations writes the paste catalog to the specified JSON file.
func SaveFormulations(path string, catalog []formulation.Formulation) error {
	return writeJSON(path, catalog)
}

// LoadFormulations reads the paste catalog from the specified JSON file.
// If the file does not exist, it returns the built-in catalog and saves it.
func LoadFormulations(path string) ([]formulation.Formulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			catalog := formulation.Catalog()
			if saveErr := SaveFormulations(path, catalog); saveErr != nil {
				return catalog, saveErr
			}
			return catalog, nil
		}
		return nil, err
	}
	var catalog []formulation.Formulation
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ImportFormulations merges the catalog in path into existing. Entries
// whose API is already present (case-insensitively) are skipped.
func ImportFormulations(path string, existing []formulation.Formulation) ([]formulation.Formulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported []formulation.Formulation
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[strings.ToLower(f.API)] = true
	}
	for _, f := range imported {
		key := strings.ToLower(f.API)
		if !seen[key] {
			existing = append(existing, f)
			seen[key] = true
		}
	}
	return existing, nil
}
