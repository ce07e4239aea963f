package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/tabletpath/internal/model"
)

// DefaultProfilesPath returns the default file path for custom firmware
// profiles, ~/.tabletpath/profiles.json.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.FirmwareProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.FirmwareProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.FirmwareProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.FirmwareProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.FirmwareProfile) error {
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.FirmwareProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FirmwareProfile{}, err
	}

	var profile model.FirmwareProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.FirmwareProfile{}, err
	}
	if err := validateProfile(profile); err != nil {
		return model.FirmwareProfile{}, err
	}
	return profile, nil
}

// ResolveProfile returns the custom profile with the given name, falling
// back to the built-in table (and from there to CraftHealth).
func ResolveProfile(name string, custom []model.FirmwareProfile) model.FirmwareProfile {
	for _, p := range custom {
		if p.Name == name {
			return p
		}
	}
	return model.GetProfile(name)
}

// validateProfile rejects profiles the generator cannot write with.
func validateProfile(p model.FirmwareProfile) error {
	switch {
	case p.Name == "":
		return errors.New("imported profile has no name")
	case p.LinearMove == "":
		return fmt.Errorf("profile %q: linear move opcode is required", p.Name)
	case len(p.PrimaryAxis) != 1 || len(p.SecondaryAxis) != 1:
		return fmt.Errorf("profile %q: extrusion axes must be single letters", p.Name)
	}
	return nil
}
