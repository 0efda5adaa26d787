package llm

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"quill/internal/domain/models"
)

//go:embed config/profiles.yaml
var profilesYAML []byte

// ProfileTable maps style profiles to the natural-language instruction
// passed to the generator. It is a static lookup table loaded once at
// startup from the embedded yaml.
type ProfileTable struct {
	profiles map[models.StyleProfile]profileEntry
}

type profileEntry struct {
	DisplayName string `yaml:"display_name"`
	Instruction string `yaml:"instruction"`
}

type profilesFile struct {
	Profiles map[string]profileEntry `yaml:"profiles"`
}

// LoadProfiles parses the embedded profile table and verifies every
// known profile has an instruction.
func LoadProfiles() (*ProfileTable, error) {
	var file profilesFile
	if err := yaml.Unmarshal(profilesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse profiles.yaml: %w", err)
	}

	table := &ProfileTable{profiles: make(map[models.StyleProfile]profileEntry, len(file.Profiles))}
	for name, entry := range file.Profiles {
		table.profiles[models.StyleProfile(name)] = entry
	}

	for _, p := range models.Profiles() {
		entry, ok := table.profiles[p]
		if !ok || entry.Instruction == "" {
			return nil, fmt.Errorf("profiles.yaml: missing instruction for profile %q", p)
		}
	}
	return table, nil
}

// Instruction returns the tone/format instruction for a profile,
// falling back to generic for unknown values.
func (t *ProfileTable) Instruction(p models.StyleProfile) string {
	if entry, ok := t.profiles[p]; ok {
		return entry.Instruction
	}
	return t.profiles[models.ProfileGeneric].Instruction
}

// DisplayName returns the human-readable name for a profile.
func (t *ProfileTable) DisplayName(p models.StyleProfile) string {
	if entry, ok := t.profiles[p]; ok {
		return entry.DisplayName
	}
	return t.profiles[models.ProfileGeneric].DisplayName
}
