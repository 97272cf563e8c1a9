package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tissueFile is the on-disk shape of a tissue table
type tissueFile struct {
	Tissues []TissueProfile `yaml:"tissues"`
}

// LoadTable loads and validates a tissue profile table from a YAML file
func LoadTable(path string) (*TissueTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tissue table %s: %w", path, err)
	}
	table, err := ParseTableYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tissue table %s: %w", path, err)
	}
	return table, nil
}

// ParseTableYAML parses a tissue table from YAML bytes and validates it
func ParseTableYAML(data []byte) (*TissueTable, error) {
	var file tissueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	table := &TissueTable{profiles: make(map[string]TissueProfile, len(file.Tissues))}
	for _, p := range file.Tissues {
		if _, dup := table.profiles[p.Name]; dup {
			return nil, fmt.Errorf("duplicate tissue name: %s", p.Name)
		}
		table.profiles[p.Name] = p
	}

	if err := validateTable(table); err != nil {
		return nil, err
	}
	return table, nil
}

// validateTable performs validation on a tissue table
func validateTable(t *TissueTable) error {
	if len(t.profiles) == 0 {
		return fmt.Errorf("at least one tissue must be defined")
	}
	if _, ok := t.profiles[UnknownTissue]; !ok {
		return fmt.Errorf("tissue table must define an %q fallback profile", UnknownTissue)
	}

	for name, p := range t.profiles {
		if p.Name == "" {
			return fmt.Errorf("tissue name cannot be empty")
		}
		if p.StiffnessKPa <= 0 {
			return fmt.Errorf("tissue %s: stiffness_kpa must be positive, got %f", name, p.StiffnessKPa)
		}
		if p.BreakingPointN <= 0 {
			return fmt.Errorf("tissue %s: breaking_point_n must be positive, got %f", name, p.BreakingPointN)
		}
		if p.Friction < 0 {
			return fmt.Errorf("tissue %s: friction cannot be negative, got %f", name, p.Friction)
		}
		if p.MaxForceN <= 0 {
			return fmt.Errorf("tissue %s: max_force_n must be positive, got %f", name, p.MaxForceN)
		}
		if !p.DefaultGains.Valid() {
			return fmt.Errorf("tissue %s: default gains must be non-negative", name)
		}
	}
	return nil
}
