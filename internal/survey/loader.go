package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefinition reads a questionnaire definition from a YAML file and
// validates it.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey definition: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse survey definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid survey definition: %w", err)
	}
	return &def, nil
}

// LoadDefinitionOrDefault loads the definition from path when set, falling
// back to the built-in questionnaire.
func LoadDefinitionOrDefault(path, version string) (*Definition, error) {
	if path == "" {
		return DefaultDefinition(version), nil
	}
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	if def.Version == "" {
		def.Version = version
	}
	return def, nil
}
