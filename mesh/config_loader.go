package mesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultHTTPPort is used when neither the config nor the CLI sets a port
const DefaultHTTPPort = 8080

// DefaultConfig returns the configuration used when no config file exists
func DefaultConfig() *Config {
	return &Config{
		Alignment: AlignmentConfig{MinCorrespondences: DefaultMinCorrespondences},
		MQTT:      MQTTConfig{PublishPrefix: "beaconmesh", ClientID: "beaconmesh"},
		HTTP:      HTTPConfig{Port: DefaultHTTPPort},
		Output:    OutputConfig{Plane: PlaneXY, GridSpacing: 500},
	}
}

// LoadConfig loads the configuration from a YAML file. Fields missing from
// the file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks field ranges
func (c *Config) Validate() error {
	if mc := c.Alignment.MinCorrespondences; mc < 0 || (mc > 0 && mc < MinUsableCorrespondences) {
		return fmt.Errorf("alignment.minCorrespondences must be 0 (default) or >= %d, got %d", MinUsableCorrespondences, mc)
	}
	if c.Alignment.Workers < 0 {
		return fmt.Errorf("alignment.workers must be >= 0, got %d", c.Alignment.Workers)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	switch c.Output.Plane {
	case "", PlaneXY, PlaneXZ, PlaneYZ:
	default:
		return fmt.Errorf("output.plane must be one of xy, xz, yz, got %q", c.Output.Plane)
	}
	if c.Output.GridSpacing < 0 {
		return fmt.Errorf("output.gridSpacing must be >= 0, got %g", c.Output.GridSpacing)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
