package mesh

// Projection planes for 2D output (GeoJSON and renderers)
const (
	PlaneXY = "xy"
	PlaneXZ = "xz"
	PlaneYZ = "yz"
)

// Config represents the full configuration file
type Config struct {
	Input     string          `yaml:"input,omitempty" json:"input,omitempty"` // Scanner report file
	Alignment AlignmentConfig `yaml:"alignment" json:"alignment"`
	MQTT      MQTTConfig      `yaml:"mqtt" json:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// AlignmentConfig holds alignment tuning from the config file
type AlignmentConfig struct {
	MinCorrespondences int `yaml:"minCorrespondences,omitempty" json:"minCorrespondences,omitempty"` // Default 12
	Workers            int `yaml:"workers,omitempty" json:"workers,omitempty"`                       // 0 = GOMAXPROCS
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	Port int `yaml:"port,omitempty" json:"port,omitempty"`
}

// OutputConfig controls the files written after alignment
type OutputConfig struct {
	Report      string  `yaml:"report,omitempty" json:"report,omitempty"`           // JSON alignment report path
	GeoJSON     string  `yaml:"geojson,omitempty" json:"geojson,omitempty"`         // GeoJSON export path
	Plane       string  `yaml:"plane,omitempty" json:"plane,omitempty"`             // Projection plane: xy, xz or yz
	GridSpacing float64 `yaml:"gridSpacing,omitempty" json:"gridSpacing,omitempty"` // Grid spacing for vector renders (default 500)
}

// AlignConfig converts the file settings into driver settings.
func (c *Config) AlignConfig() AlignConfig {
	cfg := DefaultAlignConfig()
	if c.Alignment.MinCorrespondences > 0 {
		cfg.MinCorrespondences = c.Alignment.MinCorrespondences
	}
	if c.Alignment.Workers > 0 {
		cfg.Workers = c.Alignment.Workers
	}
	return cfg
}

// GetPlane returns the configured projection plane or xy
func (c *Config) GetPlane() string {
	if c.Output.Plane == "" {
		return PlaneXY
	}
	return c.Output.Plane
}
