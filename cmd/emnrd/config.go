package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwsl/emnr/emnr"
)

// Config is emnrd's on-disk configuration, loaded from a YAML file the way
// the reference application's own Config does (spec.md AMBIENT STACK).
type Config struct {
	Engine     EngineSection     `yaml:"engine"`
	Tables     TablesSection     `yaml:"tables"`
	Prometheus PrometheusSection `yaml:"prometheus"`
	MQTT       MQTTSection       `yaml:"mqtt"`
	Logging    LoggingSection    `yaml:"logging"`
}

// EngineSection mirrors emnr.EngineConfig's tunable fields in YAML form.
type EngineSection struct {
	FFTSize           int     `yaml:"fft_size"`
	Overlap           int     `yaml:"overlap"`
	BlockSize         int     `yaml:"block_size"`
	SampleRate        int     `yaml:"sample_rate"`
	OutputGain        float64 `yaml:"output_gain"`
	GainMethod        int     `yaml:"gain_method"`
	NoiseMethod       int     `yaml:"noise_method"`
	PostFilterEnabled bool    `yaml:"post_filter_enabled"`
	Run               bool    `yaml:"run"`
	CompatAsymmetricZetaBug bool `yaml:"compat_asymmetric_zeta_bug"`
}

// TablesSection points at the optional pre-trained sidecar files (spec.md
// §6). Empty paths fall back to emnr.DefaultTables().
type TablesSection struct {
	GainSurfacesPath string `yaml:"gain_surfaces_path"`
	ZetaHatPath      string `yaml:"zeta_hat_path"`
}

// PrometheusSection configures the /metrics endpoint.
type PrometheusSection struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// MQTTSection configures optional telemetry republishing to an MQTT
// broker, grounded on the reference application's own MQTTConfig shape.
type MQTTSection struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// LoggingSection holds the logging.debug switch, which -debug also sets.
// No code in emnrd reads it, so it does not change what is logged.
type LoggingSection struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig mirrors emnr.DefaultEngineConfig with the ambient sections
// disabled.
func DefaultConfig() Config {
	d := emnr.DefaultEngineConfig()
	return Config{
		Engine: EngineSection{
			FFTSize:     d.FFTSize,
			Overlap:     d.Overlap,
			BlockSize:   d.BlockSize,
			SampleRate:  d.SampleRate,
			OutputGain:  d.OutputGain,
			GainMethod:  int(d.GainMethod),
			NoiseMethod: int(d.NoiseMethod),
			Run:         d.Run,
		},
		Prometheus: PrometheusSection{Enabled: false, Listen: ":9091"},
	}
}

// LoadConfig reads and parses a YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("emnrd: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("emnrd: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// EngineConfig converts the YAML section into an emnr.EngineConfig.
func (c Config) EngineConfig() emnr.EngineConfig {
	return emnr.EngineConfig{
		FFTSize:                 c.Engine.FFTSize,
		Overlap:                 c.Engine.Overlap,
		BlockSize:               c.Engine.BlockSize,
		SampleRate:              c.Engine.SampleRate,
		Window:                  emnr.WindowHannRoot,
		OutputGain:              c.Engine.OutputGain,
		GainMethod:              emnr.GainMethod(c.Engine.GainMethod),
		NoiseMethod:             emnr.NoiseMethod(c.Engine.NoiseMethod),
		PostFilterEnabled:       c.Engine.PostFilterEnabled,
		Run:                     c.Engine.Run,
		CompatAsymmetricZetaBug: c.Engine.CompatAsymmetricZetaBug,
	}
}
