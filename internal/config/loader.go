package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/domdrift/pkg/types"
)

// EnvPrefix prefixes every configuration environment variable
const EnvPrefix = "DOMDRIFT_"

// sections lists the top-level keys, longest first so that "line_diff"
// wins over any shorter section sharing its prefix
var sections = []string{"line_diff", "compare", "storage", "report", "log"}

// Loader layers configuration sources onto the defaults
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

// NewLoader creates a loader with validation support
func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// Load is a shortcut for NewLoader().Load
func Load(path string, overrides map[string]any) (*Config, error) {
	return NewLoader().Load(path, overrides)
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when empty), the environment and overrides keyed by dotted path, in that order
func (l *Loader) Load(path string, overrides map[string]any) (*Config, error) {
	l.koanf = koanf.New(".")

	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := l.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}

	for key, value := range overrides {
		if err := l.koanf.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set override %s: %w", key, err)
		}
	}

	return l.unmarshalAndValidate()
}

// loadYAML merges only the keys present in the file
func (l *Loader) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for key, value := range flattenMap("", raw) {
		if err := l.koanf.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s from %s: %w", key, path, err)
		}
	}

	return nil
}

// loadEnvironment loads DOMDRIFT_* variables
func (l *Loader) loadEnvironment() error {
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(key), value
		},
	}), nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// transformEnvKey converts DOMDRIFT_COMPARE_CHUNK_SIZE to compare.chunk_size.
// Variables that name no known section are dropped.
func transformEnvKey(key string) string {
	s := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	for _, section := range sections {
		if rest, ok := strings.CutPrefix(s, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}

	return ""
}

// flattenMap flattens a nested map into dot-notation keys
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
		} else {
			result[key] = v
		}
	}
	return result
}

// unmarshalAndValidate decodes the merged values and validates them
func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config

	if err := l.koanf.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags, then the values only the domain types can judge
func (l *Loader) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration cannot be nil", types.ErrInvalidConfiguration)
	}

	if err := l.validator.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidConfiguration, err)
	}

	if _, err := types.ParseAlgorithm(cfg.Compare.HashAlgorithm); err != nil {
		return err
	}

	if _, err := types.ParseMethod(cfg.Compare.Method); err != nil {
		return err
	}

	return nil
}
