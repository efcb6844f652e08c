package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"addcss/classes"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	// ClassesConfig is the configuration surface of class injection: base set
	// and kind specific overrides.
	ClassesConfig struct {
		Base    classes.ReplacementSet `yaml:"base"`
		Page    classes.ReplacementSet `yaml:"page"`
		Article classes.ReplacementSet `yaml:"article"`
	}

	ContentConfig struct {
		Extensions []string `yaml:"extensions" validate:"min=1,dive,required,startswith=."`
		Pages      []string `yaml:"pages" validate:"dive,required"`
		Static     []string `yaml:"static" validate:"dive,required"`
		// Stylesheets are only read by check command.
		Stylesheets []string `yaml:"stylesheets" validate:"dive,required"`
	}

	ProcessingConfig struct {
		Workers  int  `yaml:"workers" validate:"min=1,max=256"`
		FailFast bool `yaml:"fail_fast"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Classes    ClassesConfig    `yaml:"classes"`
		Content    ContentConfig    `yaml:"content"`
		Processing ProcessingConfig `yaml:"processing"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

// Lookup makes configuration usable wherever settings are resolved by key.
func (c *ClassesConfig) Lookup(key string) (any, bool) {
	switch key {
	case classes.BaseKey:
		return c.Base, true
	case classes.PageKey:
		return c.Page, true
	case classes.ArticleKey:
		return c.Article, true
	}
	return nil, false
}

// additionalChecks catches author mistakes validator tags cannot express:
// selectors which do not compile and broken glob patterns.
func additionalChecks(sl validator.StructLevel) {
	var cfg Config
	switch c := sl.Current().Interface().(type) {
	case Config:
		cfg = c
	case *Config:
		cfg = *c
	default:
		return
	}

	for name, set := range map[string]classes.ReplacementSet{
		"Base":    cfg.Classes.Base,
		"Page":    cfg.Classes.Page,
		"Article": cfg.Classes.Article,
	} {
		for i, e := range set {
			if _, err := classes.Compile(e.Selector); err != nil {
				sl.ReportError(e.Selector, fmt.Sprintf("Classes.%s[%d]", name, i), name, "selector", e.Selector)
			}
		}
	}

	for name, patterns := range map[string][]string{
		"Pages":       cfg.Content.Pages,
		"Static":      cfg.Content.Static,
		"Stylesheets": cfg.Content.Stylesheets,
	} {
		for i, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				sl.ReportError(p, fmt.Sprintf("Content.%s[%d]", name, i), name, "glob", p)
			}
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, fmt.Errorf("failed to sanitize configuration: %w", err)
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(additionalChecks)); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
