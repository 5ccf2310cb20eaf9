package assemble

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/jobparse/internal/bullets"
	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/normalize"
	"github.com/dgallion1/jobparse/internal/quality"
)

// Config is the full tuning surface of the parser.
type Config struct {
	Normalize normalize.Config `json:"normalize" yaml:"normalize"`
	Bullets   bullets.Config   `json:"bullets" yaml:"bullets"`
	Quality   quality.Config   `json:"quality" yaml:"quality"`

	// ClassificationOrder moves the named section types to the front of the
	// classifier's rule order. Empty keeps the default order.
	ClassificationOrder []doctree.SectionType `json:"classification_order" yaml:"classification_order"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Normalize: normalize.DefaultConfig(),
		Bullets:   bullets.DefaultConfig(),
		Quality:   quality.DefaultConfig(),
	}
}

// Validate rejects tuning values that would break score bounds.
func (c Config) Validate() error {
	for _, t := range c.ClassificationOrder {
		if !t.Valid() || t == doctree.SectionUnknown {
			return fmt.Errorf("classification_order: unknown section type %q", t)
		}
	}
	q := c.Quality
	if q.ValidationThreshold < 0 || q.ValidationThreshold > 1 {
		return fmt.Errorf("quality.validation_threshold must be in [0,1], got %v", q.ValidationThreshold)
	}
	for name, w := range map[string]float64{
		"completeness_weight": q.CompletenessWeight,
		"bullet_weight":       q.BulletWeight,
		"consistency_weight":  q.ConsistencyWeight,
		"fidelity_weight":     q.FidelityWeight,
	} {
		if w < 0 {
			return fmt.Errorf("quality.%s must not be negative", name)
		}
	}
	if q.CompletenessWeight+q.BulletWeight+q.ConsistencyWeight+q.FidelityWeight == 0 {
		return fmt.Errorf("quality weights must not all be zero")
	}
	if q.SweetSpotLow > q.SweetSpotHigh {
		return fmt.Errorf("quality.sweet_spot_low %v exceeds sweet_spot_high %v", q.SweetSpotLow, q.SweetSpotHigh)
	}
	if q.ModerateLow > q.SweetSpotLow {
		return fmt.Errorf("quality.moderate_low %v exceeds sweet_spot_low %v", q.ModerateLow, q.SweetSpotLow)
	}
	if c.Normalize.ContentLossRatio < 0 || c.Normalize.ContentLossRatio > 1 {
		return fmt.Errorf("normalize.content_loss_ratio must be in [0,1], got %v", c.Normalize.ContentLossRatio)
	}
	return nil
}

// ReadConfig decodes YAML over DefaultConfig, so a file only needs the
// values it changes.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode parser config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML tuning file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open parser config: %w", err)
	}
	defer f.Close()
	return ReadConfig(f)
}
