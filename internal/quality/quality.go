// Package quality scores how trustworthy a parse is from four sub-metrics.
package quality

import (
	"sort"

	"github.com/dgallion1/jobparse/internal/doctree"
	"github.com/dgallion1/jobparse/internal/score"
)

// Config holds the tunable constants of the assessment. The defaults were
// fitted to a small sample and are expected to be revisited.
type Config struct {
	BulletBaseline  float64 `json:"bullet_baseline" yaml:"bullet_baseline"`
	ConsistencyBase float64 `json:"consistency_base" yaml:"consistency_base"`
	ConsistencyStep float64 `json:"consistency_step" yaml:"consistency_step"`

	SweetSpotLow      float64 `json:"sweet_spot_low" yaml:"sweet_spot_low"`
	SweetSpotHigh     float64 `json:"sweet_spot_high" yaml:"sweet_spot_high"`
	ModerateLow       float64 `json:"moderate_low" yaml:"moderate_low"`
	SweetSpotScore    float64 `json:"sweet_spot_score" yaml:"sweet_spot_score"`
	ModerateScore     float64 `json:"moderate_score" yaml:"moderate_score"`
	OverRetainedScore float64 `json:"over_retained_score" yaml:"over_retained_score"`

	CompletenessWeight float64 `json:"completeness_weight" yaml:"completeness_weight"`
	BulletWeight       float64 `json:"bullet_weight" yaml:"bullet_weight"`
	ConsistencyWeight  float64 `json:"consistency_weight" yaml:"consistency_weight"`
	FidelityWeight     float64 `json:"fidelity_weight" yaml:"fidelity_weight"`

	ValidationThreshold float64 `json:"validation_threshold" yaml:"validation_threshold"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BulletBaseline:      0.3,
		ConsistencyBase:     0.5,
		ConsistencyStep:     0.1,
		SweetSpotLow:        0.85,
		SweetSpotHigh:       0.98,
		ModerateLow:         0.6,
		SweetSpotScore:      0.9,
		ModerateScore:       0.7,
		OverRetainedScore:   0.8,
		CompletenessWeight:  0.30,
		BulletWeight:        0.25,
		ConsistencyWeight:   0.25,
		FidelityWeight:      0.20,
		ValidationThreshold: 0.6,
	}
}

// withDefaults treats a zero Config as DefaultConfig and all-zero weights as
// the default weights, so an overall score always has something to weigh.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c == (Config{}) {
		return d
	}
	if c.CompletenessWeight == 0 && c.BulletWeight == 0 && c.ConsistencyWeight == 0 && c.FidelityWeight == 0 {
		c.CompletenessWeight = d.CompletenessWeight
		c.BulletWeight = d.BulletWeight
		c.ConsistencyWeight = d.ConsistencyWeight
		c.FidelityWeight = d.FidelityWeight
	}
	return c
}

// coreTypes are the sections every complete posting is expected to carry.
var coreTypes = []doctree.SectionType{
	doctree.SectionRoleOverview,
	doctree.SectionResponsibilities,
	doctree.SectionQualifications,
}

// Completeness is the fraction of core section types present.
func Completeness(sections []doctree.ProcessedSection) float64 {
	present := make(map[doctree.SectionType]bool, len(sections))
	for _, s := range sections {
		present[s.Type] = true
	}
	n := 0
	for _, t := range coreTypes {
		if present[t] {
			n++
		}
	}
	return score.Clamp01(float64(n) / float64(len(coreTypes)))
}

// BulletQuality blends mean bullet confidence with the share of labeled
// bullets. With no bullets it returns the configured baseline.
func BulletQuality(sections []doctree.ProcessedSection, cfg Config) float64 {
	var total, sum float64
	var labeled int
	for _, s := range sections {
		for _, b := range s.Bullets {
			total++
			sum += b.Confidence
			if b.Label != "" {
				labeled++
			}
		}
	}
	if total == 0 {
		return score.Clamp01(cfg.BulletBaseline)
	}
	return score.Clamp01(0.7*(sum/total) + 0.3*(float64(labeled)/total))
}

// Consistency rewards sections that advance through the canonical sequence
// in document order. Sections are read by OriginalOrder, not slice order;
// unknown sections carry no position.
func Consistency(sections []doctree.ProcessedSection, cfg Config) float64 {
	ordered := make([]doctree.ProcessedSection, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OriginalOrder < ordered[j].OriginalOrder
	})

	v := cfg.ConsistencyBase
	furthest := -1
	for _, s := range ordered {
		if s.Type == doctree.SectionUnknown {
			continue
		}
		pos := s.Type.Priority()
		if pos > furthest {
			v += cfg.ConsistencyStep
			furthest = pos
		}
	}
	return score.Clamp01(v)
}

// Fidelity maps the cleaned/original length ratio onto a score that peaks in
// the sweet-spot band and penalizes both heavy loss and no cleaning at all.
func Fidelity(originalLength, cleanedLength int, cfg Config) float64 {
	if originalLength <= 0 {
		return 0
	}
	ratio := float64(cleanedLength) / float64(originalLength)
	switch {
	case ratio > cfg.SweetSpotHigh:
		return score.Clamp01(cfg.OverRetainedScore)
	case ratio >= cfg.SweetSpotLow:
		return score.Clamp01(cfg.SweetSpotScore)
	case ratio >= cfg.ModerateLow:
		return score.Clamp01(cfg.ModerateScore)
	default:
		return score.Clamp01(ratio)
	}
}

// Assess computes all sub-metrics and the weighted overall score.
func Assess(sections []doctree.ProcessedSection, originalLength, cleanedLength int, cfg Config) doctree.StructureQuality {
	cfg = cfg.withDefaults()
	q := doctree.StructureQuality{
		SectionCompleteness:     Completeness(sections),
		BulletPointQuality:      BulletQuality(sections, cfg),
		HierarchicalConsistency: Consistency(sections, cfg),
		ContentFidelity:         Fidelity(originalLength, cleanedLength, cfg),
	}
	q.OverallStructureScore = score.Clamp01(
		cfg.CompletenessWeight*q.SectionCompleteness +
			cfg.BulletWeight*q.BulletPointQuality +
			cfg.ConsistencyWeight*q.HierarchicalConsistency +
			cfg.FidelityWeight*q.ContentFidelity)
	return q
}

// Passed reports whether q clears the validation threshold. A zero Config
// uses the default threshold.
func Passed(q doctree.StructureQuality, cfg Config) bool {
	return q.OverallStructureScore >= cfg.withDefaults().ValidationThreshold
}
