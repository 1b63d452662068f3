// Package match defines match results and presentation tiers.
package match

import "fmt"

// Result is the relevance of one catalog entity for one profile.
// Reason is the id of the domain tag that contributed most, or empty.
type Result struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// Zero is the result for entities or profiles without signal.
var Zero = Result{}

// Kind selects the tier thresholds.
type Kind string

const (
	// KindCollege uses college thresholds.
	KindCollege Kind = "college"
	// KindSpecialty uses specialty thresholds.
	KindSpecialty Kind = "specialty"
)

// ParseKind validates a raw kind; plural forms are accepted.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "college", "colleges":
		return KindCollege, nil
	case "specialty", "specialties":
		return KindSpecialty, nil
	}
	return "", fmt.Errorf("unknown match kind %q", s)
}

// Tier is a presentation level derived from a score.
type Tier string

const (
	// TierNone means no highlight.
	TierNone Tier = "none"
	// TierElevated is the middle highlight.
	TierElevated Tier = "elevated"
	// TierGold is the top highlight.
	TierGold Tier = "gold"
)

// Thresholds are strict lower bounds: a score must exceed them.
type Thresholds struct {
	Gold     float64 `yaml:"gold" json:"gold"`
	Elevated float64 `yaml:"elevated" json:"elevated"`
}

// Classify maps a score to a tier.
func (t Thresholds) Classify(score float64) Tier {
	switch {
	case score > t.Gold:
		return TierGold
	case score > t.Elevated:
		return TierElevated
	default:
		return TierNone
	}
}

// Validate checks that gold sits above elevated.
func (t Thresholds) Validate() error {
	if t.Elevated < 0 {
		return fmt.Errorf("elevated threshold must be non-negative, got %v", t.Elevated)
	}
	if t.Gold <= t.Elevated {
		return fmt.Errorf("gold threshold %v must exceed elevated threshold %v", t.Gold, t.Elevated)
	}
	return nil
}

// TierTable holds thresholds per kind.
type TierTable map[Kind]Thresholds

// DefaultTierTable returns the empirical thresholds.
func DefaultTierTable() TierTable {
	return TierTable{
		KindCollege:   {Gold: 120, Elevated: 60},
		KindSpecialty: {Gold: 150, Elevated: 80},
	}
}

// Classify maps a score to a tier for kind. Unknown kinds never tier.
func (tt TierTable) Classify(kind Kind, score float64) Tier {
	t, ok := tt[kind]
	if !ok {
		return TierNone
	}
	return t.Classify(score)
}
