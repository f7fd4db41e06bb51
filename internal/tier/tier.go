package tier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// Range is an inclusive amount range. An invalid Max means no upper bound.
type Range struct {
	Min decimal.Decimal
	Max decimal.NullDecimal
}

// NewRange returns the range [min, max].
func NewRange(min, max decimal.Decimal) Range {
	return Range{Min: min, Max: decimal.NewNullDecimal(max)}
}

// AtLeast returns the unbounded range [min, ∞).
func AtLeast(min decimal.Decimal) Range {
	return Range{Min: min}
}

// Contains reports whether amount lies in the range, bounds included.
func (r Range) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(r.Min) {
		return false
	}
	return !r.Max.Valid || amount.LessThanOrEqual(r.Max.Decimal)
}

func (r Range) String() string {
	if !r.Max.Valid {
		return fmt.Sprintf("[%s, inf)", r.Min)
	}
	return fmt.Sprintf("[%s, %s]", r.Min, r.Max.Decimal)
}

type rangeDoc struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// UnmarshalYAML accepts numbers or numeric strings for both bounds. A
// missing, null or "inf" max leaves the range unbounded.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	var doc rangeDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}

	min := decimal.Zero
	if doc.Min != "" {
		d, err := decimal.NewFromString(doc.Min)
		if err != nil {
			return fmt.Errorf("parsing min %q: %w", doc.Min, err)
		}
		min = d
	}

	var max decimal.NullDecimal
	switch strings.ToLower(strings.TrimPrefix(doc.Max, "+")) {
	case "", "inf", "infinity", ".inf":
	default:
		d, err := decimal.NewFromString(doc.Max)
		if err != nil {
			return fmt.Errorf("parsing max %q: %w", doc.Max, err)
		}
		max = decimal.NewNullDecimal(d)
	}

	*r = Range{Min: min, Max: max}
	return nil
}

// MarshalYAML writes bounds as plain numbers and omits an unbounded max.
func (r Range) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content, scalar("min"), scalar(r.Min.String()))
	if r.Max.Valid {
		node.Content = append(node.Content, scalar("max"), scalar(r.Max.Decimal.String()))
	}
	return node, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// Ranges holds the configured range of every tier.
type Ranges struct {
	Low    Range `yaml:"low"`
	Medium Range `yaml:"medium"`
	High   Range `yaml:"high"`
}

// For returns the range configured for t.
func (rs Ranges) For(t model.Tier) Range {
	switch t {
	case model.TierLow:
		return rs.Low
	case model.TierMedium:
		return rs.Medium
	default:
		return rs.High
	}
}

// Classify returns the first tier, in declaration order, whose range
// contains amount. ok is false when no range matches.
func (rs Ranges) Classify(amount decimal.Decimal) (model.Tier, bool) {
	for _, t := range model.Tiers {
		if rs.For(t).Contains(amount) {
			return t, true
		}
	}
	return "", false
}
