package model

// Tier is a volume classification bucket.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Tiers lists every tier in declaration order. Classification walks this
// order and the first matching range wins.
var Tiers = []Tier{TierLow, TierMedium, TierHigh}

// FileName returns the CSV file name for the tier, e.g. "low_volume.csv".
func (t Tier) FileName() string {
	return string(t) + "_volume.csv"
}
