package tier

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/checkvolume/internal/model"
)

// Extracted amounts carry two fraction digits, so ranges one cent apart
// are contiguous.
var cent = decimal.New(1, -2)

// Issue kinds reported by Validate.
const (
	IssueInverted = "inverted"
	IssueOverlap  = "overlap"
	IssueGap      = "gap"
	IssueShadowed = "shadowed"
)

// Issue describes a questionable range layout. Issues are advisory:
// classification still applies first-match over the ranges as configured.
type Issue struct {
	Kind        string
	Tier        model.Tier
	Description string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s [%s]: %s", i.Kind, i.Tier, i.Description)
}

// Validate checks that ranges are well formed and monotonically increasing
// without overlaps or gaps.
func Validate(rs Ranges) []Issue {
	var issues []Issue

	for _, t := range model.Tiers {
		r := rs.For(t)
		if r.Max.Valid && r.Max.Decimal.LessThan(r.Min) {
			issues = append(issues, Issue{
				Kind:        IssueInverted,
				Tier:        t,
				Description: fmt.Sprintf("max %s is below min %s", r.Max.Decimal, r.Min),
			})
		}
	}

	for i := 1; i < len(model.Tiers); i++ {
		prevTier, curTier := model.Tiers[i-1], model.Tiers[i]
		prev, cur := rs.For(prevTier), rs.For(curTier)

		if !prev.Max.Valid {
			issues = append(issues, Issue{
				Kind:        IssueShadowed,
				Tier:        curTier,
				Description: fmt.Sprintf("%s range %s has no upper bound", prevTier, prev),
			})
			continue
		}

		switch {
		case cur.Min.LessThanOrEqual(prev.Max.Decimal):
			issues = append(issues, Issue{
				Kind:        IssueOverlap,
				Tier:        curTier,
				Description: fmt.Sprintf("%s %s overlaps %s %s; %s wins", curTier, cur, prevTier, prev, prevTier),
			})
		case cur.Min.GreaterThan(prev.Max.Decimal.Add(cent)):
			issues = append(issues, Issue{
				Kind:        IssueGap,
				Tier:        curTier,
				Description: fmt.Sprintf("amounts between %s and %s match no tier", prev.Max.Decimal, cur.Min),
			})
		}
	}

	return issues
}
