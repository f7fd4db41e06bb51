package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/checkvolume/internal/model"
)

func kinds(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Kind)
	}
	return out
}

func TestValidate_Contiguous(t *testing.T) {
	rs := Ranges{
		Low:    NewRange(dec("0"), dec("499.99")),
		Medium: NewRange(dec("500"), dec("999.99")),
		High:   AtLeast(dec("1000")),
	}
	assert.Empty(t, Validate(rs))
}

func TestValidate_Gap(t *testing.T) {
	issues := Validate(defaultRanges())
	require.Len(t, issues, 2)
	assert.Equal(t, []string{IssueGap, IssueGap}, kinds(issues))
	assert.Equal(t, model.TierMedium, issues[0].Tier)
	assert.Contains(t, issues[0].Error(), "499 and 500")
}

func TestValidate_Overlap(t *testing.T) {
	rs := Ranges{
		Low:    NewRange(dec("0"), dec("500")),
		Medium: NewRange(dec("500"), dec("999.99")),
		High:   AtLeast(dec("1000")),
	}
	issues := Validate(rs)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueOverlap, issues[0].Kind)
	assert.Contains(t, issues[0].Description, "low wins")
}

func TestValidate_Inverted(t *testing.T) {
	rs := Ranges{
		Low:    NewRange(dec("100"), dec("0")),
		Medium: NewRange(dec("0.01"), dec("999.99")),
		High:   AtLeast(dec("1000")),
	}
	issues := Validate(rs)
	assert.Contains(t, kinds(issues), IssueInverted)
}

func TestValidate_Shadowed(t *testing.T) {
	rs := Ranges{
		Low:    AtLeast(dec("0")),
		Medium: NewRange(dec("500"), dec("999.99")),
		High:   AtLeast(dec("1000")),
	}
	issues := Validate(rs)
	require.NotEmpty(t, issues)
	assert.Equal(t, IssueShadowed, issues[0].Kind)
	assert.Equal(t, model.TierMedium, issues[0].Tier)
}
