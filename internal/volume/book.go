package volume

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/checkvolume/internal/model"
	"github.com/cleared-dev/checkvolume/internal/tier"
)

// Book accumulates per-account aggregates in first-seen order.
type Book struct {
	order     []string
	byAccount map[string]*model.AccountAggregate
}

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{byAccount: make(map[string]*model.AccountAggregate)}
}

// Add folds rec into its account's aggregate, creating the aggregate on
// first sight. Records without an account number are ignored and reported
// with ok=false.
func (b *Book) Add(rec model.CheckRecord) (*model.AccountAggregate, bool) {
	if !rec.HasAccount() {
		return nil, false
	}
	agg, ok := b.byAccount[rec.AccountNumber]
	if !ok {
		agg = &model.AccountAggregate{
			AccountNumber: rec.AccountNumber,
			PayeeName:     rec.PayeeName,
			Total:         decimal.Zero,
		}
		b.byAccount[rec.AccountNumber] = agg
		b.order = append(b.order, rec.AccountNumber)
	}
	agg.Add(rec)
	return agg, true
}

// Len returns the number of accounts seen.
func (b *Book) Len() int {
	return len(b.order)
}

// All returns aggregates in first-seen order.
func (b *Book) All() []*model.AccountAggregate {
	out := make([]*model.AccountAggregate, 0, len(b.order))
	for _, acct := range b.order {
		out = append(out, b.byAccount[acct])
	}
	return out
}

// Partition groups the aggregates' output rows by tier. Totals matching no
// range are returned separately.
func (b *Book) Partition(ranges tier.Ranges) (map[model.Tier][]model.OutputRow, []*model.AccountAggregate) {
	byTier := make(map[model.Tier][]model.OutputRow, len(model.Tiers))
	var unmatched []*model.AccountAggregate
	for _, agg := range b.All() {
		t, ok := ranges.Classify(agg.Total)
		if !ok {
			unmatched = append(unmatched, agg)
			continue
		}
		byTier[t] = append(byTier[t], agg.Row())
	}
	return byTier, unmatched
}
