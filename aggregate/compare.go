package aggregate

import (
	"github.com/casafx/madrates/storage/types"
)

// Compare builds the cross-source comparison for two named subjects.
// The result holds one entry per currency quoted by both subjects, echoing
// each subject's buy/sell pair untouched; currencies quoted by only one
// side are omitted. A missing subject yields an empty result, not an
// error -- comparison is an optional enrichment
func Compare(sets []*types.SourceRateSet, subjectA, subjectB string) []types.ComparisonEntry {
	var a, b *types.SourceRateSet

	for _, set := range sets {
		switch set.SourceName {
		case subjectA:
			a = set
		case subjectB:
			b = set
		}
	}

	if a == nil || b == nil || subjectA == subjectB {
		return nil
	}

	entries := make([]types.ComparisonEntry, 0, len(a.Quotes))

	// Subject A's quote order drives the entry order
	for _, quote := range a.Quotes {
		counterpart := b.Quote(quote.Currency)
		if counterpart == nil {
			continue
		}

		entries = append(entries, types.ComparisonEntry{
			Currency: quote.Currency,
			PerSource: map[string]types.SourcePair{
				a.SourceName: {
					Buy:  quote.Buy,
					Sell: quote.Sell,
				},
				b.SourceName: {
					Buy:  counterpart.Buy,
					Sell: counterpart.Sell,
				},
			},
		})
	}

	return entries
}
