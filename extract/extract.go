package extract

import (
	"regexp"

	"github.com/casafx/madrates/storage/types"
)

// Extractor locates a single currency's buy/sell quote inside raw source
// text. A false return means the source doesn't report the currency (or
// the page shape changed) -- never an error.
//
// Extractors are pure: output depends only on the input text and currency
type Extractor interface {
	Extract(text string, currency types.Currency) (*types.RateQuote, bool)
}

// numberPattern matches locale-formatted rate tokens: 1-3 leading digits,
// optional thousands groups, then a decimal separator with 2-5 fractional
// digits
var numberPattern = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*[.,]\d{2,5}`)

// layout is a source's positional buy/sell convention over the tokens
// matched in a label window. A zero expect disables the positional pick
// (fallback scanning only)
type layout struct {
	expect  int
	buyIdx  int
	sellIdx int
}

// windowExtractor is the shared label-window scanning strategy behind all
// extractor variants
type windowExtractor struct {
	labels    map[types.Currency]*regexp.Regexp
	layout    layout
	window    int
	reference bool
}

func (e *windowExtractor) Extract(text string, currency types.Currency) (*types.RateQuote, bool) {
	label, ok := e.labels[currency]
	if !ok {
		return nil, false
	}

	loc := label.FindStringIndex(text)
	if loc == nil {
		// The source doesn't report this currency
		return nil, false
	}

	window := text[loc[1]:]
	if len(window) > e.window {
		window = window[:e.window]
	}

	tokens := numberPattern.FindAllString(window, -1)
	if len(tokens) == 0 {
		return nil, false
	}

	// Positional pick, when the window holds the expected token count
	if e.layout.expect > 0 && len(tokens) == e.layout.expect {
		buy, buyErr := Normalize(tokens[e.layout.buyIdx])
		sell, sellErr := Normalize(tokens[e.layout.sellIdx])

		if buyErr == nil && sellErr == nil && buy > 0 && sell > 0 {
			return &types.RateQuote{
				Currency: currency,
				Buy:      buy,
				Sell:     sell,
			}, true
		}
	}

	// Fallback: first usable strictly-positive tokens, in order of appearance
	need := 2
	if e.reference {
		need = 1
	}

	values := make([]float64, 0, need)

	for _, token := range tokens {
		v, err := Normalize(token)
		if err != nil || v <= 0 {
			continue
		}

		values = append(values, v)
		if len(values) == need {
			break
		}
	}

	if len(values) < need {
		return nil, false
	}

	if e.reference {
		// A reference rate has no bid/ask spread
		return &types.RateQuote{
			Currency: currency,
			Buy:      values[0],
			Sell:     values[0],
		}, true
	}

	return &types.RateQuote{
		Currency: currency,
		Buy:      values[0],
		Sell:     values[1],
	}, true
}

// NewBPNet creates the Banque Populaire (bpnet) extractor.
// The page renders an 8-token ticker per currency; buy sits at position 0
// and sell at position 4
func NewBPNet() Extractor {
	return &windowExtractor{
		labels: map[types.Currency]*regexp.Regexp{
			types.CurrencyUSD: regexp.MustCompile(`(?i)DOLLARS?\s*USD`),
			types.CurrencyEUR: regexp.MustCompile(`(?i)EUROS?\s*EUR`),
		},
		layout: layout{
			expect:  8,
			buyIdx:  0,
			sellIdx: 4,
		},
		window: 800,
	}
}

// NewAttijari creates the Attijariwafa Bank extractor.
// The rate table is a plain two-column layout: buy, then sell
func NewAttijari() Extractor {
	return &windowExtractor{
		labels: map[types.Currency]*regexp.Regexp{
			types.CurrencyUSD: regexp.MustCompile(`USD`),
			types.CurrencyEUR: regexp.MustCompile(`EUR`),
		},
		layout: layout{
			expect:  2,
			buyIdx:  0,
			sellIdx: 1,
		},
		window: 600,
	}
}

// NewReference creates the central bank reference extractor. Reference
// pages publish a single official rate per currency, used for both sides
func NewReference() Extractor {
	return &windowExtractor{
		labels: map[types.Currency]*regexp.Regexp{
			types.CurrencyUSD: regexp.MustCompile(`(?i)DOLLARS?|USD`),
			types.CurrencyEUR: regexp.MustCompile(`(?i)EURO`),
		},
		window:    600,
		reference: true,
	}
}
