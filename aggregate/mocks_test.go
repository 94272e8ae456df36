package aggregate

import (
	"context"

	"github.com/casafx/madrates/storage/types"
)

type fetchDelegate func(context.Context, string) string

type mockFetcher struct {
	fetchFn fetchDelegate
}

func (m *mockFetcher) Fetch(ctx context.Context, pageURL string) string {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, pageURL)
	}

	return ""
}

type extractDelegate func(string, types.Currency) (*types.RateQuote, bool)

type mockExtractor struct {
	extractFn extractDelegate
}

func (m *mockExtractor) Extract(text string, currency types.Currency) (*types.RateQuote, bool) {
	if m.extractFn != nil {
		return m.extractFn(text, currency)
	}

	return nil, false
}
