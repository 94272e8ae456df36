package ingest

import (
	"context"

	"github.com/casafx/madrates/storage/types"
)

type refreshDelegate func(context.Context) ([]*types.SourceRateSet, error)

type mockAggregator struct {
	refreshFn refreshDelegate
}

func (m *mockAggregator) Refresh(ctx context.Context) ([]*types.SourceRateSet, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx)
	}

	return nil, nil
}
