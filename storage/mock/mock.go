package mock

import (
	"context"

	"github.com/casafx/madrates/storage/types"
)

type (
	SaveSnapshotDelegate   func(context.Context, *types.Snapshot) error
	LatestSnapshotDelegate func(context.Context) (*types.Snapshot, error)
	ListSourcesDelegate    func(context.Context) ([]string, error)
)

type Storage struct {
	SaveSnapshotFn   SaveSnapshotDelegate
	LatestSnapshotFn LatestSnapshotDelegate
	ListSourcesFn    ListSourcesDelegate
}

func (m *Storage) SaveSnapshot(ctx context.Context, snapshot *types.Snapshot) error {
	if m.SaveSnapshotFn != nil {
		return m.SaveSnapshotFn(ctx, snapshot)
	}

	return nil
}

func (m *Storage) LatestSnapshot(ctx context.Context) (*types.Snapshot, error) {
	if m.LatestSnapshotFn != nil {
		return m.LatestSnapshotFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListSources(ctx context.Context) ([]string, error) {
	if m.ListSourcesFn != nil {
		return m.ListSourcesFn(ctx)
	}

	return nil, nil
}
