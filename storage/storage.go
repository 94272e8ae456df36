package storage

import (
	"context"

	"github.com/casafx/madrates/storage/types"
)

// Storage is an abstraction over refresh snapshot data
type Storage interface {
	// SaveSnapshot saves the given refresh cycle snapshot
	SaveSnapshot(context.Context, *types.Snapshot) error

	// LatestSnapshot fetches the most recent snapshot, or nil when no
	// cycle has completed yet
	LatestSnapshot(context.Context) (*types.Snapshot, error)

	// ListSources lists all source names present in stored snapshots
	ListSources(context.Context) ([]string, error)
}
