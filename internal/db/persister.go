package db

import "context"

type snapshotBackend interface {
	SaveSnapshot(ctx context.Context, key string, data []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}

// SnapshotPersister stores one snapshot row. It satisfies store.Persister.
type SnapshotPersister struct {
	backend snapshotBackend
	key     string
}

// Save replaces the stored snapshot.
func (p *SnapshotPersister) Save(ctx context.Context, data []byte) error {
	return p.backend.SaveSnapshot(ctx, p.key, data)
}

// Load returns the stored snapshot, or nil when none exists.
func (p *SnapshotPersister) Load(ctx context.Context) ([]byte, error) {
	return p.backend.LoadSnapshot(ctx, p.key)
}
