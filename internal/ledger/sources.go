package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dvloznov/spendsense/internal/gcs"
)

// MemorySource serves users out of one snapshot held in memory.
type MemorySource struct {
	snap Snapshot
}

func NewMemorySource(snap Snapshot) *MemorySource {
	return &MemorySource{snap: snap}
}

// OpenFile decodes a JSON snapshot file covering any number of users.
func OpenFile(path string) (*MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("OpenFile: %w", err)
	}
	defer f.Close()

	snap, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("OpenFile: %s: %w", path, err)
	}
	return NewMemorySource(snap), nil
}

func (m *MemorySource) Load(_ context.Context, userID string) (Snapshot, error) {
	return m.snap.ForUser(userID)
}

// GCSSource reads one snapshot object per user, named <prefix>/<userID>.json.
type GCSSource struct {
	store  gcs.ObjectStore
	prefix string
}

func NewGCSSource(store gcs.ObjectStore, prefix string) *GCSSource {
	return &GCSSource{store: store, prefix: prefix}
}

// ObjectURI is where the snapshot of userID is stored.
func (g *GCSSource) ObjectURI(userID string) string {
	return gcs.JoinURI(g.prefix, userID+".json")
}

func (g *GCSSource) Load(ctx context.Context, userID string) (Snapshot, error) {
	uri := g.ObjectURI(userID)
	data, err := g.store.Read(ctx, uri)
	if errors.Is(err, gcs.ErrObjectNotFound) {
		return Snapshot{}, fmt.Errorf("Load: %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("Load: %w", err)
	}

	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("Load: %s: %w", uri, err)
	}
	return snap.ForUser(userID)
}
