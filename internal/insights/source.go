package insights

import (
	"context"
	"fmt"

	"github.com/dvloznov/spendsense/internal/config"
	"github.com/dvloznov/spendsense/internal/gcs"
	infraBQ "github.com/dvloznov/spendsense/internal/infra/bigquery"
	"github.com/dvloznov/spendsense/internal/ledger"
)

// OpenSource opens the ledger source selected by cfg. store is required for
// the gcs source only. The returned close function is never nil.
func OpenSource(ctx context.Context, cfg config.LedgerConfig, store gcs.ObjectStore) (ledger.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceFile:
		src, err := ledger.OpenFile(cfg.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenSource: %w", err)
		}
		return src, noop, nil
	case config.SourceGCS:
		if store == nil {
			return nil, noop, fmt.Errorf("OpenSource: gcs source needs an object store")
		}
		return ledger.NewGCSSource(store, cfg.GCSPrefix), noop, nil
	case config.SourceBigQuery:
		repo, err := infraBQ.NewLedgerRepository(ctx, cfg.Project, cfg.Dataset)
		if err != nil {
			return nil, noop, fmt.Errorf("OpenSource: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, noop, fmt.Errorf("OpenSource: unknown ledger source %q", cfg.Source)
	}
}
