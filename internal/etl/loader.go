// Cinedex - Film Catalog Search Index Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinedex

package etl

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinedex/internal/logging"
	"github.com/tomtom215/cinedex/internal/models"
	"github.com/tomtom215/cinedex/internal/retry"
	"github.com/tomtom215/cinedex/internal/search"
)

// Loader bulk-writes one page of documents to the index. Transport failures
// and 5xx responses retry under the HTTP policy; a 4xx rejection aborts
// immediately since resending the same payload cannot succeed. Item-level
// errors are already logged and absorbed by the client.
type Loader struct {
	indexer    Indexer
	httpPolicy retry.Policy
}

// NewLoader creates the sink stage.
func NewLoader(indexer Indexer, opts Options) *Loader {
	return &Loader{
		indexer:    indexer,
		httpPolicy: opts.HTTPPolicy,
	}
}

// Load delivers docs to the index, returning once the bulk request was
// accepted.
func (l *Loader) Load(ctx context.Context, docs []*models.FilmDocument) error {
	if len(docs) == 0 {
		return nil
	}

	result, err := retry.DoValue(ctx, "bulk_index", l.httpPolicy, func() (*search.BulkResult, error) {
		res, err := l.indexer.BulkIndex(ctx, docs)
		if err != nil && !search.IsRetryable(err) {
			return nil, retry.Permanent(err)
		}
		return res, err
	})
	if err != nil {
		return fmt.Errorf("failed to load %d documents: %w", len(docs), err)
	}

	if result.ItemErrors > 0 {
		logging.Warn().
			Int("documents", result.Documents).
			Int("item_errors", result.ItemErrors).
			Msg("Bulk load finished with rejected documents")
	}
	return nil
}
