package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/dcode-github/listing_analytics/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Tally counts the outcome of one sync run.
type Tally struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Errored int `json:"errored"`
}

type Options struct {
	// Concurrency bounds in-flight existence checks. Defaults to 8.
	Concurrency int
	Logger      *zerolog.Logger
}

// Synchronizer reconciles the record store into a mirror store.
type Synchronizer struct {
	source      Source
	store       Store
	concurrency int
	log         zerolog.Logger
}

func NewSynchronizer(source Source, store Store, opts Options) *Synchronizer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Synchronizer{
		source:      source,
		store:       store,
		concurrency: opts.Concurrency,
		log:         logger,
	}
}

// entry is one record read from the source, or the reason it could not be.
type entry struct {
	property models.Property
	err      error
}

type outcome struct {
	doc     *Document
	skipped bool
	err     error
}

// SyncAll streams every record, stages the ones missing from the mirror and
// commits them in chunks of at most Store.MaxBatch documents. Per-record
// failures are counted in Errored and do not stop the run. A failed commit
// stops the run and is returned as a *BatchCommitError; Synced then counts
// only documents that were committed.
func (s *Synchronizer) SyncAll(ctx context.Context) (Tally, error) {
	var (
		tally  Tally
		window []entry
		chunk  int
	)
	size := s.store.MaxBatch()
	if size <= 0 {
		size = DefaultBatchSize
	}

	flush := func() error {
		if len(window) == 0 {
			return nil
		}
		docs := s.stage(ctx, window, &tally)
		window = window[:0]
		if len(docs) == 0 {
			return nil
		}
		chunk++
		return s.commit(ctx, chunk, docs, &tally)
	}

	err := s.source.Each(ctx, func(p models.Property, readErr error) error {
		window = append(window, entry{property: p, err: readErr})
		if len(window) < size {
			return nil
		}
		return flush()
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		var commitErr *BatchCommitError
		if !errors.As(err, &commitErr) {
			err = fmt.Errorf("mirror: read records: %w", err)
		}
		s.log.Error().Err(err).
			Int("synced", tally.Synced).
			Int("skipped", tally.Skipped).
			Int("errored", tally.Errored).
			Msg("Mirror sync aborted")
		return tally, err
	}

	s.log.Info().
		Int("synced", tally.Synced).
		Int("skipped", tally.Skipped).
		Int("errored", tally.Errored).
		Msg("Mirror sync summary")
	return tally, nil
}

// stage checks mirror existence for every record of the window concurrently
// and returns the documents to write.
func (s *Synchronizer) stage(ctx context.Context, window []entry, tally *Tally) []Document {
	results := make([]outcome, len(window))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, e := range window {
		if e.err != nil {
			results[i] = outcome{err: fmt.Errorf("read record: %w", e.err)}
			continue
		}
		doc, err := NewDocument(e.property)
		if err != nil {
			results[i] = outcome{err: err}
			continue
		}
		g.Go(func() error {
			exists, err := s.store.Exists(gctx, doc.Key)
			switch {
			case err != nil:
				results[i] = outcome{err: fmt.Errorf("check %s: %w", doc.Key, err)}
			case exists:
				results[i] = outcome{skipped: true}
			default:
				results[i] = outcome{doc: &doc}
			}
			return nil
		})
	}
	_ = g.Wait()

	var docs []Document
	for i, r := range results {
		switch {
		case r.err != nil:
			tally.Errored++
			s.log.Warn().Err(r.err).
				Str("propertyId", window[i].property.PropertyID).
				Str("id", window[i].property.ID.Hex()).
				Msg("Error processing property")
		case r.skipped:
			tally.Skipped++
			s.log.Debug().Str("propertyId", window[i].property.PropertyID).Msg("Property already mirrored")
		default:
			s.log.Debug().Str("propertyId", r.doc.Key).Msg("Syncing property")
			docs = append(docs, *r.doc)
		}
	}
	return docs
}

func (s *Synchronizer) commit(ctx context.Context, chunk int, docs []Document, tally *Tally) error {
	err := s.store.Commit(ctx, docs)
	if err == nil {
		tally.Synced += len(docs)
		return nil
	}

	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.Key
	}
	var partial *PartialCommitError
	if errors.As(err, &partial) {
		tally.Synced += len(docs) - len(partial.Failed)
		keys = partial.Failed
	}
	return &BatchCommitError{Chunk: chunk, Keys: keys, Uncommitted: len(keys), Err: err}
}
