package lemondb

import (
	"context"
	"sort"

	"github.com/denismitr/lemon"
	"github.com/pkg/errors"

	"github.com/sitegauge/sitegauge/internal/core/domain"
	"github.com/sitegauge/sitegauge/internal/core/ports"
)

// Store implements ports.VerdictStore on a single-file lemon database.
// One JSON document per classified URL, keyed by the verdict cache key.
type Store struct {
	db     *lemon.DB
	closer lemon.Closer
}

func New(path string) (*Store, error) {
	db, closer, err := lemon.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open verdict store at %s", path)
	}
	return &Store{db: db, closer: closer}, nil
}

func (s *Store) Get(ctx context.Context, key string) (*domain.Classification, error) {
	var result domain.Classification

	err := s.db.View(ctx, func(tx *lemon.Tx) error {
		doc, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, lemon.ErrKeyDoesNotExist) {
				return ports.ErrVerdictNotFound
			}
			return err
		}
		return doc.JSON().Unmarshal(&result)
	})
	if err != nil {
		if errors.Is(err, ports.ErrVerdictNotFound) {
			return nil, ports.ErrVerdictNotFound
		}
		return nil, errors.Wrapf(err, "failed to read verdict %s", key)
	}

	return &result, nil
}

func (s *Store) Put(ctx context.Context, key string, c domain.Classification) error {
	err := s.db.Update(ctx, func(tx *lemon.Tx) error {
		return tx.InsertOrReplace(key, c)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to store verdict %s", key)
	}
	return nil
}

// Recent returns up to limit classifications, newest capture first.
// Keys are content hashes, so ordering happens on CapturedAt after the
// scan rather than on the key index.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Classification, error) {
	var docs []lemon.Document

	err := s.db.View(ctx, func(tx *lemon.Tx) error {
		found, err := tx.Find(nil)
		if err != nil {
			return err
		}
		docs = found
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan verdict store")
	}

	verdicts := make([]domain.Classification, 0, len(docs))
	for i := range docs {
		var c domain.Classification
		if err := docs[i].JSON().Unmarshal(&c); err != nil {
			return nil, errors.Wrapf(err, "corrupt verdict document %s", docs[i].Key())
		}
		verdicts = append(verdicts, c)
	}

	sort.Slice(verdicts, func(i, j int) bool {
		return verdicts[i].CapturedAt.After(verdicts[j].CapturedAt)
	})

	if limit > 0 && len(verdicts) > limit {
		verdicts = verdicts[:limit]
	}

	return verdicts, nil
}

func (s *Store) Close() error {
	return s.closer()
}
