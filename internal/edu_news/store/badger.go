package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"

	"edu-news/internal/edu_news/model"

	"github.com/dgraph-io/badger/v4"
)

const (
	rawPrefix     = "raw:"
	urlPrefix     = "url:"
	logPrefix     = "log:"
	feynmanPrefix = "feynman:"
	derivedPrefix = "feynman-raw:" // raw id -> feynman id
)

// BadgerStore keeps everything in an embedded badger database.
// A batch insert is a single transaction.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens the database at path. An empty path runs in memory.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) ExistsByURL(_ context.Context, url string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(urlPrefix + url))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *BadgerStore) InsertRawNews(_ context.Context, articles []model.RawNews) (int, error) {
	inserted := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, a := range articles {
			taken, err := anyExists(txn, rawPrefix+a.ID, urlPrefix+a.URL)
			if err != nil {
				return err
			}
			if taken {
				continue
			}
			data, err := json.Marshal(a)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(rawPrefix+a.ID), data); err != nil {
				return err
			}
			if err := txn.Set([]byte(urlPrefix+a.URL), []byte(a.ID)); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert raw news: %w", err)
	}
	return inserted, nil
}

func anyExists(txn *badger.Txn, keys ...string) (bool, error) {
	for _, k := range keys {
		_, err := txn.Get([]byte(k))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return false, err
		}
	}
	return false, nil
}

func (s *BadgerStore) AppendCrawlLog(_ context.Context, log model.CrawlLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	// zero-padded nanos keep keys in time order
	key := fmt.Sprintf("%s%020d:%s", logPrefix, log.CrawledAt.UnixNano(), log.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *BadgerStore) TodayNews(_ context.Context, q model.NewsQuery) ([]model.RawNews, error) {
	out := []model.RawNews{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, rawPrefix, false, func(val []byte) (bool, error) {
			var n model.RawNews
			if err := json.Unmarshal(val, &n); err != nil {
				return false, err
			}
			if n.CrawledAt.Before(q.Since) {
				return true, nil
			}
			if (q.Category != "" && n.Category != q.Category) ||
				(q.Country != "" && n.Country != q.Country) ||
				(q.Status != "" && n.Status != q.Status) {
				return true, nil
			}
			out = append(out, n)
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CrawledAt.After(out[j].CrawledAt) })
	if limit := queryLimit(q.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *BadgerStore) GetRawNews(_ context.Context, id string) (*model.RawNews, error) {
	var n model.RawNews
	if err := s.getJSON(rawPrefix+id, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *BadgerStore) UpdateStatus(_ context.Context, id string, to model.Status, from ...model.Status) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(rawPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var n model.RawNews
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &n) }); err != nil {
			return err
		}
		if len(from) > 0 && !slices.Contains(from, n.Status) {
			return fmt.Errorf("raw news %s is %s: %w", id, n.Status, ErrConflict)
		}
		n.Status = to
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		return txn.Set([]byte(rawPrefix+id), data)
	})
}

func (s *BadgerStore) ListCrawlLogs(_ context.Context, limit int) ([]model.CrawlLog, error) {
	limit = queryLimit(limit)
	out := []model.CrawlLog{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, logPrefix, true, func(val []byte) (bool, error) {
			var l model.CrawlLog
			if err := json.Unmarshal(val, &l); err != nil {
				return false, err
			}
			out = append(out, l)
			return len(out) < limit, nil
		})
	})
	return out, err
}

func (s *BadgerStore) SaveFeynman(_ context.Context, a model.FeynmanArticle) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		taken, err := anyExists(txn, derivedPrefix+a.RawNewsID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("raw news %s already has an article: %w", a.RawNewsID, ErrConflict)
		}
		if err := txn.Set([]byte(feynmanPrefix+a.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(derivedPrefix+a.RawNewsID), []byte(a.ID))
	})
}

func (s *BadgerStore) GetFeynman(_ context.Context, id string) (*model.FeynmanArticle, error) {
	var a model.FeynmanArticle
	if err := s.getJSON(feynmanPrefix+id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *BadgerStore) FeynmanByRawNews(_ context.Context, rawID string) (*model.FeynmanArticle, error) {
	var a model.FeynmanArticle
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(derivedPrefix + rawID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get([]byte(feynmanPrefix + string(id)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error { return json.Unmarshal(val, &a) })
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *BadgerStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *BadgerStore) getJSON(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// scanPrefix calls fn for each value under prefix until fn returns false.
func scanPrefix(txn *badger.Txn, prefix string, reverse bool, fn func(val []byte) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	seek := []byte(prefix)
	if reverse {
		// reverse iteration starts at the last key <= seek
		seek = append([]byte(prefix), 0xFF)
	}
	for it.Seek(seek); it.ValidForPrefix([]byte(prefix)); it.Next() {
		var more bool
		err := it.Item().Value(func(val []byte) error {
			var err error
			more, err = fn(val)
			return err
		})
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
