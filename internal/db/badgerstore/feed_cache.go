// Package badgerstore stores materialized feed items in BadgerDB.
//
// Keys are namespaced per user and ordered by the item's creation time:
//
//	feed:<escaped user id>:<created at, fixed width UTC>:<feed id>
//
// so a prefix scan returns a user's cached feed oldest first.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"Subfeed/internal/core/feeds"
)

const feedKeyPrefix = "feed:"

// sortableTime keeps nanoseconds at fixed width so keys sort chronologically
const sortableTime = "2006-01-02T15:04:05.000000000Z"

// Open opens a BadgerDB instance for the feed cache. An empty path or
// inMemory=true opens a non-persistent store.
func Open(path string, inMemory bool) (*badger.DB, error) {
	var opts badger.Options
	if inMemory || path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.ValueLogFileSize = 64 << 20
	}
	opts.Logger = nil // Suppress BadgerDB internal logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for feed cache: %w", err)
	}
	return db, nil
}

// FeedCache implements feeds.Cache on BadgerDB
type FeedCache struct {
	db  *badger.DB
	ttl time.Duration
}

// NewFeedCache creates a feed cache over an open BadgerDB.
// A positive ttl expires entries that are not replaced by a later refresh.
func NewFeedCache(db *badger.DB, ttl time.Duration) *FeedCache {
	return &FeedCache{db: db, ttl: ttl}
}

// Clear removes every cached entry for the user
func (c *FeedCache) Clear(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := userPrefix(userID)
	var keys [][]byte

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("list feed entries: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("delete feed entry: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush feed deletes: %w", err)
	}
	return nil
}

// Put stores one entry, replacing any entry with the same key
func (c *FeedCache) Put(ctx context.Context, entry feeds.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.UserID == "" {
		return errors.New("cache entry requires a user id")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal feed entry: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(entryKey(entry), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set feed entry: %w", err)
		}
		return nil
	})
}

// Query returns the user's cached entries ordered by item creation time
func (c *FeedCache) Query(ctx context.Context, userID string) ([]feeds.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := userPrefix(userID)
	entries := []feeds.CacheEntry{}

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry feeds.CacheEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode feed entry %q: %w", it.Item().Key(), err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func userPrefix(userID string) []byte {
	return []byte(feedKeyPrefix + url.QueryEscape(userID) + ":")
}

func entryKey(entry feeds.CacheEntry) []byte {
	createdAt := entry.Item.CreatedAt.UTC().Format(sortableTime)
	return append(userPrefix(entry.UserID), createdAt+":"+entry.Item.FeedID...)
}
