// Package cache stores parsed workbook sheets between runs so repeated
// reports over unchanged inputs skip spreadsheet decoding.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/penwyp/UsagePivot/logging"
)

// StoreConfig configures the sheet store
type StoreConfig struct {
	Dir            string        `json:"dir"`
	InMemory       bool          `json:"in_memory"`
	TTL            time.Duration `json:"ttl"`
	GCInterval     time.Duration `json:"gc_interval"`
	GCDiscardRatio float64       `json:"gc_discard_ratio"`
	Compress       bool          `json:"compress"`
}

// DefaultDir returns the on-disk location used when none is configured
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "usagepivot", "sheets"), nil
}

// SheetStore is a badger-backed map from sheet fingerprints to cell grids
type SheetStore struct {
	db     *badger.DB
	config StoreConfig
	codec  Serializer
	mu     sync.RWMutex
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// Open opens or creates a sheet store
func Open(config StoreConfig) (*SheetStore, error) {
	if config.TTL <= 0 {
		config.TTL = 7 * 24 * time.Hour
	}
	if config.GCInterval <= 0 {
		config.GCInterval = 10 * time.Minute
	}
	if config.GCDiscardRatio <= 0 {
		config.GCDiscardRatio = 0.5
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if config.Dir == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			config.Dir = dir
		}
		if err := os.MkdirAll(config.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(config.Dir).
			WithValueLogFileSize(64 << 20).
			WithNumMemtables(2)
	}
	opts = opts.WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet cache: %w", err)
	}

	var codec Serializer = NewSonicSerializer()
	if config.Compress {
		codec = NewCompressedSerializer(codec, 0)
	}

	s := &SheetStore{
		db:     db,
		config: config,
		codec:  codec,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if config.InMemory {
		close(s.done)
	} else {
		go s.gcLoop()
	}
	return s, nil
}

// Get returns the cached rows for key
func (s *SheetStore) Get(key string) ([][]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false
	}

	var rows [][]string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.codec.Deserialize(val, &rows)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			logging.LogWarnf("sheet cache read failed for %s: %v", key, err)
		}
		return nil, false
	}
	return rows, true
}

// Put stores rows under key with the configured TTL
func (s *SheetStore) Put(key string, rows [][]string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("sheet cache is closed")
	}

	data, err := s.codec.Serialize(rows)
	if err != nil {
		return fmt.Errorf("failed to encode sheet: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), data).WithTTL(s.config.TTL))
	})
}

// Len counts the stored sheets
func (s *SheetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}

	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Clear drops every entry
func (s *SheetStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("sheet cache is closed")
	}
	return s.db.DropAll()
}

// Close stops background GC and closes the database
func (s *SheetStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if !s.config.InMemory {
		close(s.stop)
	}
	<-s.done
	return s.db.Close()
}

func (s *SheetStore) gcLoop() {
	defer close(s.done)
	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.db.RunValueLogGC(s.config.GCDiscardRatio); err != nil && err != badger.ErrNoRewrite {
				logging.LogDebugf("sheet cache gc: %v", err)
			}
		}
	}
}

// badgerLogger routes badger output through the process logger
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.LogErrorf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.LogWarnf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.LogDebugf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.LogDebugf("badger: "+format, args...)
}
