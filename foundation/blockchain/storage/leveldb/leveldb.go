// Package leveldb implements snapshot storage on top of LevelDB.
package leveldb

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
	"github.com/syndtr/goleveldb/leveldb"
)

// Set of keys used to store a snapshot.
var (
	keyDocument = []byte("snapshot")
	keyBlocks   = []byte("meta_blocks")
	keyTip      = []byte("meta_tip")
	keyTaken    = []byte("meta_taken")
	keyFormat   = []byte("meta_format")
)

// LevelDB represents the storage implementation for keeping the snapshot in
// a LevelDB database. This implements the storage.Storage interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// Close closes the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write stores the document and its meta data in a single batch.
func (l *LevelDB) Write(snapshot storage.Snapshot) error {
	batch := new(leveldb.Batch)
	batch.Put(keyDocument, snapshot.Document)
	batch.Put(keyBlocks, []byte(strconv.Itoa(snapshot.Blocks)))
	batch.Put(keyTip, []byte(snapshot.Tip))
	batch.Put(keyTaken, []byte(snapshot.Taken.UTC().Format(time.RFC3339Nano)))
	batch.Put(keyFormat, []byte(snapshot.Format))

	return l.db.Write(batch, nil)
}

// Read returns the stored snapshot.
func (l *LevelDB) Read() (storage.Snapshot, error) {
	doc, err := l.db.Get(keyDocument, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return storage.Snapshot{}, storage.ErrNoSnapshot
		}
		return storage.Snapshot{}, err
	}

	snapshot := storage.Snapshot{
		Document: doc,
	}

	if v, err := l.db.Get(keyBlocks, nil); err == nil {
		snapshot.Blocks, _ = strconv.Atoi(string(v))
	}

	if v, err := l.db.Get(keyTip, nil); err == nil {
		snapshot.Tip = string(v)
	}

	if v, err := l.db.Get(keyTaken, nil); err == nil {
		snapshot.Taken, _ = time.Parse(time.RFC3339Nano, string(v))
	}

	if v, err := l.db.Get(keyFormat, nil); err == nil {
		snapshot.Format = string(v)
	}

	return snapshot, nil
}

// Reset removes the stored snapshot.
func (l *LevelDB) Reset() error {
	batch := new(leveldb.Batch)
	batch.Delete(keyDocument)
	batch.Delete(keyBlocks)
	batch.Delete(keyTip)
	batch.Delete(keyTaken)
	batch.Delete(keyFormat)

	return l.db.Write(batch, nil)
}
