// Package storage defines the support for keeping snapshots of an encoded
// ledger between runs of a node. Snapshots are best effort. There is no
// fsync or write ahead log, a lost snapshot is recovered from peers.
package storage

import (
	"errors"
	"time"
)

// ErrNoSnapshot is returned by Read when nothing has been written yet.
var ErrNoSnapshot = errors.New("no snapshot")

// Snapshot is an encoded ledger plus information about it that can be read
// without decoding the document. Format names the document format the
// ledger was encoded with, an empty Format is the store format.
type Snapshot struct {
	Blocks   int       `json:"blocks"`
	Tip      string    `json:"tip"`
	Taken    time.Time `json:"taken"`
	Format   string    `json:"format"`
	Document []byte    `json:"document"`
}

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading ledger snapshots.
type Storage interface {
	Write(snapshot Snapshot) error
	Read() (Snapshot, error)
	Reset() error
	Close() error
}
