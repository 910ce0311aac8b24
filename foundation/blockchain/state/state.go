// Package state is the core API for the node and guards the ledger so it
// can be shared by concurrent requests and the worker.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/peer"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for sharing the ledger with peers.
type Worker interface {
	Shutdown()
	SignalShareLedger()
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Host       string
	Storage    storage.Storage
	KnownPeers *peer.PeerSet
	Format     ledger.Format
	EvHandler  EventHandler
}

// State manages the ledger. Anchoring and replacing the ledger are done
// under the write lock, everything else under the read lock.
type State struct {
	mu sync.RWMutex

	host       string
	evHandler  EventHandler
	knownPeers *peer.PeerSet
	storage    storage.Storage
	format     ledger.Format
	ledger     *ledger.Ledger

	Worker Worker
}

// New constructs the state for the node. If the storage holds a snapshot it
// is decoded and validated before it's used.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Load the last snapshot. A snapshot that fails validation stops the
	// node from starting rather than serving a tampered ledger.
	l := ledger.New()
	if cfg.Storage != nil {
		snapshot, err := cfg.Storage.Read()
		switch {
		case errors.Is(err, storage.ErrNoSnapshot):
			ev("state: New: no snapshot, starting with an empty ledger")

		case err != nil:
			return nil, fmt.Errorf("reading snapshot: %w", err)

		default:
			format, err := ledger.ParseFormat(snapshot.Format)
			if err != nil {
				return nil, fmt.Errorf("snapshot format: %w", err)
			}

			l, err = ledger.DecodeFormat(snapshot.Document, format)
			if err != nil {
				return nil, fmt.Errorf("loading snapshot: %w", err)
			}
			ev("state: New: snapshot loaded: blocks[%d]: format[%s]: taken[%s]", l.Len(), format, snapshot.Taken.Format(time.RFC3339))
		}
	}

	state := State{
		host:       cfg.Host,
		evHandler:  ev,
		knownPeers: knownPeers,
		storage:    cfg.Storage,
		format:     cfg.Format,
		ledger:     l,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all ledger sharing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	if s.storage != nil {
		return s.storage.Close()
	}

	return nil
}

// =============================================================================

// writeSnapshot stores the current ledger in the configured format. It must
// be called while holding the write lock. Snapshots are best effort so
// failures are only reported.
func (s *State) writeSnapshot() {
	if s.storage == nil {
		return
	}

	doc, err := ledger.EncodeFormat(s.ledger, s.format)
	if err != nil {
		s.evHandler("state: writeSnapshot: ERROR: %s", err)
		return
	}

	snapshot := storage.Snapshot{
		Blocks:   s.ledger.Len(),
		Taken:    time.Now().UTC(),
		Format:   s.format.String(),
		Document: doc,
	}
	if latest, ok := s.ledger.Latest(); ok {
		snapshot.Tip = latest.Digest().String()
	}

	if err := s.storage.Write(snapshot); err != nil {
		s.evHandler("state: writeSnapshot: ERROR: %s", err)
		return
	}

	s.evHandler("state: writeSnapshot: blocks[%d]", snapshot.Blocks)
}

// signalShare asks the worker to share the ledger with peers.
func (s *State) signalShare() {
	if s.Worker != nil {
		s.Worker.SignalShareLedger()
	}
}
