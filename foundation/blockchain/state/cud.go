package state

import (
	"fmt"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/peer"
)

// Anchor appends a new block recording the payload and returns the block
// and its index in the ledger.
func (s *State) Anchor(payload []byte) (ledger.Block, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ledger.Anchor(payload)
	index := s.ledger.Len() - 1
	block, _ := s.ledger.Block(index)

	s.evHandler("state: Anchor: blk[%d]: digest[%s]: payload[%s]", index, d.Hex(), block.PayloadDigest().Hex())

	s.writeSnapshot()
	s.signalShare()

	return block, index
}

// SubmitLedger decodes a document received from a peer and, if it's valid
// and extends the local ledger, replaces the local ledger with it. It
// reports whether the ledger changed. A ledger that is shorter than the
// local one or forks from it fails with ledger.ErrConflict. The document
// is decoded and validated before the lock is taken.
func (s *State) SubmitLedger(doc []byte) (bool, error) {
	s.evHandler("state: SubmitLedger: started")
	defer s.evHandler("state: SubmitLedger: completed")

	l, err := ledger.Decode(doc)
	if err != nil {
		s.evHandler("state: SubmitLedger: rejected: %s", err)
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sameTip(s.ledger, l) {
		s.evHandler("state: SubmitLedger: ledger unchanged: blocks[%d]", l.Len())
		return false, nil
	}

	if !l.Extends(s.ledger) {
		s.evHandler("state: SubmitLedger: rejected: local blocks[%d]: received blocks[%d]: %s", s.ledger.Len(), l.Len(), ledger.ErrConflict)
		return false, fmt.Errorf("received blocks[%d], local blocks[%d]: %w", l.Len(), s.ledger.Len(), ledger.ErrConflict)
	}

	s.ledger = l
	s.evHandler("state: SubmitLedger: ledger replaced: blocks[%d]", l.Len())

	s.writeSnapshot()

	return true, nil
}

// Reset drops the ledger and the stored snapshot.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger = ledger.New()
	s.evHandler("state: Reset: ledger dropped")

	if s.storage != nil {
		return s.storage.Reset()
	}

	return nil
}

// AddKnownPeer provides the ability to add a new peer.
func (s *State) AddKnownPeer(peer peer.Peer) bool {
	return s.knownPeers.Add(peer)
}

// RemoveKnownPeer provides the ability to remove a peer.
func (s *State) RemoveKnownPeer(peer peer.Peer) {
	s.knownPeers.Remove(peer)
}

// =============================================================================

// sameTip reports whether two ledgers end with the same block. Since every
// block digest commits to the whole chain before it, equal tips mean equal
// ledgers.
func sameTip(a, b *ledger.Ledger) bool {
	ta, okA := a.Latest()
	tb, okB := b.Latest()

	if !okA || !okB {
		return okA == okB
	}

	return ta.Digest() == tb.Digest()
}
