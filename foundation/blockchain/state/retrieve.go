package state

import (
	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveBlocks returns a copy of the blocks in ledger order.
func (s *State) RetrieveBlocks() []ledger.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Blocks()
}

// RetrieveLatestBlock returns the tail block of the ledger.
func (s *State) RetrieveLatestBlock() (ledger.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Latest()
}

// RetrievePayload returns a copy of the payload stored under the digest.
func (s *State) RetrievePayload(d digest.Digest) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Payload(d)
}

// RetrieveStatus returns the status of this node for peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := peer.PeerStatus{
		Blocks:     s.ledger.Len(),
		KnownPeers: s.knownPeers.Copy(""),
	}

	if latest, ok := s.ledger.Latest(); ok {
		status.LatestDigest = latest.Digest().String()
	}

	return status
}

// Validate re-derives every digest in the ledger.
func (s *State) Validate() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ledger.Len(), s.ledger.Validate()
}

// Encode converts the ledger into a document of the specified format.
func (s *State) Encode(format ledger.Format) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ledger.EncodeFormat(s.ledger, format)
}
