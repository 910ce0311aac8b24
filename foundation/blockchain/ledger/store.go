package ledger

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
)

// Store is a content addressed set of payloads keyed by their digest.
type Store struct {
	data map[digest.Digest][]byte
}

// NewStore constructs an empty payload store.
func NewStore() *Store {
	return &Store{
		data: make(map[digest.Digest][]byte),
	}
}

// Put stores the payload under its digest. Storing content that is already
// present is a no-op and reports false.
func (s *Store) Put(payload []byte) (digest.Digest, bool) {
	d := digest.Sum(payload)
	if _, exists := s.data[d]; exists {
		return d, false
	}

	s.data[d] = bytes.Clone(payload)
	return d, true
}

// Get returns a copy of the payload stored under the digest.
func (s *Store) Get(d digest.Digest) ([]byte, bool) {
	payload, exists := s.data[d]
	if !exists {
		return nil, false
	}
	return bytes.Clone(payload), true
}

// Has reports whether a payload exists for the digest.
func (s *Store) Has(d digest.Digest) bool {
	_, exists := s.data[d]
	return exists
}

// Len returns the number of distinct payloads.
func (s *Store) Len() int {
	return len(s.data)
}

// Digests returns the stored digests sorted by their text form.
func (s *Store) Digests() []digest.Digest {
	ds := make([]digest.Digest, 0, len(s.data))
	for d := range s.data {
		ds = append(ds, d)
	}

	sort.Slice(ds, func(i, j int) bool {
		return ds[i].String() < ds[j].String()
	})

	return ds
}

// put stores content under an already known key. It's used when a ledger
// is reconstructed from a document and the key is checked afterwards.
func (s *Store) put(d digest.Digest, payload []byte) {
	s.data[d] = bytes.Clone(payload)
}

// verify checks every payload hashes to the key it is stored under.
func (s *Store) verify() error {
	for _, d := range s.Digests() {
		if got := digest.Sum(s.data[d]); got != d {
			return fmt.Errorf("data[%s]: %w, got %s", d, ErrPayloadMismatch, got)
		}
	}
	return nil
}
