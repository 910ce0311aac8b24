// Package ledger implements an append only sequence of blocks where each
// block is bound to its parent and to its payload by a BLAKE3 digest.
//
// A Ledger has no internal locking. Callers sharing a ledger between
// goroutines must serialize mutations, see the state package.
package ledger

import (
	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
)

// Ledger represents the ordered set of blocks and the payloads they record.
type Ledger struct {
	blocks []Block
	store  *Store
}

// New constructs an empty ledger.
func New() *Ledger {
	return &Ledger{
		store: NewStore(),
	}
}

// Anchor records the payload in the store and appends a new block linked
// to the current tail of the ledger. It returns the digest of the new block.
func (l *Ledger) Anchor(payload []byte) digest.Digest {
	payloadDigest, _ := l.store.Put(payload)

	var prev *digest.Digest
	if n := len(l.blocks); n > 0 {
		tip := l.blocks[n-1].digest
		prev = &tip
	}

	block := newBlock(prev, payloadDigest)
	l.blocks = append(l.blocks, block)

	return block.digest
}

// Len returns the number of blocks in the ledger.
func (l *Ledger) Len() int {
	return len(l.blocks)
}

// Blocks returns a copy of the blocks in ledger order.
func (l *Ledger) Blocks() []Block {
	blocks := make([]Block, len(l.blocks))
	copy(blocks, l.blocks)
	return blocks
}

// Block returns the block at the specified index.
func (l *Ledger) Block(index int) (Block, bool) {
	if index < 0 || index >= len(l.blocks) {
		return Block{}, false
	}
	return l.blocks[index], true
}

// Latest returns the tail block of the ledger. The boolean is false when
// the ledger is empty.
func (l *Ledger) Latest() (Block, bool) {
	return l.Block(len(l.blocks) - 1)
}

// Extends reports whether the ledger starts with every block of base. An
// empty base is extended by any ledger. Comparing the block at base's tip
// index is enough since each block digest commits to the chain before it.
func (l *Ledger) Extends(base *Ledger) bool {
	tip, ok := base.Latest()
	if !ok {
		return true
	}

	block, ok := l.Block(base.Len() - 1)
	if !ok {
		return false
	}

	return block.Digest() == tip.Digest()
}

// Payload returns a copy of the payload stored under the digest.
func (l *Ledger) Payload(d digest.Digest) ([]byte, bool) {
	return l.store.Get(d)
}

// Payloads returns the number of distinct payloads in the store.
func (l *Ledger) Payloads() int {
	return l.store.Len()
}

// PayloadDigests returns the digests of every stored payload.
func (l *Ledger) PayloadDigests() []digest.Digest {
	return l.store.Digests()
}
