package ledger

import "github.com/ardanlabs/anchorchain/foundation/blockchain/digest"

// HashBlock returns the digest for a block with the specified parent and
// payload digest. A nil parent is used for the first block of a ledger.
func HashBlock(prev *digest.Digest, payload digest.Digest) digest.Digest {
	return digest.Sum(Canonicalize(prev, payload))
}

// =============================================================================

// Block is one entry in the ledger. Blocks are values and can't be changed
// once they are part of a ledger.
type Block struct {
	prev    digest.Digest
	hasPrev bool
	payload digest.Digest
	digest  digest.Digest
}

// newBlock constructs a block linked to prev and derives its digest.
func newBlock(prev *digest.Digest, payload digest.Digest) Block {
	b := Block{
		payload: payload,
		digest:  HashBlock(prev, payload),
	}

	if prev != nil {
		b.prev = *prev
		b.hasPrev = true
	}

	return b
}

// Prev returns the digest of the parent block. The boolean is false for
// the first block in the ledger.
func (b Block) Prev() (digest.Digest, bool) {
	return b.prev, b.hasPrev
}

// PayloadDigest returns the digest of the payload recorded by this block.
func (b Block) PayloadDigest() digest.Digest {
	return b.payload
}

// Digest returns the digest of the block.
func (b Block) Digest() digest.Digest {
	return b.digest
}

// Hash recomputes the digest of the block from its parent and payload.
func (b Block) Hash() digest.Digest {
	return HashBlock(b.parent(), b.payload)
}

// parent returns the parent as a pointer, nil when there is none. The
// returned pointer refers to a copy.
func (b Block) parent() *digest.Digest {
	if !b.hasPrev {
		return nil
	}
	prev := b.prev
	return &prev
}
