package ledger

import "github.com/ardanlabs/anchorchain/foundation/blockchain/digest"

// Validate walks the ledger from head to tail re-deriving every digest and
// checking every link. It stops at the first violation. An empty ledger is
// valid.
func (l *Ledger) Validate() error {
	return validate(l.blocks, l.store)
}

func validate(blocks []Block, store *Store) error {
	var expPrev *digest.Digest

	for i, block := range blocks {
		if err := checkParent(i, block, expPrev); err != nil {
			return err
		}

		if got := block.Hash(); got != block.digest {
			return &BlockError{Index: i, Err: ErrInvalidDigest, Got: block.digest.String(), Exp: got.String()}
		}

		if !store.Has(block.payload) {
			return &BlockError{Index: i, Err: ErrDanglingPayload, Got: block.payload.String()}
		}

		tip := block.digest
		expPrev = &tip
	}

	return nil
}

// checkParent verifies the block points at the expected parent.
func checkParent(index int, block Block, expPrev *digest.Digest) error {
	switch {
	case expPrev == nil && block.hasPrev:
		return &BlockError{Index: index, Err: ErrInvalidParentDigest, Got: block.prev.String(), Exp: "null"}

	case expPrev != nil && !block.hasPrev:
		return &BlockError{Index: index, Err: ErrInvalidParentDigest, Got: "null", Exp: expPrev.String()}

	case expPrev != nil && block.prev != *expPrev:
		return &BlockError{Index: index, Err: ErrInvalidParentDigest, Got: block.prev.String(), Exp: expPrev.String()}
	}

	return nil
}
