package public

import (
	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
)

// NewAnchor is what a client sends to anchor a payload. A nil payload is
// rejected, an empty payload is allowed.
type NewAnchor struct {
	Payload *string `json:"payload" validate:"required"`
}

type anchored struct {
	Digest string `json:"digest"`
	Index  int    `json:"index"`
}

type validation struct {
	Status string `json:"status"`
	Blocks int    `json:"blocks"`
}

type block struct {
	Index   int    `json:"index"`
	Prev    string `json:"prev,omitempty"`
	Payload string `json:"payload"`
	Digest  string `json:"digest"`
	Size    int    `json:"size"`
}

type payload struct {
	Digest  string `json:"digest"`
	Payload string `json:"payload"`
}

func toBlock(index int, blk ledger.Block, size int) block {
	b := block{
		Index:   index,
		Payload: blk.PayloadDigest().String(),
		Digest:  blk.Digest().String(),
		Size:    size,
	}

	if prev, ok := blk.Prev(); ok {
		b.Prev = prev.String()
	}

	return b
}
