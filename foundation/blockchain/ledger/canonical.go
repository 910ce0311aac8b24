package ledger

import "github.com/ardanlabs/anchorchain/foundation/blockchain/digest"

// PreimageVersion identifies the byte layout produced by Canonicalize. Any
// change to the layout changes every block digest and needs a new version.
const PreimageVersion byte = 0x01

// Parent presence markers.
const (
	noParent  byte = 0x00
	hasParent byte = 0x01
)

// Canonicalize produces the hash preimage for a block.
//
//	[0]      layout version (PreimageVersion)
//	[1]      parent marker, 0x00 none, 0x01 present
//	[2:34]   parent digest, only when the marker is 0x01
//	[..+32]  payload digest
func Canonicalize(prev *digest.Digest, payload digest.Digest) []byte {
	size := 2 + digest.Size
	if prev != nil {
		size += digest.Size
	}

	b := make([]byte, 0, size)
	b = append(b, PreimageVersion)

	switch prev {
	case nil:
		b = append(b, noParent)
	default:
		b = append(b, hasParent)
		b = append(b, prev[:]...)
	}

	return append(b, payload[:]...)
}
