// Package digest provides the fixed size hash value used to identify
// payloads and link blocks together.
package digest

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"lukechampine.com/blake3"
)

// Size is the number of bytes in a digest.
const Size = 32

// ErrDecode is returned when a value can't be turned into a digest.
var ErrDecode = errors.New("decode error")

// encoding is the canonical text form. Strict mode rejects non-zero padding
// bits. It still skips CR and LF, so Parse also compares against the
// re-encoded text.
var encoding = base64.StdEncoding.Strict()

// =============================================================================

// Digest represents a 32 byte BLAKE3 hash.
type Digest [Size]byte

// Sum returns the digest of the specified data.
func Sum(data []byte) Digest {
	return blake3.Sum256(data)
}

// FromBytes constructs a digest from a slice that must be exactly Size bytes.
func FromBytes(b []byte) (Digest, error) {
	if len(b) != Size {
		return Digest{}, fmt.Errorf("%w: digest length %d, exp %d", ErrDecode, len(b), Size)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}

// Parse decodes the canonical base64 text form of a digest. Every digest
// has exactly one accepted text form.
func Parse(s string) (Digest, error) {
	b, err := encoding.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %q: %v", ErrDecode, s, err)
	}

	d, err := FromBytes(b)
	if err != nil {
		return Digest{}, err
	}

	if d.String() != s {
		return Digest{}, fmt.Errorf("%w: %q: not in canonical form", ErrDecode, s)
	}

	return d, nil
}

// String returns the canonical base64 text form of the digest.
func (d Digest) String() string {
	return encoding.EncodeToString(d[:])
}

// Hex returns the digest as a 0x prefixed hex string. This form is only
// used for display in logs and events.
func (d Digest) Hex() string {
	return hexutil.Encode(d[:])
}

// Short returns the first characters of the text form for log lines.
func (d Digest) Short() string {
	return d.String()[:8]
}

// MarshalText implements the encoding.TextMarshaler interface.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}
