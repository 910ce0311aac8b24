package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
)

// Format identifies the document layout used to transport a ledger.
type Format int

// Set of supported document formats. FormatStore is the primary format and
// keeps one copy of each distinct payload. FormatInline carries the payload
// content inside each block entry.
const (
	FormatStore Format = iota
	FormatInline
)

// String implements the fmt.Stringer interface.
func (f Format) String() string {
	switch f {
	case FormatStore:
		return "store"
	case FormatInline:
		return "inline"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat converts a format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "store":
		return FormatStore, nil
	case "inline":
		return FormatInline, nil
	}
	return 0, fmt.Errorf("unknown format %q", name)
}

// =============================================================================

// blockDoc is a block entry in either document format. In the store format
// Payload is the payload digest, in the inline format it's the content.
type blockDoc struct {
	Prev    *string `json:"prev"`
	Payload string  `json:"payload"`
	Digest  string  `json:"digest"`
}

type storeDoc struct {
	Blocks []blockDoc        `json:"blocks"`
	Data   map[string]string `json:"data"`
}

type inlineDoc struct {
	Blocks []blockDoc `json:"blocks"`
}

// Encode converts the ledger into a store indexed document.
func Encode(l *Ledger) ([]byte, error) {
	return EncodeFormat(l, FormatStore)
}

// EncodeFormat converts the ledger into a document of the specified format.
func EncodeFormat(l *Ledger, format Format) ([]byte, error) {
	switch format {
	case FormatStore:
		doc := storeDoc{
			Blocks: make([]blockDoc, len(l.blocks)),
			Data:   make(map[string]string, l.store.Len()),
		}

		for i, block := range l.blocks {
			doc.Blocks[i] = newBlockDoc(block, block.payload.String())
		}

		for _, d := range l.store.Digests() {
			content, err := payloadText(d, l.store.data[d])
			if err != nil {
				return nil, err
			}
			doc.Data[d.String()] = content
		}

		return json.Marshal(doc)

	case FormatInline:
		doc := inlineDoc{
			Blocks: make([]blockDoc, len(l.blocks)),
		}

		for i, block := range l.blocks {
			content, err := payloadText(block.payload, l.store.data[block.payload])
			if err != nil {
				return nil, err
			}
			doc.Blocks[i] = newBlockDoc(block, content)
		}

		return json.Marshal(doc)
	}

	return nil, fmt.Errorf("encode: unknown format %s", format)
}

func newBlockDoc(block Block, payload string) blockDoc {
	bd := blockDoc{
		Payload: payload,
		Digest:  block.digest.String(),
	}

	if block.hasPrev {
		prev := block.prev.String()
		bd.Prev = &prev
	}

	return bd
}

func payloadText(d digest.Digest, payload []byte) (string, error) {
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("payload %s: %w", d, ErrPayloadEncoding)
	}
	return string(payload), nil
}

// =============================================================================

// rawBlock captures a block entry so missing fields can be told apart
// from a null parent.
type rawBlock struct {
	Prev    json.RawMessage `json:"prev"`
	Payload *string         `json:"payload"`
	Digest  *string         `json:"digest"`
}

type rawDoc struct {
	Blocks *[]rawBlock        `json:"blocks"`
	Data   *map[string]string `json:"data"`
}

// Decode reconstructs a ledger from a store indexed document. The ledger is
// validated before it's returned.
func Decode(data []byte) (*Ledger, error) {
	return DecodeFormat(data, FormatStore)
}

// DecodeFormat reconstructs a ledger from a document of the specified
// format. Nothing is returned unless the whole document decodes and the
// resulting ledger passes validation.
func DecodeFormat(data []byte, format Format) (*Ledger, error) {
	var doc rawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if doc.Blocks == nil {
		return nil, fmt.Errorf("%w: missing field blocks", ErrDecode)
	}

	store := NewStore()

	switch format {
	case FormatStore:
		if doc.Data == nil {
			return nil, fmt.Errorf("%w: missing field data", ErrDecode)
		}

		for key, content := range *doc.Data {
			d, err := digest.Parse(key)
			if err != nil {
				return nil, fmt.Errorf("data key: %w", err)
			}
			if store.Has(d) {
				return nil, fmt.Errorf("%w: data key %s: duplicate digest", ErrDecode, d)
			}
			store.put(d, []byte(content))
		}

	case FormatInline:
		// Payloads are stored as each block entry is converted.

	default:
		return nil, fmt.Errorf("decode: unknown format %s", format)
	}

	blocks := make([]Block, len(*doc.Blocks))
	for i, rb := range *doc.Blocks {
		block, err := toBlock(rb, format, store)
		if err != nil {
			return nil, fmt.Errorf("blocks[%d]: %w", i, err)
		}
		blocks[i] = block
	}

	if err := validate(blocks, store); err != nil {
		return nil, err
	}

	if err := store.verify(); err != nil {
		return nil, err
	}

	l := Ledger{
		blocks: blocks,
		store:  store,
	}

	return &l, nil
}

// toBlock converts a block entry into a block, keeping the digest recorded
// in the document so validation can compare it.
func toBlock(rb rawBlock, format Format, store *Store) (Block, error) {
	if rb.Prev == nil {
		return Block{}, fmt.Errorf("%w: missing field prev", ErrDecode)
	}
	if rb.Payload == nil {
		return Block{}, fmt.Errorf("%w: missing field payload", ErrDecode)
	}
	if rb.Digest == nil {
		return Block{}, fmt.Errorf("%w: missing field digest", ErrDecode)
	}

	var block Block

	if string(rb.Prev) != "null" {
		var prevText string
		if err := json.Unmarshal(rb.Prev, &prevText); err != nil {
			return Block{}, fmt.Errorf("%w: prev: %v", ErrDecode, err)
		}

		prev, err := digest.Parse(prevText)
		if err != nil {
			return Block{}, fmt.Errorf("prev: %w", err)
		}

		block.prev = prev
		block.hasPrev = true
	}

	switch format {
	case FormatInline:
		block.payload, _ = store.Put([]byte(*rb.Payload))

	default:
		payload, err := digest.Parse(*rb.Payload)
		if err != nil {
			return Block{}, fmt.Errorf("payload: %w", err)
		}
		block.payload = payload
	}

	d, err := digest.Parse(*rb.Digest)
	if err != nil {
		return Block{}, fmt.Errorf("digest: %w", err)
	}
	block.digest = d

	return block, nil
}
