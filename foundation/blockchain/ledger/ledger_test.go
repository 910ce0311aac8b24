package ledger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Anchor(t *testing.T) {
	t.Log("Given the need to anchor payloads into a ledger.")
	{
		t.Logf("\tTest 0:\tWhen anchoring hello, world and ! into an empty ledger.")
		{
			l := ledger.New()

			payloads := []string{"hello", "world", "!"}
			digests := make([]digest.Digest, len(payloads))
			for i, p := range payloads {
				digests[i] = l.Anchor([]byte(p))
			}

			if l.Len() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould have 3 blocks, got %d.", failed, l.Len())
			}
			t.Logf("\t%s\tTest 0:\tShould have 3 blocks.", success)

			blocks := l.Blocks()

			if _, ok := blocks[0].Prev(); ok {
				t.Fatalf("\t%s\tTest 0:\tShould have no parent for the first block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no parent for the first block.", success)

			for i := 1; i < len(blocks); i++ {
				prev, ok := blocks[i].Prev()
				if !ok || prev != blocks[i-1].Digest() {
					t.Fatalf("\t%s\tTest 0:\tShould link block %d to block %d.", failed, i, i-1)
				}
				t.Logf("\t%s\tTest 0:\tShould link block %d to block %d.", success, i, i-1)
			}

			for i, block := range blocks {
				if block.Digest() != digests[i] {
					t.Fatalf("\t%s\tTest 0:\tShould return the digest of block %d from Anchor.", failed, i)
				}
				if block.PayloadDigest() != digest.Sum([]byte(payloads[i])) {
					t.Fatalf("\t%s\tTest 0:\tShould record the payload digest of block %d.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould return and record the right digests.", success)

			if err := l.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to validate the ledger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to validate the ledger.", success)

			latest, ok := l.Latest()
			if !ok || latest.Digest() != digests[2] {
				t.Fatalf("\t%s\tTest 0:\tShould get the last block as the latest block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get the last block as the latest block.", success)
		}

		t.Logf("\tTest 1:\tWhen anchoring the same payload more than once.")
		{
			l := ledger.New()
			d1 := l.Anchor([]byte("same"))
			d2 := l.Anchor([]byte("same"))

			if l.Len() != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould have 2 blocks, got %d.", failed, l.Len())
			}
			t.Logf("\t%s\tTest 1:\tShould have 2 blocks.", success)

			if l.Payloads() != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould store the payload once, got %d.", failed, l.Payloads())
			}
			t.Logf("\t%s\tTest 1:\tShould store the payload once.", success)

			if d1 == d2 {
				t.Fatalf("\t%s\tTest 1:\tShould get different block digests.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould get different block digests.", success)

			if err := l.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to validate the ledger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to validate the ledger.", success)
		}

		t.Logf("\tTest 2:\tWhen working with an empty ledger.")
		{
			l := ledger.New()

			if err := l.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to validate an empty ledger: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to validate an empty ledger.", success)

			if _, ok := l.Latest(); ok {
				t.Fatalf("\t%s\tTest 2:\tShould not have a latest block.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould not have a latest block.", success)
		}
	}
}

func Test_Payload(t *testing.T) {
	t.Log("Given the need to retrieve anchored payloads.")
	{
		l := ledger.New()

		payload := []byte("hello")
		l.Anchor(payload)
		payload[0] = 'j'

		block, _ := l.Block(0)
		got, ok := l.Payload(block.PayloadDigest())
		if !ok {
			t.Fatalf("\t%s\tShould be able to find the payload.", failed)
		}
		t.Logf("\t%s\tShould be able to find the payload.", success)

		if !bytes.Equal(got, []byte("hello")) {
			t.Logf("\t%s\tgot: %s", failed, got)
			t.Fatalf("\t%s\tShould not see changes made by the caller after anchoring.", failed)
		}
		t.Logf("\t%s\tShould not see changes made by the caller after anchoring.", success)

		got[0] = 'y'
		again, _ := l.Payload(block.PayloadDigest())
		if !bytes.Equal(again, []byte("hello")) {
			t.Fatalf("\t%s\tShould not see changes made to a returned payload.", failed)
		}
		t.Logf("\t%s\tShould not see changes made to a returned payload.", success)

		if _, ok := l.Payload(digest.Sum([]byte("missing"))); ok {
			t.Fatalf("\t%s\tShould not find a payload that was never anchored.", failed)
		}
		t.Logf("\t%s\tShould not find a payload that was never anchored.", success)
	}
}

func Test_Validate(t *testing.T) {
	t.Log("Given the need to validate many anchored sequences.")
	{
		for n := 0; n < 50; n++ {
			l := ledger.New()
			for i := 0; i < n; i++ {
				l.Anchor([]byte{byte(i), byte(n)})
			}

			if err := l.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be able to validate a ledger of %d blocks: %v", failed, n, err)
			}
		}
		t.Logf("\t%s\tShould be able to validate ledgers of 0 to 49 blocks.", success)
	}
}

func Test_BlockError(t *testing.T) {
	t.Log("Given the need to inspect validation errors.")
	{
		err := error(&ledger.BlockError{Index: 2, Err: ledger.ErrInvalidDigest, Got: "a", Exp: "b"})

		if !errors.Is(err, ledger.ErrInvalidDigest) {
			t.Fatalf("\t%s\tShould unwrap to the kind of failure.", failed)
		}
		t.Logf("\t%s\tShould unwrap to the kind of failure.", success)

		var be *ledger.BlockError
		if !errors.As(err, &be) || be.Index != 2 {
			t.Fatalf("\t%s\tShould carry the index of the block.", failed)
		}
		t.Logf("\t%s\tShould carry the index of the block.", success)

		if !ledger.IsValidation(err) || ledger.IsValidation(ledger.ErrDecode) {
			t.Fatalf("\t%s\tShould tell validation errors from decode errors.", failed)
		}
		t.Logf("\t%s\tShould tell validation errors from decode errors.", success)
	}
}

func Test_BlockErrorMessage(t *testing.T) {
	type table struct {
		name string
		err  *ledger.BlockError
		msg  string
	}

	tt := []table{
		{name: "both", err: &ledger.BlockError{Index: 2, Err: ledger.ErrInvalidDigest, Got: "a", Exp: "b"}, msg: "block[2]: invalid digest, got a, exp b"},
		{name: "got-only", err: &ledger.BlockError{Index: 1, Err: ledger.ErrDanglingPayload, Got: "a"}, msg: "block[1]: dangling payload, got a"},
		{name: "exp-only", err: &ledger.BlockError{Index: 1, Err: ledger.ErrInvalidParentDigest, Exp: "b"}, msg: "block[1]: invalid parent digest, exp b"},
		{name: "none", err: &ledger.BlockError{Index: 0, Err: ledger.ErrPayloadMismatch}, msg: "block[0]: payload does not match its digest"},
	}

	t.Log("Given the need to describe validation errors.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if got := tst.err.Error(); got != tst.msg {
					t.Logf("\t%s\tTest %d:\tgot: %q", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %q", failed, testID, tst.msg)
					t.Fatalf("\t%s\tTest %d:\tShould only name the values that are known.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould only name the values that are known.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Extends(t *testing.T) {
	build := func(payloads ...string) *ledger.Ledger {
		l := ledger.New()
		for _, p := range payloads {
			l.Anchor([]byte(p))
		}
		return l
	}

	type table struct {
		name string
		l    *ledger.Ledger
		base *ledger.Ledger
		ok   bool
	}

	tt := []table{
		{name: "empty-base", l: build("a"), base: build(), ok: true},
		{name: "both-empty", l: build(), base: build(), ok: true},
		{name: "same", l: build("a", "b"), base: build("a", "b"), ok: true},
		{name: "longer", l: build("a", "b", "c"), base: build("a", "b"), ok: true},
		{name: "shorter", l: build("a"), base: build("a", "b", "c"), ok: false},
		{name: "empty-ledger", l: build(), base: build("a"), ok: false},
		{name: "fork", l: build("a", "x", "c"), base: build("a", "b"), ok: false},
		{name: "unrelated", l: build("x", "y", "z"), base: build("a"), ok: false},
	}

	t.Log("Given the need to know if a ledger continues another.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if got := tst.l.Extends(tst.base); got != tst.ok {
					t.Fatalf("\t%s\tTest %d:\tShould report %v, got %v.", failed, testID, tst.ok, got)
				}
				t.Logf("\t%s\tTest %d:\tShould report %v.", success, testID, tst.ok)
			}

			t.Run(tst.name, f)
		}
	}
}
