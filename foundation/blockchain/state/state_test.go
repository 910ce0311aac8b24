package state_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/peer"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/state"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Anchor(t *testing.T) {
	t.Log("Given the need to anchor payloads through the node state.")
	{
		t.Logf("\tTest 0:\tWhen anchoring payloads with memory storage.")
		{
			strg := memory.New()
			st := newState(t, strg, nil)

			worker := &countWorker{}
			st.Worker = worker

			for i, p := range []string{"hello", "world", "!"} {
				block, index := st.Anchor([]byte(p))
				if index != i {
					t.Fatalf("\t%s\tTest 0:\tShould get index %d, got %d.", failed, i, index)
				}
				if _, ok := st.RetrievePayload(block.PayloadDigest()); !ok {
					t.Fatalf("\t%s\tTest 0:\tShould be able to retrieve payload %q.", failed, p)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould get the right index for each anchor.", success)

			if worker.shares() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould signal a share for every anchor, got %d.", failed, worker.shares())
			}
			t.Logf("\t%s\tTest 0:\tShould signal a share for every anchor.", success)

			blocks, err := st.Validate()
			if err != nil || blocks != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould validate 3 blocks: %d %v", failed, blocks, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate 3 blocks.", success)

			snapshot, err := strg.Read()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould have written a snapshot: %v", failed, err)
			}
			latest, _ := st.RetrieveLatestBlock()
			if snapshot.Blocks != 3 || snapshot.Tip != latest.Digest().String() {
				t.Fatalf("\t%s\tTest 0:\tShould have a snapshot of the latest ledger: %d %s", failed, snapshot.Blocks, snapshot.Tip)
			}
			t.Logf("\t%s\tTest 0:\tShould have a snapshot of the latest ledger.", success)

			status := st.RetrieveStatus()
			if status.Blocks != 3 || status.LatestDigest != latest.Digest().String() {
				t.Fatalf("\t%s\tTest 0:\tShould report the ledger in the status: %+v", failed, status)
			}
			t.Logf("\t%s\tTest 0:\tShould report the ledger in the status.", success)
		}

		t.Logf("\tTest 1:\tWhen restarting a node from its snapshot.")
		{
			strg := memory.New()
			st := newState(t, strg, nil)
			st.Anchor([]byte("hello"))
			block, _ := st.Anchor([]byte("world"))

			restarted := newState(t, strg, nil)
			latest, ok := restarted.RetrieveLatestBlock()
			if !ok || latest.Digest() != block.Digest() {
				t.Fatalf("\t%s\tTest 1:\tShould load the ledger from the snapshot.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould load the ledger from the snapshot.", success)
		}

		t.Logf("\tTest 2:\tWhen the snapshot has been tampered with.")
		{
			strg := memory.New()
			st := newState(t, strg, nil)
			st.Anchor([]byte("hello"))

			snapshot, err := strg.Read()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould have written a snapshot: %v", failed, err)
			}

			l, err := ledger.Decode(snapshot.Document)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould decode the snapshot: %v", failed, err)
			}
			block, _ := l.Latest()
			snapshot.Document = []byte(strings.Replace(string(snapshot.Document), block.Digest().String(), block.PayloadDigest().String(), 1))
			if err := strg.Write(snapshot); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to write the snapshot: %v", failed, err)
			}

			if _, err := state.New(state.Config{Storage: strg}); !errors.Is(err, ledger.ErrInvalidDigest) {
				t.Fatalf("\t%s\tTest 2:\tShould refuse to start with a tampered snapshot: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould refuse to start with a tampered snapshot.", success)
		}

		t.Logf("\tTest 3:\tWhen restarting a node with a different document format.")
		{
			strg := memory.New()
			st, err := state.New(state.Config{Storage: strg, Format: ledger.FormatInline})
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to construct the state: %v", failed, err)
			}
			st.Anchor([]byte("hello"))
			block, _ := st.Anchor([]byte("world"))

			snapshot, err := strg.Read()
			if err != nil || snapshot.Format != "inline" {
				t.Fatalf("\t%s\tTest 3:\tShould record the format in the snapshot: %q %v", failed, snapshot.Format, err)
			}
			t.Logf("\t%s\tTest 3:\tShould record the format in the snapshot.", success)

			restarted, err := state.New(state.Config{Storage: strg, Format: ledger.FormatStore})
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould start with the snapshot of another format: %v", failed, err)
			}
			latest, ok := restarted.RetrieveLatestBlock()
			if !ok || latest.Digest() != block.Digest() {
				t.Fatalf("\t%s\tTest 3:\tShould load the ledger from the snapshot.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould start with the snapshot of another format.", success)

			restarted.Anchor([]byte("!"))
			snapshot, err = strg.Read()
			if err != nil || snapshot.Format != "store" {
				t.Fatalf("\t%s\tTest 3:\tShould write new snapshots in the configured format: %q %v", failed, snapshot.Format, err)
			}
			t.Logf("\t%s\tTest 3:\tShould write new snapshots in the configured format.", success)
		}
	}
}

func Test_SubmitLedger(t *testing.T) {
	t.Log("Given the need to accept ledgers from peers.")
	{
		t.Logf("\tTest 0:\tWhen submitting a valid ledger.")
		{
			src := ledger.New()
			src.Anchor([]byte("hello"))
			src.Anchor([]byte("world"))

			doc, err := ledger.Encode(src)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode the ledger: %v", failed, err)
			}

			st := newState(t, memory.New(), nil)

			changed, err := st.SubmitLedger(doc)
			if err != nil || !changed {
				t.Fatalf("\t%s\tTest 0:\tShould replace the ledger: %v %v", failed, changed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould replace the ledger.", success)

			exp, _ := src.Latest()
			got, _ := st.RetrieveLatestBlock()
			if got.Digest() != exp.Digest() {
				t.Fatalf("\t%s\tTest 0:\tShould hold the submitted ledger.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hold the submitted ledger.", success)

			changed, err = st.SubmitLedger(doc)
			if err != nil || changed {
				t.Fatalf("\t%s\tTest 0:\tShould not change on the same ledger: %v %v", failed, changed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould not change on the same ledger.", success)
		}

		t.Logf("\tTest 1:\tWhen submitting a tampered ledger.")
		{
			st := newState(t, memory.New(), nil)
			before, _ := st.Anchor([]byte("mine"))

			src := ledger.New()
			src.Anchor([]byte("hello"))
			block, _ := src.Latest()

			doc, err := ledger.Encode(src)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to encode the ledger: %v", failed, err)
			}
			doc = []byte(strings.Replace(string(doc), `"digest":"`+block.Digest().String(), `"digest":"`+block.PayloadDigest().String(), 1))

			changed, err := st.SubmitLedger(doc)
			if !errors.Is(err, ledger.ErrInvalidDigest) || changed {
				t.Fatalf("\t%s\tTest 1:\tShould reject the ledger: %v %v", failed, changed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the ledger.", success)

			got, _ := st.RetrieveLatestBlock()
			if got.Digest() != before.Digest() {
				t.Fatalf("\t%s\tTest 1:\tShould keep the local ledger.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the local ledger.", success)
		}

		t.Logf("\tTest 2:\tWhen submitting a malformed document.")
		{
			st := newState(t, memory.New(), nil)

			if _, err := st.SubmitLedger([]byte(`{"blocks":`)); !errors.Is(err, ledger.ErrDecode) {
				t.Fatalf("\t%s\tTest 2:\tShould get a decode error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get a decode error.", success)
		}

		t.Logf("\tTest 3:\tWhen resetting the node.")
		{
			strg := memory.New()
			st := newState(t, strg, nil)
			st.Anchor([]byte("hello"))

			if err := st.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to reset: %v", failed, err)
			}
			if len(st.RetrieveBlocks()) != 0 {
				t.Fatalf("\t%s\tTest 3:\tShould have an empty ledger.", failed)
			}
			if _, err := strg.Read(); !errors.Is(err, storage.ErrNoSnapshot) {
				t.Fatalf("\t%s\tTest 3:\tShould have no snapshot: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould drop the ledger and the snapshot.", success)
		}

		t.Logf("\tTest 4:\tWhen submitting a ledger that doesn't extend the local one.")
		{
			st := newState(t, memory.New(), nil)
			st.Anchor([]byte("a"))
			st.Anchor([]byte("b"))
			before, _ := st.Anchor([]byte("c"))

			type table struct {
				name     string
				payloads []string
			}

			tt := []table{
				{name: "shorter", payloads: []string{"a"}},
				{name: "fork", payloads: []string{"a", "b", "x"}},
				{name: "unrelated-longer", payloads: []string{"x", "y", "z", "w"}},
			}

			for _, tst := range tt {
				src := ledger.New()
				for _, p := range tst.payloads {
					src.Anchor([]byte(p))
				}

				doc, err := ledger.Encode(src)
				if err != nil {
					t.Fatalf("\t%s\tTest 4:\tShould be able to encode the %s ledger: %v", failed, tst.name, err)
				}

				changed, err := st.SubmitLedger(doc)
				if !errors.Is(err, ledger.ErrConflict) || changed {
					t.Fatalf("\t%s\tTest 4:\tShould reject the %s ledger as a conflict: %v %v", failed, tst.name, changed, err)
				}
				t.Logf("\t%s\tTest 4:\tShould reject the %s ledger as a conflict.", success, tst.name)

				got, _ := st.RetrieveLatestBlock()
				if got.Digest() != before.Digest() || len(st.RetrieveBlocks()) != 3 {
					t.Fatalf("\t%s\tTest 4:\tShould keep the local ledger after the %s ledger.", failed, tst.name)
				}
				t.Logf("\t%s\tTest 4:\tShould keep the local ledger after the %s ledger.", success, tst.name)
			}
		}

		t.Logf("\tTest 5:\tWhen submitting a ledger that extends the local one.")
		{
			st := newState(t, memory.New(), nil)
			st.Anchor([]byte("a"))
			st.Anchor([]byte("b"))

			src := ledger.New()
			for _, p := range []string{"a", "b", "c", "d"} {
				src.Anchor([]byte(p))
			}

			doc, err := ledger.Encode(src)
			if err != nil {
				t.Fatalf("\t%s\tTest 5:\tShould be able to encode the ledger: %v", failed, err)
			}

			changed, err := st.SubmitLedger(doc)
			if err != nil || !changed {
				t.Fatalf("\t%s\tTest 5:\tShould take the longer ledger: %v %v", failed, changed, err)
			}
			if len(st.RetrieveBlocks()) != 4 {
				t.Fatalf("\t%s\tTest 5:\tShould hold four blocks, got %d.", failed, len(st.RetrieveBlocks()))
			}
			t.Logf("\t%s\tTest 5:\tShould take the longer ledger.", success)
		}
	}
}

func Test_Network(t *testing.T) {
	t.Log("Given the need to exchange ledgers with peers.")
	{
		t.Logf("\tTest 0:\tWhen requesting the ledger and status of a peer.")
		{
			src := ledger.New()
			src.Anchor([]byte("hello"))
			src.Anchor([]byte("world"))

			doc, err := ledger.Encode(src)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to encode the ledger: %v", failed, err)
			}
			latest, _ := src.Latest()

			mux := http.NewServeMux()
			mux.HandleFunc("GET /v1/node/ledger", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write(doc)
			})
			mux.HandleFunc("GET /v1/node/status", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"latest_digest":"`+latest.Digest().String()+`","blocks":2,"known_peers":[{"Host":"other:9080"}]}`)
			})

			srv := httptest.NewServer(mux)
			defer srv.Close()

			pr := peer.New(strings.TrimPrefix(srv.URL, "http://"))
			st := newState(t, memory.New(), nil)

			status, err := st.NetRequestPeerStatus(pr)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get the peer status: %v", failed, err)
			}
			if status.Blocks != 2 || status.LatestDigest != latest.Digest().String() || len(status.KnownPeers) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould get the right peer status: %+v", failed, status)
			}
			t.Logf("\t%s\tTest 0:\tShould get the right peer status.", success)

			changed, err := st.NetRequestPeerLedger(pr)
			if err != nil || !changed {
				t.Fatalf("\t%s\tTest 0:\tShould take the peer ledger: %v %v", failed, changed, err)
			}
			got, _ := st.RetrieveLatestBlock()
			if got.Digest() != latest.Digest() {
				t.Fatalf("\t%s\tTest 0:\tShould hold the peer ledger.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould take the peer ledger.", success)
		}

		t.Logf("\tTest 1:\tWhen sending the ledger to known peers.")
		{
			var mu sync.Mutex
			var received []byte

			mux := http.NewServeMux()
			mux.HandleFunc("POST /v1/node/ledger/submit", func(w http.ResponseWriter, r *http.Request) {
				data, _ := io.ReadAll(r.Body)
				mu.Lock()
				received = data
				mu.Unlock()
				w.WriteHeader(http.StatusNoContent)
			})

			srv := httptest.NewServer(mux)
			defer srv.Close()

			peers := peer.NewPeerSet()
			peers.Add(peer.New(strings.TrimPrefix(srv.URL, "http://")))

			st := newState(t, memory.New(), peers)
			st.Anchor([]byte("hello"))
			st.NetSendLedgerToPeers()

			mu.Lock()
			defer mu.Unlock()

			l, err := ledger.Decode(received)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould send a valid document: %v", failed, err)
			}
			exp, _ := st.RetrieveLatestBlock()
			got, _ := l.Latest()
			if got.Digest() != exp.Digest() {
				t.Fatalf("\t%s\tTest 1:\tShould send the node ledger.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould send the node ledger.", success)
		}
	}
}

// =============================================================================

func newState(t *testing.T, strg storage.Storage, peers *peer.PeerSet) *state.State {
	t.Helper()

	st, err := state.New(state.Config{
		Host:       "localhost:9080",
		Storage:    strg,
		KnownPeers: peers,
		EvHandler: func(v string, args ...any) {
			t.Logf(v, args...)
		},
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

type countWorker struct {
	mu    sync.Mutex
	count int
}

func (w *countWorker) Shutdown() {}

func (w *countWorker) SignalShareLedger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.count++
}

func (w *countWorker) shares() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
