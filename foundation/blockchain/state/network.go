package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
	"github.com/ardanlabs/anchorchain/foundation/blockchain/peer"
)

const baseURL = "http://%s/v1/node"

// maxDocument limits how much of a peer response is read.
const maxDocument = 64 << 20

var client = http.Client{
	Timeout: 10 * time.Second,
}

// NetSendLedgerToPeers sends the encoded ledger to all known peers. Peers
// that can't be reached are reported and skipped.
func (s *State) NetSendLedgerToPeers() {
	s.evHandler("state: NetSendLedgerToPeers: started")
	defer s.evHandler("state: NetSendLedgerToPeers: completed")

	doc, err := s.Encode(ledger.FormatStore)
	if err != nil {
		s.evHandler("state: NetSendLedgerToPeers: ERROR: %s", err)
		return
	}

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/ledger/submit", fmt.Sprintf(baseURL, pr.Host))
		if err := send(http.MethodPost, url, doc, nil); err != nil {
			s.evHandler("state: NetSendLedgerToPeers: WARNING: %s: %s", pr, err)
			continue
		}

		s.evHandler("state: NetSendLedgerToPeers: sent to peer[%s]", pr)
	}
}

// NetRequestPeerStatus asks the peer for its status. Peers it knows about
// that this node doesn't are returned as part of the status.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	url := fmt.Sprintf("%s/status", fmt.Sprintf(baseURL, pr.Host))

	var ps peer.PeerStatus
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: blocks[%d]: peer-list[%s]", pr, ps.Blocks, ps.KnownPeers)

	return ps, nil
}

// NetRequestPeerLedger downloads the peer's ledger and submits it to this
// node. The document goes through the same decoding and validation as any
// other submission.
func (s *State) NetRequestPeerLedger(pr peer.Peer) (bool, error) {
	s.evHandler("state: NetRequestPeerLedger: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerLedger: completed: %s", pr)

	url := fmt.Sprintf("%s/ledger", fmt.Sprintf(baseURL, pr.Host))

	var doc json.RawMessage
	if err := send(http.MethodGet, url, nil, &doc); err != nil {
		return false, err
	}

	return s.SubmitLedger(doc)
}

// =============================================================================

// send is a helper function to send an HTTP request to a node. A []byte
// value is sent as is, anything else is marshaled to JSON.
func send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	switch v := dataSend.(type) {
	case nil:
	case []byte:
		body = bytes.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocument)).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
