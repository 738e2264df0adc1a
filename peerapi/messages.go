// Package peerapi is the wire transport for PeerApi (spec §6): a server
// adapter translating inbound HTTP+JSON requests into counterparty state
// machine calls, and a client adapter implementing counterparty.PeerClient
// over the same wire format against a remote peer. The wire envelope
// itself — JSON over plain net/http — is explicitly out of the protocol's
// scope (spec §6 names only the five logical operations), so nothing here
// is part of the contract a second implementation would need to match
// byte-for-byte; it only needs to agree on this package's types.
package peerapi

import (
	"github.com/althea-net/guac/chantypes"
)

// proposeChannelRequest carries a NewChannelTx proposal from the sender to
// a peer, along with the sender's address so the peer can look up (or
// create) the right Counterparty.
type proposeChannelRequest struct {
	From chantypes.Address       `json:"from"`
	Tx   *chantypes.NewChannelTx `json:"tx"`
}

type proposeChannelResponse struct {
	Tx *chantypes.NewChannelTx `json:"tx"`
}

type proposeReDrawRequest struct {
	From chantypes.Address    `json:"from"`
	Tx   *chantypes.ReDrawTx  `json:"tx"`
}

type proposeReDrawResponse struct {
	Tx *chantypes.ReDrawTx `json:"tx"`
}

type notifyChannelOpenedRequest struct {
	From chantypes.Address   `json:"from"`
	ID   chantypes.ChannelID `json:"channel_id"`
}

type notifyReDrawRequest struct {
	From           chantypes.Address   `json:"from"`
	ID             chantypes.ChannelID `json:"channel_id"`
	SequenceNumber chantypes.U256      `json:"sequence_number"`
}

type receivePaymentRequest struct {
	From   chantypes.Address    `json:"from"`
	Update *chantypes.UpdateTx  `json:"update"`
}

// errorResponse is the body returned alongside a non-2xx status; Kind
// names the counterparty error taxonomy member so a Go client can
// reconstruct a typed error instead of a bare string (errors.go).
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Extra carries kind-specific fields: WrongState's Current/Correct,
	// UpdateTooOld's CorrectSeq.
	Extra map[string]string `json:"extra,omitempty"`
}
