package peerapi

import (
	"crypto/ecdsa"
	"encoding/json"
	"net/http"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
	"github.com/althea-net/guac/ledger"
	"github.com/althea-net/guac/store"
)

// Server is the inbound half of PeerApi: an http.Handler dispatching the
// five wire operations (spec §6) into the right counterparty's guarded
// state machine, via store.Store.Acquire.
type Server struct {
	mux *http.ServeMux

	myAddress    chantypes.Address
	contractAddr chantypes.Address
	key          *ecdsa.PrivateKey
	ledger       ledger.Client
	directory    Directory
	store        *store.Store
}

// NewServer wires a Server over store for the local account identified by
// myAddress/key, settling on contractAddr, backed by ledgerClient, and
// resolving peer endpoints through directory.
func NewServer(myAddress, contractAddr chantypes.Address, key *ecdsa.PrivateKey, ledgerClient ledger.Client, directory Directory, st *store.Store) *Server {
	s := &Server{
		myAddress:    myAddress,
		contractAddr: contractAddr,
		key:          key,
		ledger:       ledgerClient,
		directory:    directory,
		store:        st,
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/guac/v1/propose_channel", s.handleProposeChannel)
	s.mux.HandleFunc("/guac/v1/propose_re_draw", s.handleProposeReDraw)
	s.mux.HandleFunc("/guac/v1/notify_channel_opened", s.handleNotifyChannelOpened)
	s.mux.HandleFunc("/guac/v1/notify_re_draw", s.handleNotifyReDraw)
	s.mux.HandleFunc("/guac/v1/receive_payment", s.handleReceivePayment)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// newCounterpartyFor constructs the Counterparty a never-before-seen peer
// address gets on first contact: StateNew, with an outbound Client already
// pointed back at that peer via the directory.
func (s *Server) newCounterpartyFor(peer chantypes.Address) func() *counterparty.Counterparty {
	return func() *counterparty.Counterparty {
		var peerClient counterparty.PeerClient
		if url, err := s.directory.ResolveURL(peer); err == nil {
			peerClient = NewClient(s.myAddress, url)
		}
		return counterparty.New(s.myAddress, peer, s.contractAddr, s.key, s.ledger, peerClient)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), toErrorResponse(err))
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var zero T
		writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "error", Message: "decoding request body: " + err.Error()})
		return zero, false
	}
	return body, true
}

func (s *Server) handleProposeChannel(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[proposeChannelRequest](w, r)
	if !ok {
		return
	}

	guard, err := s.store.Acquire(r.Context(), req.From, s.newCounterpartyFor(req.From))
	if err != nil {
		writeError(w, err)
		return
	}
	defer guard.Release()

	countersigned, err := guard.Counterparty().HandleProposeChannel(r.Context(), req.Tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposeChannelResponse{Tx: countersigned})
}

func (s *Server) handleProposeReDraw(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[proposeReDrawRequest](w, r)
	if !ok {
		return
	}

	guard, err := s.store.Acquire(r.Context(), req.From, s.newCounterpartyFor(req.From))
	if err != nil {
		writeError(w, err)
		return
	}
	defer guard.Release()

	countersigned, err := guard.Counterparty().HandleProposeReDraw(r.Context(), req.Tx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposeReDrawResponse{Tx: countersigned})
}

func (s *Server) handleNotifyChannelOpened(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[notifyChannelOpenedRequest](w, r)
	if !ok {
		return
	}

	guard, err := s.store.Acquire(r.Context(), req.From, s.newCounterpartyFor(req.From))
	if err != nil {
		writeError(w, err)
		return
	}
	defer guard.Release()

	if err := guard.Counterparty().HandleNotifyChannelOpened(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleNotifyReDraw(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[notifyReDrawRequest](w, r)
	if !ok {
		return
	}

	guard, err := s.store.Acquire(r.Context(), req.From, s.newCounterpartyFor(req.From))
	if err != nil {
		writeError(w, err)
		return
	}
	defer guard.Release()

	if err := guard.Counterparty().HandleNotifyReDraw(r.Context(), req.ID, req.SequenceNumber); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleReceivePayment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[receivePaymentRequest](w, r)
	if !ok {
		return
	}

	guard, err := s.store.Acquire(r.Context(), req.From, s.newCounterpartyFor(req.From))
	if err != nil {
		writeError(w, err)
		return
	}
	defer guard.Release()

	if err := guard.Counterparty().HandleReceivePayment(r.Context(), req.Update); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
