package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
)

// userAPIServer is the control-plane HTTP server exposing UserApi (spec
// §6): fill_channel, withdraw, make_payment, check_accrual,
// check_my_balance, and get_state, each scoped to a single counterparty
// named by its address. It is deliberately separate from peerapi.Server —
// the two expose different trust boundaries (peerapi is reachable by
// counterparties over the network, userapi is meant for a local operator
// or a co-located cmd/guacctl).
type userAPIServer struct {
	mux  *http.ServeMux
	guac *Guac
}

func newUserAPIServer(g *Guac) *userAPIServer {
	s := &userAPIServer{guac: g}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/guac/userapi/v1/fill_channel", s.handleFillChannel)
	s.mux.HandleFunc("/guac/userapi/v1/withdraw", s.handleWithdraw)
	s.mux.HandleFunc("/guac/userapi/v1/make_payment", s.handleMakePayment)
	s.mux.HandleFunc("/guac/userapi/v1/check_accrual", s.handleCheckAccrual)
	s.mux.HandleFunc("/guac/userapi/v1/check_my_balance", s.handleCheckMyBalance)
	s.mux.HandleFunc("/guac/userapi/v1/get_state", s.handleGetState)
	return s
}

func (s *userAPIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type amountRequest struct {
	Peer   string         `json:"peer"`
	Amount chantypes.U256 `json:"amount"`
}

type peerRequest struct {
	Peer string `json:"peer"`
}

func (s *userAPIServer) withCounterparty(w http.ResponseWriter, r *http.Request, peerHex string, fn func(*counterparty.Counterparty) error) {
	peer := common.HexToAddress(peerHex)
	guard, err := s.guac.Store.Acquire(r.Context(), peer, s.guac.counterpartyFor(peer))
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	defer guard.Release()

	if err := fn(guard.Counterparty()); err != nil {
		writeUserAPIError(w, err)
		return
	}
	writeUserAPIJSON(w, http.StatusOK, struct{}{})
}

func (s *userAPIServer) handleFillChannel(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[amountRequest](w, r)
	if !ok {
		return
	}
	s.withCounterparty(w, r, req.Peer, func(cp *counterparty.Counterparty) error {
		return cp.FillChannel(r.Context(), req.Amount)
	})
}

func (s *userAPIServer) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[amountRequest](w, r)
	if !ok {
		return
	}
	s.withCounterparty(w, r, req.Peer, func(cp *counterparty.Counterparty) error {
		return cp.Withdraw(r.Context(), req.Amount)
	})
}

func (s *userAPIServer) handleMakePayment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[amountRequest](w, r)
	if !ok {
		return
	}
	s.withCounterparty(w, r, req.Peer, func(cp *counterparty.Counterparty) error {
		return cp.MakePayment(r.Context(), req.Amount)
	})
}

func (s *userAPIServer) handleCheckAccrual(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[peerRequest](w, r)
	if !ok {
		return
	}
	peer := common.HexToAddress(req.Peer)
	guard, err := s.guac.Store.Acquire(r.Context(), peer, s.guac.counterpartyFor(peer))
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	defer guard.Release()

	accrual, err := guard.Counterparty().CheckAccrual()
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	writeUserAPIJSON(w, http.StatusOK, struct {
		Accrual chantypes.U256 `json:"accrual"`
	}{Accrual: accrual})
}

func (s *userAPIServer) handleCheckMyBalance(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[peerRequest](w, r)
	if !ok {
		return
	}
	peer := common.HexToAddress(req.Peer)
	guard, err := s.guac.Store.Acquire(r.Context(), peer, s.guac.counterpartyFor(peer))
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	defer guard.Release()

	balance, err := guard.Counterparty().CheckMyBalance()
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	writeUserAPIJSON(w, http.StatusOK, struct {
		Balance chantypes.U256 `json:"balance"`
	}{Balance: balance})
}

func (s *userAPIServer) handleGetState(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUserAPIBody[peerRequest](w, r)
	if !ok {
		return
	}
	peer := common.HexToAddress(req.Peer)
	guard, err := s.guac.Store.Acquire(r.Context(), peer, s.guac.counterpartyFor(peer))
	if err != nil {
		writeUserAPIError(w, err)
		return
	}
	defer guard.Release()

	cp := guard.Counterparty()
	snap, open := cp.Snapshot()
	writeUserAPIJSON(w, http.StatusOK, struct {
		Kind     string             `json:"kind"`
		Snapshot *chantypes.Snapshot `json:"snapshot,omitempty"`
	}{
		Kind:     string(cp.State().Kind()),
		Snapshot: snapshotOrNil(snap, open),
	})
}

func snapshotOrNil(snap chantypes.Snapshot, ok bool) *chantypes.Snapshot {
	if !ok {
		return nil
	}
	return &snap
}

func decodeUserAPIBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var zero T
		writeUserAPIJSON(w, http.StatusBadRequest, map[string]string{"message": "decoding request: " + err.Error()})
		return zero, false
	}
	return body, true
}

func writeUserAPIJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeUserAPIError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case counterparty.TryAgainLater, counterparty.WrongState, counterparty.UpdateTooOld:
		status = http.StatusConflict
	case counterparty.Forbidden:
		status = http.StatusForbidden
	case counterparty.ErrNotImplemented:
		status = http.StatusNotImplemented
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
	}
	writeUserAPIJSON(w, status, map[string]string{"message": err.Error()})
}
