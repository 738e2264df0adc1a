package peerapi

import (
	"fmt"
	"net/http"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
)

// statusFor picks the HTTP status a given counterparty error maps to. The
// mapping only needs to be good enough for an operator watching access
// logs to tell transient conditions (retry-worthy, 409) from protocol
// violations (4xx, not retry-worthy) apart; it carries no protocol meaning
// of its own (spec §6, the transport is out of scope).
func statusFor(err error) int {
	switch err.(type) {
	case counterparty.TryAgainLater:
		return http.StatusConflict
	case counterparty.WrongState:
		return http.StatusConflict
	case counterparty.UpdateTooOld:
		return http.StatusConflict
	case counterparty.Forbidden:
		return http.StatusForbidden
	case counterparty.ErrNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// toErrorResponse converts a counterparty error into its wire form.
func toErrorResponse(err error) errorResponse {
	switch e := err.(type) {
	case counterparty.TryAgainLater:
		return errorResponse{Kind: "try_again_later", Message: e.Error(), Extra: map[string]string{"action": e.Action}}
	case counterparty.WrongState:
		return errorResponse{Kind: "wrong_state", Message: e.Error(), Extra: map[string]string{
			"action": e.Action, "current": e.Current, "correct": e.Correct,
		}}
	case counterparty.UpdateTooOld:
		return errorResponse{Kind: "update_too_old", Message: e.Error(), Extra: map[string]string{
			"correct_seq": e.CorrectSeq.String(),
		}}
	case counterparty.Forbidden:
		return errorResponse{Kind: "forbidden", Message: e.Error()}
	case counterparty.ErrNotImplemented:
		return errorResponse{Kind: "not_implemented", Message: e.Error()}
	default:
		return errorResponse{Kind: "error", Message: err.Error()}
	}
}

// fromErrorResponse reconstructs a typed counterparty error from its wire
// form, for the client side.
func fromErrorResponse(resp errorResponse) error {
	switch resp.Kind {
	case "try_again_later":
		return counterparty.TryAgainLater{Action: resp.Extra["action"]}
	case "wrong_state":
		return counterparty.WrongState{
			Action: resp.Extra["action"], Current: resp.Extra["current"], Correct: resp.Extra["correct"],
		}
	case "update_too_old":
		seq, err := chantypes.U256FromDecimal(resp.Extra["correct_seq"])
		if err != nil {
			return fmt.Errorf("peerapi: decoding update_too_old sequence: %w", err)
		}
		return counterparty.UpdateTooOld{CorrectSeq: seq}
	case "forbidden":
		return counterparty.Forbidden{Message: resp.Message}
	case "not_implemented":
		return counterparty.ErrNotImplemented{What: resp.Message}
	default:
		return counterparty.Error{Message: resp.Message}
	}
}
