package counterparty

import (
	"github.com/althea-net/guac/chantypes"
)

// State is the sealed sum type over the six counterparty lifecycle states
// (spec §3, §4.2). Each concrete state carries exactly the data its
// transitions need; there is no shared struct with optional fields or a
// status flag (spec §9, "tagged variants for state"). The unexported
// isState method keeps the set of variants closed to this package; Go does
// not check type switches over State for exhaustiveness, so each
// transition's switch names the variants it handles.
type State interface {
	Kind() Kind
	isState()
}

// Kind names a State's variant, used for error messages and logging; it is
// never used as a replacement for the type switch that drives transitions.
type Kind string

const (
	KindNew            Kind = "New"
	KindCreating       Kind = "Creating"
	KindOtherCreating  Kind = "OtherCreating"
	KindOpen           Kind = "Open"
	KindReDrawing      Kind = "ReDrawing"
	KindOtherReDrawing Kind = "OtherReDrawing"
)

// StateNew is the initial state: no channel exists yet, but the role this
// account plays in one (address_0 or address_1) is already fixed by address
// comparison (spec §4.2's "canonical role").
type StateNew struct {
	IAmZero bool
}

func (StateNew) Kind() Kind { return KindNew }
func (StateNew) isState()   {}

// StateCreating is entered when the local user proposes a channel open;
// NewChannelTx is the proposal awaiting the ledger's
// deposit_then_new_channel confirmation.
type StateCreating struct {
	Tx      *chantypes.NewChannelTx
	IAmZero bool
}

func (StateCreating) Kind() Kind { return KindCreating }
func (StateCreating) isState()   {}

// StateOtherCreating is entered when the peer proposes a channel open;
// NewChannelTx is the peer's proposal, countersigned and awaiting the
// peer's notify_channel_opened.
type StateOtherCreating struct {
	Tx      *chantypes.NewChannelTx
	IAmZero bool
}

func (StateOtherCreating) Kind() Kind { return KindOtherCreating }
func (StateOtherCreating) isState()   {}

// StateOpen is the steady state: a live channel with agreed balances,
// ready for payments or a redraw.
type StateOpen struct {
	Channel *chantypes.Channel
}

func (StateOpen) Kind() Kind { return KindOpen }
func (StateOpen) isState()   {}

// StateReDrawing is entered when the local user proposes a redraw (a
// fill_channel or withdraw against an already-open channel); ReDrawTx is
// the proposal awaiting on-chain confirmation.
type StateReDrawing struct {
	Channel *chantypes.Channel
	Tx      *chantypes.ReDrawTx
}

func (StateReDrawing) Kind() Kind { return KindReDrawing }
func (StateReDrawing) isState()   {}

// StateOtherReDrawing is entered when the peer proposes a redraw;
// ReDrawTx is the peer's proposal, countersigned and awaiting the
// peer's notify_re_draw.
type StateOtherReDrawing struct {
	Channel *chantypes.Channel
	Tx      *chantypes.ReDrawTx
}

func (StateOtherReDrawing) Kind() Kind { return KindOtherReDrawing }
func (StateOtherReDrawing) isState()   {}

// RoleIsZero reports whether account a takes the address_0 / i_am_0 role
// against counterparty b, per the canonical ordering in spec §3/§4.2: the
// lower address is always address_0.
func RoleIsZero(a, b chantypes.Address) bool {
	return chantypes.LessThan(a, b)
}
