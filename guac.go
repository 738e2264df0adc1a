package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
	"github.com/althea-net/guac/ledger"
	"github.com/althea-net/guac/peerapi"
	"github.com/althea-net/guac/store"
)

// Guac is the top-level orchestrating struct, constructed once by guacdMain
// and injected into every subsystem that needs it — the renamed, trimmed
// equivalent of the teacher's server struct (spec §9, "no global
// singleton": cfg and its derived values are passed down explicitly rather
// than read from package-level vars at arbitrary depth).
type Guac struct {
	MyAddress    chantypes.Address
	ContractAddr chantypes.Address
	Key          *ecdsa.PrivateKey

	Ledger    ledger.Client
	Directory *peerapi.Static
	Store     *store.Store

	PeerServer *peerapi.Server
	UserServer *userAPIServer
}

// newGuac wires every subsystem from cfg: the ledger client, the peer
// directory, the store, and the two HTTP servers (PeerApi inbound, UserApi
// control plane).
func newGuac(cfg *config) (*Guac, error) {
	key, err := loadPrivateKey(cfg.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading private key: %w", err)
	}

	myAddress := common.HexToAddress(cfg.MyAddress)
	contractAddr := common.HexToAddress(cfg.ContractAddr)

	directory := peerapi.NewStatic()
	for _, pair := range cfg.Peers {
		addr, url, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --peer entry %q, expected address=url", pair)
		}
		directory.Set(common.HexToAddress(addr), url)
	}

	ledgerClient, err := ledger.Dial(cfg.LedgerRPCURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to ledger at %s: %w", cfg.LedgerRPCURL, err)
	}

	st := store.New()

	peerServer := peerapi.NewServer(myAddress, contractAddr, key, ledgerClient, directory, st)

	g := &Guac{
		MyAddress:    myAddress,
		ContractAddr: contractAddr,
		Key:          key,
		Ledger:       ledgerClient,
		Directory:    directory,
		Store:        st,
		PeerServer:   peerServer,
	}
	g.UserServer = newUserAPIServer(g)

	return g, nil
}

// counterpartyFor resolves (creating if necessary) the Counterparty for
// peer, wiring its outbound PeerClient through g.Directory.
func (g *Guac) counterpartyFor(peer chantypes.Address) func() *counterparty.Counterparty {
	return func() *counterparty.Counterparty {
		var peerClient counterparty.PeerClient
		if url, err := g.Directory.ResolveURL(peer); err == nil {
			peerClient = peerapi.NewClient(g.MyAddress, url)
		}
		return counterparty.New(g.MyAddress, peer, g.ContractAddr, g.Key, g.Ledger, peerClient)
	}
}

// loadPrivateKey reads a hex-encoded secp256k1 private key from path, the
// way wc.New in the teacher's lnd.go loads wallet key material from disk.
func loadPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return gethcrypto.HexToECDSA(strings.TrimSpace(string(raw)))
}
