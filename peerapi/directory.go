package peerapi

import (
	"fmt"
	"sync"

	"github.com/althea-net/guac/chantypes"
)

// Directory resolves a counterparty's address to the base URL of its peer
// endpoint. A real deployment might back this with on-chain registration
// data or static configuration; Static is enough for both.
type Directory interface {
	ResolveURL(addr chantypes.Address) (string, error)
}

// Static is a Directory backed by a mutable map, filled at startup from
// config.go's peer list; Set may also be called later to add endpoints.
type Static struct {
	mu   sync.RWMutex
	urls map[chantypes.Address]string
}

// NewStatic returns an empty Static directory.
func NewStatic() *Static {
	return &Static{urls: make(map[chantypes.Address]string)}
}

// Set records addr's peer endpoint as baseURL (e.g. "https://peer.example:8447").
func (s *Static) Set(addr chantypes.Address, baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[addr] = baseURL
}

func (s *Static) ResolveURL(addr chantypes.Address) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	url, ok := s.urls[addr]
	if !ok {
		return "", fmt.Errorf("peerapi: no known endpoint for address %x", addr)
	}
	return url, nil
}
