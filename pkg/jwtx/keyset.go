package jwtx

import (
	"crypto/ed25519"
	"sync"
)

// KeySet is a concurrency-safe set of Ed25519 verification keys indexed by
// kid. The key manager replaces entries as signing keys rotate.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

// NewKeySet returns an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]ed25519.PublicKey)}
}

// Add registers a verification key under a kid, replacing any previous key.
func (s *KeySet) Add(kid string, pub ed25519.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[kid] = pub
}

// Remove drops a key; verification with tokens minted under it will fail.
func (s *KeySet) Remove(kid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, kid)
}

// Ed25519 looks up a verification key by kid.
func (s *KeySet) Ed25519(kid string) (ed25519.PublicKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pub, ok := s.keys[kid]
	return pub, ok
}

// IsReady reports whether at least one verification key is loaded. Readiness
// probes use this to refuse traffic before the first key rotation.
func (s *KeySet) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys) > 0
}

// LoadJWKS merges every usable OKP key from a JWKS document into the set.
func (s *KeySet) LoadJWKS(doc JWKS) int {
	loaded := 0
	for _, k := range doc.Keys {
		pub, ok := k.Ed25519Key()
		if !ok || k.Kid == "" {
			continue
		}
		s.Add(k.Kid, pub)
		loaded++
	}
	return loaded
}
