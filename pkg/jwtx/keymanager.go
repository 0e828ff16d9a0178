package jwtx

import (
	"fmt"
	"sync"

	"github.com/klu-crt/portal/pkg/cryptox"
	"github.com/klu-crt/portal/pkg/idx"
)

// KeyManager owns the portal's signing keys. Keys are ephemeral: a fresh
// Ed25519 keypair is generated on startup and on every Rotate call, which
// invalidates outstanding access tokens on restart. Refresh tokens live in
// the database, so sessions survive; only the short-lived access token has
// to be re-minted.
type KeyManager struct {
	mu      sync.RWMutex
	current Signer
	keys    *KeySet
	history []JWK
}

// NewKeyManager generates the initial signing key.
func NewKeyManager() (*KeyManager, error) {
	km := &KeyManager{keys: NewKeySet()}
	if err := km.Rotate(); err != nil {
		return nil, err
	}
	return km, nil
}

// Rotate generates a new signing key and makes it current. Old keys stay in
// the verification set so in-flight access tokens remain valid until expiry.
func (m *KeyManager) Rotate() error {
	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return fmt.Errorf("jwtx: generate signing key: %w", err)
	}

	kid := idx.New().String()
	signer, err := NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return fmt.Errorf("jwtx: load signing key: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return err
	}

	jwk := signer.PublicJWK()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = signer
	m.history = append(m.history, jwk)
	m.keys.LoadJWKS(JWKS{Keys: []JWK{jwk}})
	return nil
}

// Signer returns the current signing key.
func (m *KeyManager) Signer() Signer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// KeySet returns the verification set, shared with verifiers. The set is
// live: rotations become visible without re-plumbing.
func (m *KeyManager) KeySet() *KeySet {
	return m.keys
}

// JWKS returns the public document with every key generated this process
// lifetime, newest last.
func (m *KeyManager) JWKS() JWKS {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]JWK, len(m.history))
	copy(keys, m.history)
	return JWKS{Keys: keys}
}
