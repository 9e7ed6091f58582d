package scripts

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// HashLen is the number of hex characters in a script hash.
const HashLen = 12

// Store is an append-only, in-memory map from content hash to script.
type Store struct {
	mu      sync.RWMutex
	scripts map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{scripts: make(map[string]string)}
}

// Hash returns the first HashLen hex characters of the SHA-256 of script.
func Hash(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])[:HashLen]
}

// Put stores script and returns its hash. Storing the same script twice is a no-op.
func (s *Store) Put(script string) string {
	h := Hash(script)
	s.mu.Lock()
	s.scripts[h] = script
	s.mu.Unlock()
	return h
}

// Get returns the script stored under hash.
func (s *Store) Get(hash string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	script, ok := s.scripts[hash]
	return script, ok
}

// Len returns the number of stored scripts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scripts)
}
