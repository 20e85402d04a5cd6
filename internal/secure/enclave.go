package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrBufferDestroyed is returned by Open after Destroy has been called.
var ErrBufferDestroyed = errors.New("secure buffer already destroyed")

// SecureBuffer stores one secret value encrypted in memory. The value stays
// sealed in a memguard enclave until Open decrypts it on demand.
type SecureBuffer struct {
	// enclave is nil for the empty value, which memguard cannot seal and
	// which has nothing to protect anyway
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed makes Destroy idempotent and turns any later Open into
	// ErrBufferDestroyed instead of a stale read
	destroyed bool
}

// Plaintext is a decrypted view of a sealed value. It has no String method,
// so a stray format verb cannot print the secret. Destroy the view as soon
// as the bytes have been consumed.
type Plaintext struct {
	locked *memguard.LockedBuffer
}

// Bytes returns the decrypted value. The empty value yields a nil slice.
func (p *Plaintext) Bytes() []byte {
	if p.locked == nil {
		return nil
	}
	return p.locked.Bytes()
}

// Destroy wipes the decrypted view. Safe to call on the empty value.
func (p *Plaintext) Destroy() {
	if p.locked != nil {
		p.locked.Destroy()
	}
}

// NewSecureBuffer seals secret bytes into protected memory. memguard wipes
// the source slice during sealing, so callers must copy first if they still
// need the plaintext.
//
// When mlock is unavailable (RLIMIT_MEMLOCK in containers, for example)
// memguard falls back to regular allocation instead of failing.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return &SecureBuffer{}, nil
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureBufferFromString seals a secret string. The intermediate byte
// copy is wiped by memguard; the string itself cannot be zeroed and is left
// to the garbage collector.
func NewSecureBufferFromString(value string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(value))
}

// Open decrypts the sealed value. The caller must Destroy the returned view
// as soon as the plaintext has been used.
func (s *SecureBuffer) Open() (*Plaintext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrBufferDestroyed
	}
	if s.enclave == nil {
		return &Plaintext{}, nil
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return nil, err
	}
	return &Plaintext{locked: locked}, nil
}

// Destroy retires the buffer. Safe to call more than once; afterwards Open
// returns ErrBufferDestroyed. The sealed ciphertext needs no wiping and is
// left to the collector; process-wide cleanup is memguard.Purge on exit.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}

	s.enclave = nil
	s.destroyed = true
}
