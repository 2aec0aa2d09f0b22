package security

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealVersion     = 1
	nonceSize       = 24
	keySize         = 32
	minSecretLength = 12
)

var ErrSealedDataInvalid = errors.New("sealed data is invalid")

// Sealer encrypts small blobs (session files) with a key derived from an
// operator supplied secret.
type Sealer struct {
	key [keySize]byte
}

func NewSealer(secret string) (*Sealer, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}

	derived := argon2.IDKey([]byte(secret), []byte("leavedesk/session/v1"), 1, 64*1024, 4, keySize)
	s := &Sealer{}
	copy(s.key[:], derived)
	return s, nil
}

func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, sealVersion)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < 1+nonceSize+secretbox.Overhead || sealed[0] != sealVersion {
		return nil, ErrSealedDataInvalid
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[1:1+nonceSize])
	plain, ok := secretbox.Open(nil, sealed[1+nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealedDataInvalid
	}
	return plain, nil
}
