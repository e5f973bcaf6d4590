package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrSealed = errors.New("sealed token cannot be opened")

// Sealer encrypts tokens before they are written to the session store.
type Sealer struct {
	key [32]byte
}

// NewSealer derives the sealing key from secret. With an empty secret a
// random key is used, so stored sessions do not survive a restart.
func NewSealer(secret string) (*Sealer, error) {
	s := &Sealer{}
	if secret == "" {
		log.Warn().Msg("session.secret is empty, using an ephemeral sealing key")
		if _, err := io.ReadFull(rand.Reader, s.key[:]); err != nil {
			return nil, err
		}
		return s, nil
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("adminconsole session tokens"))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sealer) Seal(plain string) ([]byte, error) {
	if plain == "" {
		return nil, nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key), nil
}

func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}
	if len(sealed) < nonceSize {
		return "", ErrSealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealed
	}
	return string(plain), nil
}
