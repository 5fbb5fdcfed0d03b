package bootloader

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"github.com/chmike/cmac-go"
)

// challengeSize matches one AES block.
const challengeSize = 16

// Authenticator gates bootloader entry behind an AES-CMAC
// challenge/response so a stray console line cannot reboot the board: the
// host proves key possession by tagging the challenge the board issued.
type Authenticator struct {
	key []byte
}

// NewAuthenticator accepts an AES key (16, 24 or 32 bytes).
func NewAuthenticator(key []byte) (*Authenticator, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("bootloader: aes key must be 16/24/32 bytes, got %d", len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Authenticator{key: k}, nil
}

// Challenge issues a fresh random challenge.
func (a *Authenticator) Challenge() ([]byte, error) {
	c := make([]byte, challengeSize)
	if _, err := rand.Read(c); err != nil {
		return nil, fmt.Errorf("bootloader: challenge: %w", err)
	}
	return c, nil
}

// Tag computes the CMAC over a challenge. The host side of the handshake.
func (a *Authenticator) Tag(challenge []byte) ([]byte, error) {
	h, err := cmac.New(aes.NewCipher, a.key)
	if err != nil {
		return nil, fmt.Errorf("bootloader: cmac: %w", err)
	}
	h.Write(challenge)
	return h.Sum(nil), nil
}

// Verify checks a tag against a challenge in constant time.
func (a *Authenticator) Verify(challenge, tag []byte) bool {
	want, err := a.Tag(challenge)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, tag) == 1
}
