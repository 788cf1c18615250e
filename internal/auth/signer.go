package auth

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// signer computes the HMAC-SHA256 binding a session identifier to the
// account and expiry held server-side.
type signer struct {
	key    []byte
	method *jwt.SigningMethodHMAC
}

func newSigner(secret []byte) (*signer, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_SECRET_MISSING").Errorf("session signing secret cannot be empty")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &signer{key: key, method: jwt.SigningMethodHS256}, nil
}

func signingInput(sessionID string, accountID, expiresAt int64) string {
	return sessionID + "." + strconv.FormatInt(accountID, 10) + "." + strconv.FormatInt(expiresAt, 10)
}

// sign returns the hex-encoded MAC over (sessionID, accountID, expiresAt).
func (s *signer) sign(sessionID string, accountID, expiresAt int64) (string, error) {
	sig, err := s.method.Sign(signingInput(sessionID, accountID, expiresAt), s.key)
	if err != nil {
		return "", oops.Code("AUTH_SIGN_FAILED").Wrap(fmt.Errorf("%w: %w", ErrInternal, err))
	}
	return hex.EncodeToString(sig), nil
}

// verify compares hexSig against the MAC of the given values in constant time.
func (s *signer) verify(hexSig, sessionID string, accountID, expiresAt int64) bool {
	// hex.DecodeString accepts either case; only the canonical lowercase form is issued.
	if hexSig != strings.ToLower(hexSig) {
		return false
	}
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}
	return s.method.Verify(signingInput(sessionID, accountID, expiresAt), sig, s.key) == nil
}
