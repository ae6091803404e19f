// Package tabletoken signs and verifies the table identifiers printed into
// table QR codes.
//
// Wire format (version 1):
//
//	base64url_nopad( tableID + ":" + hex(HMAC-SHA256(secret, tableID))[:10] )
//
// The same format is produced by the browser-side QR generator, so the
// secret, digest, truncation length and alphabet must never change without
// re-issuing every printed code. testdata/golden.json holds the vectors both
// implementations are checked against.
//
// The signature is truncated to 5 bytes (40 bits) to keep scan URLs short.
// It stops a guest from casually editing the table in a URL; it does not
// resist an attacker who can submit verification attempts at volume.
package tabletoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	Version         = 1
	SignatureBytes  = 5
	SignatureHexLen = SignatureBytes * 2
	Separator       = ":"
)

// ErrInvalid is returned for every token that fails verification, whatever
// the cause (bad encoding, missing separator, empty parts, wrong signature).
var ErrInvalid = errors.New("invalid table token")

// Strict decoding rejects non-zero trailing bits, so two different token
// strings never decode to the same payload.
var encoding = base64.RawURLEncoding.Strict()

// Codec signs and verifies tokens with one secret. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	secret []byte
}

func New(secret []byte) *Codec {
	s := make([]byte, len(secret))
	copy(s, secret)
	return &Codec{secret: s}
}

// Sign returns the token for tableID. An empty tableID yields a token that
// never verifies.
func (c *Codec) Sign(tableID string) string {
	return encoding.EncodeToString([]byte(tableID + Separator + c.signature(tableID)))
}

// Verify returns the table identifier carried by token, or ErrInvalid.
func (c *Codec) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalid
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return "", ErrInvalid
	}

	payload := string(raw)
	idx := strings.LastIndex(payload, Separator)
	if idx <= 0 || idx == len(payload)-1 {
		return "", ErrInvalid
	}
	tableID, sig := payload[:idx], payload[idx+1:]
	if len(sig) != SignatureHexLen {
		return "", ErrInvalid
	}

	if !hmac.Equal([]byte(sig), []byte(c.signature(tableID))) {
		return "", ErrInvalid
	}
	return tableID, nil
}

func (c *Codec) signature(tableID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(tableID))
	return hex.EncodeToString(mac.Sum(nil)[:SignatureBytes])
}
