package tabletoken

import "errors"

var ErrNoSecret = errors.New("no table token secret configured")

// Keyring picks the signing secret for a tenant: the tenant's own secret
// when it has one, otherwise the process-wide secret.
type Keyring struct {
	fallback []byte
}

func NewKeyring(fallback []byte) *Keyring {
	return &Keyring{fallback: fallback}
}

func (k *Keyring) For(tenantSecret string) (*Codec, error) {
	if tenantSecret != "" {
		return New([]byte(tenantSecret)), nil
	}
	if len(k.fallback) == 0 {
		return nil, ErrNoSecret
	}
	return New(k.fallback), nil
}
