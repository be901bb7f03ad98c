// Package identity defines caller accounts and request authentication.
//
// An Account is an address derived from an Ed25519 public key. The registry
// core never sees key material, only the derived address; verification
// happens at the transport edge.
package identity

import (
	"crypto/ed25519"
	"encoding/hex"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// addressLen is the digest length of the account address in bytes.
const addressLen = 20

// Account is an opaque caller identity: a BLAKE2b-160 digest of an Ed25519
// public key, rendered as 0x-prefixed lowercase hex.
type Account string

// String returns the address form of the account.
func (a Account) String() string {
	return string(a)
}

// IsZero reports whether the account is unset.
func (a Account) IsZero() bool {
	return a == ""
}

// Normalize lowercases an externally supplied address.
func Normalize(raw string) Account {
	return Account(strings.ToLower(strings.TrimSpace(raw)))
}

// FromPublicKey derives the account address for an Ed25519 public key.
func FromPublicKey(pub ed25519.PublicKey) Account {
	h := newAddressHash()
	h.Write(pub)
	return Account("0x" + hex.EncodeToString(h.Sum(nil)))
}

func newAddressHash() hash.Hash {
	h, err := blake2b.New(addressLen, nil)
	if err != nil {
		// blake2b.New fails only for invalid digest sizes or oversized keys.
		panic(err)
	}
	return h
}
