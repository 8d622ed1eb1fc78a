// Cryptographic keys and signing operations for label distribution.
//
// This package abstracts away curve, compression, and signature encoding
// details. The one currently supported curve type is K-256/secp256k1,
// implemented using <gitlab.com/yawning/secp256k1-voi>, which is what
// atproto labelers sign with in practice.
//
// "Low-S" signatures are enforced both when creating signatures and during
// verification; a lenient verification variant exists for JWT validation.
package crypto

import (
	"errors"
)

var ErrInvalidSignature = errors.New("cryptographic signature invalid")

// PrivateKey is a currently loaded signing key. Secret key material is
// present in process memory.
type PrivateKey interface {
	Equal(other PrivateKey) bool

	PublicKey() (PublicKey, error)

	// First hashes the raw bytes (SHA-256), then signs the digest,
	// returning a binary signature.
	HashAndSign(content []byte) ([]byte, error)
}

// PrivateKeyExportable is a private key whose secret material can be
// serialized out.
type PrivateKeyExportable interface {
	PrivateKey

	Bytes() []byte

	Multibase() string
}

// PublicKey is the verification half of a signing key.
type PublicKey interface {
	Equal(other PublicKey) bool

	// Compressed binary serialization of the key.
	Bytes() []byte

	UncompressedBytes() []byte

	// First hashes the raw bytes (SHA-256), then verifies the digest.
	// Returns nil for valid signatures. Requires a "low-S" signature.
	HashAndVerify(content, sig []byte) error

	// Same as HashAndVerify(), only does not require "low-S" signature.
	HashAndVerifyLenient(content, sig []byte) error

	Multibase() string

	DIDKey() string
}
